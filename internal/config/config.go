// Package config provides configuration loading and validation for the cognito-srp CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

// Environment overrides, applied after the file and before command-line flags.
const (
	EnvEndpoint     = "COGNITO_SRP_ENDPOINT"
	EnvClientID     = "COGNITO_SRP_CLIENT_ID"
	EnvClientSecret = "COGNITO_SRP_CLIENT_SECRET"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = "30s"
)

// Config represents the CLI configuration.
type Config struct {
	Pool    PoolSettings    `yaml:"pool"`
	Auth    AuthSettings    `yaml:"auth"`
	Logging LoggingSettings `yaml:"logging"`
}

// PoolSettings identifies the user pool and app client.
type PoolSettings struct {
	ID           string `yaml:"id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	Region       string `yaml:"region,omitempty"`   // Derived from the pool id when empty
	Endpoint     string `yaml:"endpoint,omitempty"` // Overrides the regional endpoint
}

// AuthSettings controls authentication attempts.
type AuthSettings struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Timeout     string `yaml:"timeout"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Auth: AuthSettings{
			MaxAttempts: defaultMaxAttempts,
			Timeout:     defaultTimeout,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "human",
		},
	}
}

// Load reads and parses the configuration file on top of Default. An empty path yields the
// defaults. Environment overrides are applied in both cases.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Pool.Endpoint = v
	}
	if v := os.Getenv(EnvClientID); v != "" {
		c.Pool.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Pool.ClientSecret = v
	}
}

// ApplyFlags overrides pool settings with non-empty command-line values.
func (c *Config) ApplyFlags(poolID, clientID, clientSecret, endpoint string) {
	if poolID != "" {
		c.Pool.ID = poolID
	}
	if clientID != "" {
		c.Pool.ClientID = clientID
	}
	if clientSecret != "" {
		c.Pool.ClientSecret = clientSecret
	}
	if endpoint != "" {
		c.Pool.Endpoint = endpoint
	}
}

// validate checks the settings every command depends on. Pool settings are checked by
// Validate once flags have been applied.
func (c *Config) validate() error {
	if c.Auth.MaxAttempts < 1 {
		return errors.New("auth.max_attempts must be at least 1")
	}

	if _, err := c.GetTimeout(); err != nil {
		return err
	}

	return validateLogging(c)
}

// GetTimeout parses and returns the per-attempt timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	duration, err := time.ParseDuration(c.Auth.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid auth.timeout: %w", err)
	}

	if duration < time.Second || duration > 5*time.Minute {
		return 0, errors.New("auth.timeout must be between 1s and 5m")
	}

	return duration, nil
}

// GetRegion returns the configured region or the one encoded in the pool id
// ("us-east-1_AbCdEf" -> "us-east-1").
func (c *Config) GetRegion() string {
	if c.Pool.Region != "" {
		return c.Pool.Region
	}
	region, _, ok := strings.Cut(c.Pool.ID, "_")
	if !ok {
		return ""
	}
	return region
}

// GetEndpoint returns the identity provider URL.
func (c *Config) GetEndpoint() string {
	if c.Pool.Endpoint != "" {
		return c.Pool.Endpoint
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", c.GetRegion())
}

// PoolName returns the pool name mixed into the SRP identity.
func (c *Config) PoolName() string {
	return srp.PoolName(c.Pool.ID)
}
