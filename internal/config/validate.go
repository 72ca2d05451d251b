package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	poolIDPattern   = regexp.MustCompile(`^[\w-]+_[0-9a-zA-Z]+$`)
	clientIDPattern = regexp.MustCompile(`^[\w+]+$`)
)

// Validate performs comprehensive validation on the configuration, including the pool settings
// needed to reach the identity provider.
func Validate(cfg *Config) error {
	if err := validatePool(cfg); err != nil {
		return fmt.Errorf("pool validation failed: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return err
	}

	return nil
}

func validatePool(cfg *Config) error {
	if cfg.Pool.ID == "" {
		return errors.New("pool.id is required")
	}
	if !poolIDPattern.MatchString(cfg.Pool.ID) {
		return fmt.Errorf("pool.id %q must look like <region>_<name>", cfg.Pool.ID)
	}

	if cfg.Pool.ClientID == "" {
		return errors.New("pool.client_id is required")
	}
	if !clientIDPattern.MatchString(cfg.Pool.ClientID) {
		return fmt.Errorf("pool.client_id %q contains invalid characters", cfg.Pool.ClientID)
	}

	if cfg.Pool.Endpoint == "" && cfg.GetRegion() == "" {
		return errors.New("pool.region is required when it cannot be derived from pool.id")
	}
	if cfg.Pool.Endpoint != "" && !strings.HasPrefix(cfg.Pool.Endpoint, "https://") && !strings.HasPrefix(cfg.Pool.Endpoint, "http://") {
		return errors.New("pool.endpoint must be an http(s) URL")
	}

	return nil
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if cfg.Logging.Level != "" && !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "human"}
	if cfg.Logging.Format != "" && !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}
