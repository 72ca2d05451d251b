// Package commands provides the cognito-srp CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/fzdarsky/cognito-srp/internal/config"
	"github.com/fzdarsky/cognito-srp/internal/logging"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
)

// Exit codes returned by the cognito-srp binary.
const (
	ExitFailure        = 1
	ExitAuthentication = 2
	ExitConfiguration  = 3
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the cognito-srp command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cognito-srp",
		Short: "Authenticate against a Cognito user pool with SRP-6a",
		Long: `cognito-srp performs the USER_SRP_AUTH flow: the password never leaves the machine,
only the SRP public value and the password claim signature are sent to the identity provider.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: user config dir)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: human, json")

	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newSelftestCommand(opts),
		newHexHashCommand(),
		newPadCommand(),
		newVersionCommand(version),
	)

	return cmd
}

// loadConfig loads the config file named by --config or found in the user config directory.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(o.configPath))
	if err != nil {
		return nil, protocol.NewConfigurationError(err.Error())
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}

// newLogger creates a logger writing to the command's stderr.
func (o *rootOptions) newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger.SetOutput(cmd.ErrOrStderr())
	return logger
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch protocol.FromError(err).Code {
	case protocol.ErrCodeAuthenticationFailed:
		return ExitAuthentication
	case protocol.ErrCodeConfigurationError:
		return ExitConfiguration
	default:
		return ExitFailure
	}
}

// Describe renders err for the user. Authentication failures never reveal which check failed.
func Describe(err error) string {
	return protocol.FromError(err).Error()
}
