package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fzdarsky/cognito-srp/internal/cli/output"
	"github.com/fzdarsky/cognito-srp/internal/cli/session"
	"github.com/fzdarsky/cognito-srp/internal/cognito"
	"github.com/fzdarsky/cognito-srp/internal/config"
	"github.com/fzdarsky/cognito-srp/internal/flow"
	"github.com/fzdarsky/cognito-srp/pkg/protocol"
)

// poolFlags are the pool settings every provider-facing command accepts.
type poolFlags struct {
	poolID       string
	clientID     string
	clientSecret string
	endpoint     string
}

func (f *poolFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.poolID, "pool-id", "", "user pool id, e.g. us-east-1_AbCdEf")
	cmd.Flags().StringVar(&f.clientID, "client-id", "", "app client id")
	cmd.Flags().StringVar(&f.clientSecret, "client-secret", "", "app client secret, if the client has one")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "identity provider URL (default: regional endpoint)")
}

// resolve loads the configuration, applies the flags and validates the pool settings.
func (f *poolFlags) resolve(root *rootOptions) (*config.Config, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}

	cfg.ApplyFlags(f.poolID, f.clientID, f.clientSecret, f.endpoint)

	if err := config.Validate(cfg); err != nil {
		return nil, protocol.NewConfigurationError(err.Error())
	}
	return cfg, nil
}

type loginOptions struct {
	pool     poolFlags
	username string
	password string
	output   string
	save     bool
}

// loginOutput is what login prints for yaml and json output.
type loginOutput struct {
	Username       string `json:"username" yaml:"username"`
	AccessToken    string `json:"access_token" yaml:"access_token"`
	IDToken        string `json:"id_token" yaml:"id_token"`
	RefreshToken   string `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenType      string `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresIn      int    `json:"expires_in" yaml:"expires_in"`
	ServerVerified bool   `json:"server_verified" yaml:"server_verified"`
}

func newLoginCommand(root *rootOptions) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with USER_SRP_AUTH and print the issued tokens",
		Example: `  # Prompt for username and password
  cognito-srp login --pool-id us-east-1_AbCdEf --client-id 3n4b5urk1ft4fl3mg5e62d9ado

  # Export tokens into the current shell
  eval "$(cognito-srp login -u alice -o env)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, root, opts)
		},
	}

	opts.pool.register(cmd)
	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "username (prompts if not provided)")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password (prompts if not provided)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml, json, env")
	cmd.Flags().BoolVar(&opts.save, "save", false, "cache the tokens in the user cache directory")

	return cmd
}

func runLogin(cmd *cobra.Command, root *rootOptions, opts *loginOptions) error {
	format, err := output.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	cfg, err := opts.pool.resolve(root)
	if err != nil {
		return err
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return protocol.NewConfigurationError(err.Error())
	}
	logger := root.newLogger(cmd, cfg)

	prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	username := opts.username
	if username == "" {
		if username, err = prompt.username(); err != nil {
			return err
		}
	}
	password := opts.password
	if password == "" {
		if password, err = prompt.password(); err != nil {
			return err
		}
	}

	client := cognito.NewClient(cfg.GetEndpoint(), cfg.Pool.ClientID,
		cognito.WithClientSecret(cfg.Pool.ClientSecret),
		cognito.WithTimeout(timeout),
		cognito.WithLogger(logger),
	)
	auth := flow.NewAuthenticator(client, cfg.PoolName(),
		flow.WithMaxAttempts(cfg.Auth.MaxAttempts),
		flow.WithTimeout(timeout),
		flow.WithLogger(logger),
	)

	result, err := auth.Authenticate(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	if opts.save {
		if err := saveTokens(cfg, username, result); err != nil {
			logger.Warn("failed to cache tokens", map[string]any{"error": err.Error()})
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Authenticated as %s.\n", result.Username)
	return output.Write(cmd.OutOrStdout(), tokenOutput(result, format), format)
}

func saveTokens(cfg *config.Config, username string, result *flow.Result) error {
	store, err := session.NewStore()
	if err != nil {
		return err
	}
	key := session.Key{PoolID: cfg.Pool.ID, ClientID: cfg.Pool.ClientID, Username: username}
	return store.Save(key, session.NewTokens(result.Tokens, time.Now()))
}

func tokenOutput(result *flow.Result, format output.Format) any {
	tokens := result.Tokens

	if format == output.FormatEnv {
		env := map[string]string{
			"COGNITO_ACCESS_TOKEN": tokens.AccessToken,
			"COGNITO_ID_TOKEN":     tokens.IDToken,
		}
		if tokens.RefreshToken != "" {
			env["COGNITO_REFRESH_TOKEN"] = tokens.RefreshToken
		}
		return env
	}

	return loginOutput{
		Username:       result.Username,
		AccessToken:    tokens.AccessToken,
		IDToken:        tokens.IDToken,
		RefreshToken:   tokens.RefreshToken,
		TokenType:      tokens.TokenType,
		ExpiresIn:      tokens.ExpiresIn,
		ServerVerified: result.ServerVerified,
	}
}
