package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fzdarsky/cognito-srp/internal/cognito"
	"github.com/fzdarsky/cognito-srp/internal/flow"
	"github.com/fzdarsky/cognito-srp/internal/logging"
	"github.com/fzdarsky/cognito-srp/internal/srptest"
	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

const (
	selftestUser     = "selftest"
	selftestClientID = "selftestclient"
)

// ErrSelftestFailed is returned when at least one selftest check fails.
var ErrSelftestFailed = errors.New("selftest failed")

type selftestCheck struct {
	name string
	run  func(ctx context.Context) error
}

func newSelftestCommand(root *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run complete exchanges against an in-process identity provider",
		Long: `selftest registers a user with an in-process identity provider and authenticates
against it, directly and over HTTP. No network access is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := root.newLogger(cmd, cfg)

			if password == "" {
				password = uuid.NewString()
			}

			failed := 0
			for _, check := range selftestChecks(logger, password) {
				if err := check.run(cmd.Context()); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s\n", check.name, Describe(err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", check.name)
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d check(s)", ErrSelftestFailed, failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password to register (default: random)")

	return cmd
}

func selftestChecks(logger *logging.Logger, password string) []selftestCheck {
	return []selftestCheck{
		{name: "group multiplier", run: func(context.Context) error {
			group := srp.DefaultGroup()
			k, err := srp.ComputeK(group.N(), group.G())
			if err != nil {
				return err
			}
			if k.Cmp(group.K()) != 0 {
				return fmt.Errorf("%w: k does not match the group", srp.ErrProtocol)
			}
			return nil
		}},
		{name: "exchange with server proof", run: func(ctx context.Context) error {
			provider, err := newSelftestProvider(password, srptest.WithServerProof())
			if err != nil {
				return err
			}
			result, err := flow.NewAuthenticator(provider, provider.PoolName(), flow.WithLogger(logger)).
				Authenticate(ctx, selftestUser, password)
			if err != nil {
				return err
			}
			if !result.ServerVerified {
				return fmt.Errorf("%w: server proof was not checked", srp.ErrAuthentication)
			}
			return nil
		}},
		{name: "exchange over HTTP with client secret", run: func(ctx context.Context) error {
			secret := uuid.NewString()
			provider, err := newSelftestProvider(password, srptest.WithClient(selftestClientID, secret))
			if err != nil {
				return err
			}
			ts := httptest.NewServer(provider.Handler())
			defer ts.Close()

			client := cognito.NewClient(ts.URL, selftestClientID,
				cognito.WithClientSecret(secret),
				cognito.WithLogger(logger),
			)
			_, err = flow.NewAuthenticator(client, provider.PoolName(), flow.WithLogger(logger)).
				Authenticate(ctx, selftestUser, password)
			return err
		}},
		{name: "wrong password rejected", run: func(ctx context.Context) error {
			provider, err := newSelftestProvider(password)
			if err != nil {
				return err
			}
			_, err = flow.NewAuthenticator(provider, provider.PoolName(), flow.WithLogger(logger)).
				Authenticate(ctx, selftestUser, password+"-wrong")
			if !errors.Is(err, srp.ErrAuthentication) {
				return fmt.Errorf("%w: expected an authentication failure, got %v", ErrSelftestFailed, err)
			}
			return nil
		}},
	}
}

func newSelftestProvider(password string, opts ...srptest.Option) (*srptest.Server, error) {
	provider := srptest.NewServer(opts...)
	if err := provider.AddUser(selftestUser, password); err != nil {
		return nil, err
	}
	return provider, nil
}
