package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fzdarsky/cognito-srp/internal/cli/session"
)

func newLogoutCommand(root *rootOptions) *cobra.Command {
	var (
		pool     poolFlags
		username string
	)

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the tokens cached by login --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}

			cfg, err := pool.resolve(root)
			if err != nil {
				return err
			}

			store, err := session.NewStore()
			if err != nil {
				return err
			}
			key := session.Key{PoolID: cfg.Pool.ID, ClientID: cfg.Pool.ClientID, Username: username}
			if err := store.Delete(key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Cached tokens for %s removed.\n", username)
			return nil
		},
	}

	pool.register(cmd)
	cmd.Flags().StringVarP(&username, "username", "u", "", "username whose tokens to remove")

	return cmd
}
