package commands

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
)

func newHexHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hexhash <hex>",
		Short: "Print the upper-case SHA-256 of the bytes a hex string encodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := srp.HexHash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
}

func newPadCommand() *cobra.Command {
	var decimal bool

	cmd := &cobra.Command{
		Use:   "pad <value>",
		Short: "Print the SRP padded hex form of a hex string or decimal integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value srp.HexValue = srp.Hex(args[0])
			if decimal {
				n, ok := new(big.Int).SetString(args[0], 10)
				if !ok || n.Sign() < 0 {
					return fmt.Errorf("%w: %q is not a non-negative decimal integer", srp.ErrFormat, args[0])
				}
				value = srp.Int(n)
			} else if args[0] != "" {
				if _, err := srp.HexToInteger(args[0]); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), srp.PadHex(value))
			return nil
		},
	}

	cmd.Flags().BoolVar(&decimal, "int", false, "treat the value as a decimal integer")

	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cognito-srp version %s\n", version)
		},
	}
}
