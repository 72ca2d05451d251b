// Package main provides the cognito-srp CLI tool.
//
// cognito-srp authenticates against a Cognito user pool with the USER_SRP_AUTH flow and prints
// the issued tokens. It can also run an offline selftest and expose the SRP encoding helpers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fzdarsky/cognito-srp/internal/cli/commands"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCommand(version).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", commands.Describe(err))
		os.Exit(commands.ExitCode(err))
	}
}
