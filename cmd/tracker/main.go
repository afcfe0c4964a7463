// Command tracker runs the time-tracking API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Multi-tenant time tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand serves the API.
		RunE: runServe,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())

	return root
}
