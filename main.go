package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Kebab storefront backend: menu, checkout and payment reconciliation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// running without a subcommand serves the API
		RunE: serve.RunE,
	}

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(pollCmd())
	return rootCmd
}
