// Package main provides the entry point for the tripscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tripscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tripscan",
		Short: "Collect and classify travel attraction reviews",
		Long: `Tripscan discovers attractions from travel listing pages, extracts their
reviews, classifies each review's sentiment with a five-class model, and
aggregates the results per attraction and region.

Collected data is stored in a local SQLite database, so repeated runs only
fetch what changed since the last run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewRegionsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
