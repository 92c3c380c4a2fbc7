package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ignacioe7/tripscan/internal/config"
)

//go:embed templates/tripscan.yml
var regionsTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tripscan regions file",
		Long: `Init creates a new tripscan.yml regions file in the current directory.

The generated file includes:
- Commented example region entries
- Documentation for all available settings

Examples:
  # Create tripscan.yml in current directory
  tripscan init

  # Create the regions file at a specific path
  tripscan init -o regions.yml

  # Force overwrite existing file
  tripscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultRegionsFile,
		"Output file path for the regions file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing regions file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("regions file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := regionsTemplate.ReadFile("templates/tripscan.yml")
	if err != nil {
		return fmt.Errorf("failed to read regions template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write regions file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write regions file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created regions file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to add the regions to collect:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - One entry per attraction listing page")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Optional settings overrides for rate, workers, and model")

	return nil
}
