package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignacioe7/tripscan/internal/config"
	"github.com/ignacioe7/tripscan/internal/database"
	"github.com/ignacioe7/tripscan/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export collected reviews and aggregates",
		Long: `Export writes everything stored in the local database: regions,
attractions, reviews, sentiment results, and aggregates.

Formats:
  --json        full nested dataset (default)
  --markdown    shareable report with tables and sentiment charts
  --csv         one row per attraction with its aggregate
  --csv-reviews one row per review with its sentiment result

Examples:
  # Print the full dataset as JSON
  tripscan export

  # Write a Markdown report
  tripscan export --markdown -o reports/sentiment.md

  # Per-review CSV for a spreadsheet
  tripscan export --csv-reviews -o reviews.csv`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Export the full dataset as JSON (default)")
	cmd.Flags().BoolP("markdown", "m", false, "Export a Markdown report")
	cmd.Flags().Bool("csv", false, "Export a per-attraction CSV summary")
	cmd.Flags().Bool("csv-reviews", false, "Export a per-review CSV")
	cmd.Flags().StringP("output", "o", "", "Write to specified file path instead of stdout")
	cmd.Flags().String("model", config.DefaultModelName,
		"Sentiment model version whose results to export")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	csvOut, err := cmd.Flags().GetBool("csv")
	if err != nil {
		return err
	}
	csvReviewsOut, err := cmd.Flags().GetBool("csv-reviews")
	if err != nil {
		return err
	}

	formats := 0
	for _, enabled := range []bool{jsonOut, markdownOut, csvOut, csvReviewsOut} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return config.ErrConflictingReportFormats
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	modelVersion, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// The database must already exist; exporting from an empty store is
	// almost always a wrong --db-dir.
	store, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'tripscan run' first): %w", err)
	}
	defer store.Close()

	ds, err := store.LoadDataset(cmd.Context(), modelVersion)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	output, closeOutput, err := openReportOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	var w report.Writer
	switch {
	case markdownOut:
		w = report.NewMarkdownWriter(output)
	case csvOut:
		w = report.NewCSVWriter(output, report.CSVSummary)
	case csvReviewsOut:
		w = report.NewCSVWriter(output, report.CSVReviews)
	default:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	}

	if _, err := w.WriteDataset(ds); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
