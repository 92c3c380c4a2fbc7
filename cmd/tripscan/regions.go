package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignacioe7/tripscan/internal/config"
	"github.com/ignacioe7/tripscan/internal/database"
)

// NewRegionsCmd creates the regions command.
func NewRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List stored regions and their aggregate state",
		Long: `Regions lists every region stored in the local database together with
its attraction count, review counts, and latest aggregate summary.

Examples:
  # Show all stored regions
  tripscan regions

  # Use a different database location
  tripscan regions --db-dir /data/tripscan`,
		Args: cobra.NoArgs,
		RunE: runRegionsCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")

	return cmd
}

// runRegionsCmd executes the regions command.
func runRegionsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	store, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'tripscan run' first): %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	regions, err := store.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list regions: %w", err)
	}
	if len(regions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No regions stored yet. Run 'tripscan run' first.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tATTRACTIONS\tREVIEWS\tCLASSIFIED\tDOMINANT\tMEAN SCORE")

	for _, region := range regions {
		attractions, err := store.ListAttractions(ctx, region.ID)
		if err != nil {
			return fmt.Errorf("failed to list attractions for %s: %w", region.ID, err)
		}

		agg, err := store.GetRegionAggregate(ctx, region.ID)
		if err != nil {
			return fmt.Errorf("failed to load aggregate for %s: %w", region.ID, err)
		}

		if agg == nil {
			fmt.Fprintf(tw, "%s\t%d\t-\t-\t-\t-\n", region.ID, len(attractions))
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%.2f\n",
			region.ID, len(attractions), agg.ReviewCount, agg.ClassifiedCount,
			agg.DominantLabel, agg.MeanScore)
	}

	return tw.Flush()
}
