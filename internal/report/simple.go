package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteRun outputs the run summary in human-readable format.
func (w *SimpleWriter) WriteRun(run *model.RunReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         TRIPSCAN RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST")))
	if !run.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Finished:  %s\n", run.FinishedAt.Format("2006-01-02 15:04:05 MST")))
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	}
	sb.WriteString(fmt.Sprintf("Model:     %s\n", run.ModelVersion))
	sb.WriteString("\n")

	w.writeCounters(&sb, run)
	w.writeRegions(&sb, run)
	w.writeErrors(&sb, run)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeCounters writes the run counter section.
func (w *SimpleWriter) writeCounters(sb *strings.Builder, run *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COUNTERS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Attractions discovered:  %d\n", run.AttractionsDiscovered))
	sb.WriteString(fmt.Sprintf("  Attractions up to date:  %d\n", run.AttractionsUpToDate))
	sb.WriteString(fmt.Sprintf("  Reviews extracted:       %d\n", run.ReviewsExtracted))
	sb.WriteString(fmt.Sprintf("  Reviews new:             %d\n", run.ReviewsNew))
	sb.WriteString(fmt.Sprintf("  Pages skipped:           %d\n", run.PagesSkipped))
	sb.WriteString(fmt.Sprintf("  Reviews classified:      %d\n", run.ReviewsClassified))
	sb.WriteString(fmt.Sprintf("  Reviews unclassified:    %d\n", run.ReviewsUnclassified))
	if len(run.AttractionsIncomplete) > 0 {
		sb.WriteString(fmt.Sprintf("  Attractions incomplete:  %d (%s)\n",
			len(run.AttractionsIncomplete), strings.Join(run.AttractionsIncomplete, ", ")))
	}
	sb.WriteString("\n")
}

// writeRegions writes the per-region outcome section.
func (w *SimpleWriter) writeRegions(sb *strings.Builder, run *model.RunReport) {
	if len(run.Regions) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("REGIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(run.Regions) == 0 {
		sb.WriteString("  No regions processed\n")
	}
	for _, outcome := range run.Regions {
		switch {
		case outcome.Blocked:
			sb.WriteString(fmt.Sprintf("  [x] %s  BLOCKED\n", outcome.RegionID))
		case outcome.Completed:
			sb.WriteString(fmt.Sprintf("  [+] %s  complete\n", outcome.RegionID))
		default:
			sb.WriteString(fmt.Sprintf("  [-] %s  failed: %s\n", outcome.RegionID, outcome.Error))
		}
	}
	sb.WriteString("\n")
}

// writeErrors writes non-fatal errors collected during the run.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, run *model.RunReport) {
	if len(run.Errors) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("ERRORS (%d)\n", len(run.Errors)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, msg := range run.Errors {
		sb.WriteString(fmt.Sprintf("  * %s\n", msg))
	}
	sb.WriteString("\n")
}

// WriteDataset outputs a compact dataset overview in human-readable format.
func (w *SimpleWriter) WriteDataset(ds *model.Dataset) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         TRIPSCAN DATASET\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated: %s\n", ds.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Model:     %s\n", ds.ModelVersion))
	sb.WriteString(fmt.Sprintf("Regions:   %d\n", len(ds.Regions)))
	sb.WriteString("\n")

	for _, rd := range ds.Regions {
		w.writeRegionData(&sb, rd)
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeRegionData writes one region's summary block.
func (w *SimpleWriter) writeRegionData(sb *strings.Builder, rd model.RegionData) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(rd.Region.Name))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if agg := rd.Aggregate; agg != nil {
		sb.WriteString(fmt.Sprintf("  Attractions: %d   Reviews: %d   Classified: %d\n",
			agg.AttractionCount, agg.ReviewCount, agg.ClassifiedCount))
		sb.WriteString(fmt.Sprintf("  Mean rating: %.2f   Mean score: %.2f   Dominant: %s\n",
			agg.MeanRating, agg.MeanScore, agg.DominantLabel))
		for _, label := range model.Labels() {
			sb.WriteString(fmt.Sprintf("    %-14s %5.1f%%\n", label.String(), agg.Distribution.Share(label)))
		}
	} else {
		sb.WriteString(fmt.Sprintf("  Attractions: %d   (not yet aggregated)\n", len(rd.Attractions)))
	}
	sb.WriteString("\n")

	if !w.verbose {
		return
	}
	for _, ad := range rd.Attractions {
		line := fmt.Sprintf("  * %s (%d reviews)", ad.Attraction.Name, len(ad.Reviews))
		if agg := ad.Aggregate; agg != nil {
			line += fmt.Sprintf("  %s, score %.2f", agg.DominantLabel, agg.MeanScore)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}
