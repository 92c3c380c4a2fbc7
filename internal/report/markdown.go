package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/ignacioe7/tripscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteDataset outputs the dataset report in Markdown format.
func (w *MarkdownWriter) WriteDataset(ds *model.Dataset) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Travel Review Sentiment Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", ds.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Model", "`" + ds.ModelVersion + "`"},
			{"Regions", strconv.Itoa(len(ds.Regions))},
			{"Attractions", strconv.Itoa(ds.TotalAttractions())},
			{"Reviews", strconv.Itoa(ds.TotalReviews())},
		},
	})
	md.PlainText("")

	for _, rd := range ds.Regions {
		w.writeRegion(md, rd)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteRun outputs the run summary in Markdown format.
func (w *MarkdownWriter) WriteRun(run *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Tripscan Run Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Model", "`" + run.ModelVersion + "`"},
			{"Attractions discovered", strconv.Itoa(run.AttractionsDiscovered)},
			{"Attractions up to date", strconv.Itoa(run.AttractionsUpToDate)},
			{"Reviews extracted", strconv.Itoa(run.ReviewsExtracted)},
			{"Reviews new", strconv.Itoa(run.ReviewsNew)},
			{"Pages skipped", strconv.Itoa(run.PagesSkipped)},
			{"Reviews classified", strconv.Itoa(run.ReviewsClassified)},
			{"Reviews unclassified", strconv.Itoa(run.ReviewsUnclassified)},
		},
	})
	md.PlainText("")

	w.writeRunAlert(md, run)

	if len(run.Regions) > 0 {
		md.H2("Regions")
		md.PlainText("")
		rows := make([][]string, len(run.Regions))
		for i, outcome := range run.Regions {
			rows[i] = []string{outcome.RegionID, w.outcomeText(outcome)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Region", "Outcome"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(run.Errors) > 0 {
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(run.Errors...)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// outcomeText renders one region outcome as a table cell.
func (w *MarkdownWriter) outcomeText(outcome model.RegionOutcome) string {
	switch {
	case outcome.Blocked:
		return "❌ Blocked"
	case outcome.Completed:
		return "✅ Complete"
	default:
		return "⚠️ Failed - " + outcome.Error
	}
}

// writeRunAlert writes an alert reflecting how the run ended.
func (w *MarkdownWriter) writeRunAlert(md *markdown.Markdown, run *model.RunReport) {
	blocked := 0
	for _, outcome := range run.Regions {
		if outcome.Blocked {
			blocked++
		}
	}

	switch {
	case blocked > 0:
		md.Cautionf(
			"The site blocked access for %d region(s). Stored data is partial; wait before retrying.",
			blocked,
		)
	case len(run.Errors) > 0:
		md.Warningf(
			"%d error(s) occurred during the run. Some pages or regions may be missing.",
			len(run.Errors),
		)
	case len(run.AttractionsIncomplete) > 0:
		md.Warningf(
			"%d attraction(s) were incompletely extracted (%s); a later run picks up the missing pages.",
			len(run.AttractionsIncomplete), strings.Join(run.AttractionsIncomplete, ", "),
		)
	case run.ReviewsUnclassified > 0:
		md.Importantf(
			"%d review(s) could not be classified and are excluded from sentiment shares.",
			run.ReviewsUnclassified,
		)
	default:
		md.Tip("Run completed without errors.")
	}
	md.PlainText("")
}

// writeRegion writes one region section with its attraction table and
// sentiment distribution chart.
func (w *MarkdownWriter) writeRegion(md *markdown.Markdown, rd model.RegionData) {
	md.H2(rd.Region.Name)
	md.PlainText("")

	agg := rd.Aggregate
	if agg == nil {
		md.PlainText("Not yet aggregated.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Attractions", "Reviews", "Classified", "Mean Rating", "Mean Score", "Dominant"},
		Rows: [][]string{{
			strconv.Itoa(agg.AttractionCount),
			strconv.Itoa(agg.ReviewCount),
			strconv.Itoa(agg.ClassifiedCount),
			formatMDFloat(agg.MeanRating),
			formatMDFloat(agg.MeanScore),
			agg.DominantLabel.String(),
		}},
	})
	md.PlainText("")

	if agg.ClassifiedCount > 0 {
		w.writePieChart(md, rd.Region.Name, agg.Distribution, agg.ClassifiedCount)
	}

	w.writeAttractionsTable(md, rd.Attractions)
}

// writePieChart writes a mermaid pie chart for the sentiment distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, name string, dist model.Distribution, classified int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(fmt.Sprintf("%s Sentiment Distribution", name)),
		piechart.WithShowData(true),
	)

	for _, label := range model.Labels() {
		share := dist.Share(label)
		if share <= 0 {
			continue
		}
		count := uint64(float64(classified) * share / 100.0)
		chart.LabelAndIntValue(label.String(), count)
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAttractionsTable writes one row per attraction.
func (w *MarkdownWriter) writeAttractionsTable(md *markdown.Markdown, attractions []model.AttractionData) {
	if len(attractions) == 0 {
		return
	}

	rows := make([][]string, len(attractions))
	for i, ad := range attractions {
		a := ad.Attraction
		reviews := strconv.Itoa(len(ad.Reviews))
		dominant := "-"
		score := "-"
		if ad.Aggregate != nil {
			dominant = ad.Aggregate.DominantLabel.String()
			score = formatMDFloat(ad.Aggregate.MeanScore)
		}
		rows[i] = []string{
			truncateString(a.Name, 40),
			truncateString(a.Category, 25),
			reviews,
			dominant,
			score,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Attraction", "Category", "Reviews", "Dominant", "Mean Score"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [tripscan](https://github.com/ignacioe7/tripscan)*")
}

// formatMDFloat renders a two-decimal metric for table cells.
func formatMDFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
