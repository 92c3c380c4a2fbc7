package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

// CSVMode selects what one CSV export contains.
type CSVMode int

const (
	// CSVSummary writes one row per attraction with its aggregate.
	CSVSummary CSVMode = iota

	// CSVReviews writes one row per review with its sentiment result.
	CSVReviews
)

// CSVWriter outputs flat exports for spreadsheets and ad-hoc analysis.
//
// Design decision: We use standard encoding/csv because the output is
// plain tabular data; spreadsheet-specific formats would add a heavy
// dependency for no structural gain.
type CSVWriter struct {
	baseWriter

	mode CSVMode
}

// NewCSVWriter creates a CSVWriter producing the given mode.
func NewCSVWriter(output io.Writer, mode CSVMode) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
		mode:       mode,
	}
}

var summaryHeader = []string{
	"region_id", "attraction_id", "name", "category", "position",
	"listing_rating", "review_count", "classified_count",
	"mean_rating", "mean_score", "dominant_label",
	"pct_very_negative", "pct_negative", "pct_neutral",
	"pct_positive", "pct_very_positive", "last_crawled_at",
}

var reviewsHeader = []string{
	"region_id", "attraction_id", "attraction_name", "review_id",
	"author", "title", "text", "rating", "language", "trip_type",
	"visit_date", "posted_date", "sentiment_label", "sentiment_score",
	"model_version",
}

// WriteDataset outputs the dataset as CSV in the writer's mode.
// The byte count is approximate: encoding/csv does not report bytes, so we
// count through the underlying writer.
func (w *CSVWriter) WriteDataset(ds *model.Dataset) (int, error) {
	counted := &countingWriter{w: w.output}
	cw := csv.NewWriter(counted)

	var err error
	switch w.mode {
	case CSVReviews:
		err = writeReviewRows(cw, ds)
	default:
		err = writeSummaryRows(cw, ds)
	}
	if err != nil {
		return counted.n, err
	}

	cw.Flush()
	return counted.n, cw.Error()
}

// WriteRun outputs the run counters as key,value rows.
func (w *CSVWriter) WriteRun(run *model.RunReport) (int, error) {
	counted := &countingWriter{w: w.output}
	cw := csv.NewWriter(counted)

	rows := [][]string{
		{"key", "value"},
		{"started_at", formatCSVTime(run.StartedAt)},
		{"finished_at", formatCSVTime(run.FinishedAt)},
		{"model_version", run.ModelVersion},
		{"attractions_discovered", strconv.Itoa(run.AttractionsDiscovered)},
		{"attractions_up_to_date", strconv.Itoa(run.AttractionsUpToDate)},
		{"reviews_extracted", strconv.Itoa(run.ReviewsExtracted)},
		{"reviews_new", strconv.Itoa(run.ReviewsNew)},
		{"pages_skipped", strconv.Itoa(run.PagesSkipped)},
		{"reviews_classified", strconv.Itoa(run.ReviewsClassified)},
		{"reviews_unclassified", strconv.Itoa(run.ReviewsUnclassified)},
		{"errors", strconv.Itoa(len(run.Errors))},
	}
	if err := cw.WriteAll(rows); err != nil {
		return counted.n, err
	}
	return counted.n, cw.Error()
}

func writeSummaryRows(cw *csv.Writer, ds *model.Dataset) error {
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, rd := range ds.Regions {
		for _, ad := range rd.Attractions {
			a := ad.Attraction
			row := []string{
				a.RegionID, a.ID, a.Name, a.Category,
				strconv.Itoa(a.Position),
				formatCSVFloat(a.Rating),
				strconv.Itoa(a.ReviewCount),
			}
			if agg := ad.Aggregate; agg != nil {
				row = append(row,
					strconv.Itoa(agg.ClassifiedCount),
					formatCSVFloat(agg.MeanRating),
					formatCSVFloat(agg.MeanScore),
					agg.DominantLabel.String(),
					formatCSVFloat(agg.Distribution.VeryNegative),
					formatCSVFloat(agg.Distribution.Negative),
					formatCSVFloat(agg.Distribution.Neutral),
					formatCSVFloat(agg.Distribution.Positive),
					formatCSVFloat(agg.Distribution.VeryPositive),
				)
			} else {
				row = append(row, "0", "", "", "", "", "", "", "", "")
			}
			row = append(row, formatCSVTime(a.LastCrawledAt))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeReviewRows(cw *csv.Writer, ds *model.Dataset) error {
	if err := cw.Write(reviewsHeader); err != nil {
		return err
	}
	for _, rd := range ds.Regions {
		for _, ad := range rd.Attractions {
			a := ad.Attraction
			for _, rvd := range ad.Reviews {
				r := rvd.Review
				row := []string{
					a.RegionID, a.ID, a.Name, r.ID,
					r.Author, r.Title, r.Text,
					strconv.Itoa(r.Rating),
					r.Language, r.TripType,
					formatCSVTime(r.VisitDate),
					formatCSVTime(r.PostedDate),
				}
				if s := rvd.Sentiment; s != nil {
					row = append(row,
						s.Label.String(),
						formatCSVFloat(s.Score),
						s.ModelVersion,
					)
				} else {
					row = append(row, model.LabelUnclassified.String(), "", "")
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func formatCSVFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// countingWriter tracks bytes written to the wrapped writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
