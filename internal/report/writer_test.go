package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

func testDataset() *model.Dataset {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return &model.Dataset{
		GeneratedAt:  now,
		ModelVersion: "test-model-v1",
		Regions: []model.RegionData{
			{
				Region: model.Region{ID: "valparaiso", Name: "Valparaíso", ListingURL: "https://example.com/Attractions-g294306-Activities.html"},
				Attractions: []model.AttractionData{
					{
						Attraction: model.Attraction{
							ID:          "317793",
							RegionID:    "valparaiso",
							Name:        "Cerro Alegre",
							Category:    "Neighborhoods",
							URL:         "https://example.com/Attraction_Review-g294306-d317793-Reviews-Cerro_Alegre.html",
							Rating:      4.5,
							ReviewCount: 2,
							Position:    1,
						},
						Reviews: []model.ReviewData{
							{
								Review: model.Review{
									ID:           "r1",
									AttractionID: "317793",
									Author:       "traveler1",
									Title:        "Colorful streets",
									Text:         "Every wall is a mural.",
									Rating:       5,
									Language:     "en",
								},
								Sentiment: &model.SentimentResult{
									ReviewID:     "r1",
									Label:        model.LabelVeryPositive,
									Score:        3.8,
									ModelVersion: "test-model-v1",
								},
							},
							{
								Review: model.Review{
									ID:           "r2",
									AttractionID: "317793",
									Title:        "Steep and crowded",
									Text:         "Too many tour groups.",
									Rating:       2,
								},
							},
						},
						Aggregate: &model.AttractionAggregate{
							AttractionID:    "317793",
							RegionID:        "valparaiso",
							ReviewCount:     2,
							ClassifiedCount: 1,
							MeanRating:      3.5,
							MeanScore:       3.8,
							DominantLabel:   model.LabelVeryPositive,
							Distribution:    model.Distribution{VeryPositive: 100},
							ComputedAt:      now,
						},
					},
				},
				Aggregate: &model.RegionAggregate{
					RegionID:        "valparaiso",
					AttractionCount: 1,
					ReviewCount:     2,
					ClassifiedCount: 1,
					MeanRating:      3.5,
					MeanScore:       3.8,
					DominantLabel:   model.LabelVeryPositive,
					Distribution:    model.Distribution{VeryPositive: 100},
					Languages:       map[string]int{"en": 1, "und": 1},
					ComputedAt:      now,
				},
			},
		},
	}
}

func testRun() *model.RunReport {
	run := model.NewRunReport("test-model-v1")
	run.AddDiscovered(3)
	run.AddUpToDate(1)
	run.AddExtracted(20, 15)
	run.AddClassified(14, 1)
	run.AddRegionOutcome(model.RegionOutcome{RegionID: "valparaiso", Completed: true})
	run.AddRegionOutcome(model.RegionOutcome{RegionID: "santiago", Blocked: true, Error: "blocked: 403"})
	run.AddError("extract santiago: blocked: 403")
	run.Finish()
	return run.Snapshot()
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("dataset round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.WriteDataset(testDataset())
		if err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		var got model.Dataset
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.ModelVersion != "test-model-v1" {
			t.Errorf("ModelVersion = %q", got.ModelVersion)
		}
		if got.TotalReviews() != 2 {
			t.Errorf("TotalReviews() = %d, want 2", got.TotalReviews())
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.WriteRun(testRun()); err != nil {
			t.Fatalf("WriteRun() error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty printed output has no indentation")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")
		w.AttachRun(testRun())

		if _, err := w.WriteDataset(testDataset()); err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}

		var got Export
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Version != "1.2.3" {
			t.Errorf("Version = %q, want 1.2.3", got.Version)
		}
		if got.Dataset == nil || got.Run == nil {
			t.Error("export missing dataset or run")
		}
	})
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary has one row per attraction", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf, CSVSummary)

		if _, err := w.WriteDataset(testDataset()); err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want header plus 1 attraction", len(records))
		}
		if records[0][0] != "region_id" {
			t.Errorf("header starts with %q", records[0][0])
		}
		row := records[1]
		if row[1] != "317793" || row[2] != "Cerro Alegre" {
			t.Errorf("attraction row = %v", row)
		}
		if row[10] != "Very Positive" {
			t.Errorf("dominant label column = %q", row[10])
		}
	})

	t.Run("reviews mode includes sentiment columns", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf, CSVReviews)

		if _, err := w.WriteDataset(testDataset()); err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, want header plus 2 reviews", len(records))
		}

		classified := records[1]
		if classified[12] != "Very Positive" || classified[13] != "3.8" {
			t.Errorf("classified review sentiment = %v", classified[12:])
		}
		unclassified := records[2]
		if unclassified[12] != "Unclassified" || unclassified[13] != "" {
			t.Errorf("unclassified review sentiment = %v", unclassified[12:])
		}
	})

	t.Run("run summary is key value pairs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf, CSVSummary)

		if _, err := w.WriteRun(testRun()); err != nil {
			t.Fatalf("WriteRun() error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		found := false
		for _, rec := range records {
			if rec[0] == "reviews_new" && rec[1] == "15" {
				found = true
			}
		}
		if !found {
			t.Error("reviews_new counter missing from run CSV")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("run summary sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteRun(testRun()); err != nil {
			t.Fatalf("WriteRun() error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"TRIPSCAN RUN SUMMARY",
			"COUNTERS",
			"Reviews extracted:       20",
			"[+] valparaiso",
			"[x] santiago  BLOCKED",
			"ERRORS (1)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("dataset summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.WriteDataset(testDataset()); err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"VALPARAÍSO",
			"Mean rating: 3.50",
			"Cerro Alegre (2 reviews)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("dataset report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteDataset(testDataset()); err != nil {
			t.Fatalf("WriteDataset() error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Travel Review Sentiment Report",
			"## Valparaíso",
			"```mermaid",
			"Cerro Alegre",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("run report alerts on blocked regions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteRun(testRun()); err != nil {
			t.Fatalf("WriteRun() error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[!CAUTION]") {
			t.Error("blocked region did not produce a caution alert")
		}
		if !strings.Contains(out, "santiago") {
			t.Error("blocked region missing from region table")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b))

	total, err := mw.WriteRun(testRun())
	if err != nil {
		t.Fatalf("WriteRun() error: %v", err)
	}
	if total != a.Len()+b.Len() {
		t.Errorf("total = %d, want %d", total, a.Len()+b.Len())
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("one of the writers received no output")
	}
}
