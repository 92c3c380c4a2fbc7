package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ignacioe7/tripscan/internal/config"
	"github.com/ignacioe7/tripscan/internal/database"
	"github.com/ignacioe7/tripscan/internal/model"
)

// seedStore creates a database with one region, one attraction, and one
// classified review, and returns the database directory.
func seedStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	store, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertRegion(ctx, model.Region{
		ID:         "testville",
		Name:       "Testville",
		ListingURL: "https://example.com/Attractions-g1-Activities.html",
	}); err != nil {
		t.Fatalf("UpsertRegion() error: %v", err)
	}

	if _, err := store.MergeAttractions(ctx, []model.Attraction{{
		ID:           "100",
		RegionID:     "testville",
		Name:         "Alpha",
		URL:          "https://example.com/Attraction_Review-g1-d100-Reviews-Alpha.html",
		Rating:       4.5,
		ReviewCount:  1,
		Position:     1,
		DiscoveredAt: now,
	}}); err != nil {
		t.Fatalf("MergeAttractions() error: %v", err)
	}

	if _, err := store.MergeReviews(ctx, []model.Review{{
		ID:           "r1",
		AttractionID: "100",
		Title:        "Wonderful",
		Text:         "Absolutely great experience.",
		Rating:       5,
		ExtractedAt:  now,
	}}); err != nil {
		t.Fatalf("MergeReviews() error: %v", err)
	}

	if _, err := store.InsertSentiments(ctx, []model.SentimentResult{{
		ReviewID:     "r1",
		Label:        model.LabelVeryPositive,
		Score:        0.97,
		ModelVersion: config.DefaultModelName,
		ClassifiedAt: now,
	}}); err != nil {
		t.Fatalf("InsertSentiments() error: %v", err)
	}

	if err := store.ReplaceAggregates(ctx,
		[]model.RegionAggregate{{
			RegionID:        "testville",
			AttractionCount: 1,
			ReviewCount:     1,
			ClassifiedCount: 1,
			MeanRating:      5,
			MeanScore:       0.97,
			DominantLabel:   model.LabelVeryPositive,
			Distribution:    model.Distribution{VeryPositive: 100},
			ComputedAt:      now,
		}},
		[]model.AttractionAggregate{{
			AttractionID:    "100",
			RegionID:        "testville",
			ReviewCount:     1,
			ClassifiedCount: 1,
			MeanRating:      5,
			MeanScore:       0.97,
			DominantLabel:   model.LabelVeryPositive,
			Distribution:    model.Distribution{VeryPositive: 100},
			ComputedAt:      now,
		}},
	); err != nil {
		t.Fatalf("ReplaceAggregates() error: %v", err)
	}

	return dir
}

func TestExportCmd(t *testing.T) {
	t.Parallel()
	dbDir := seedStore(t)

	t.Run("json dataset", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "export.json")
		root := NewRootCmd()
		root.SetArgs([]string{"export", "--db-dir", dbDir, "-o", outPath})
		if err := root.Execute(); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("export file not written: %v", err)
		}

		var ds model.Dataset
		if err := json.Unmarshal(data, &ds); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if len(ds.Regions) != 1 {
			t.Fatalf("exported regions = %d, want 1", len(ds.Regions))
		}
		rd := ds.Regions[0]
		if rd.Region.ID != "testville" {
			t.Errorf("region id = %q, want testville", rd.Region.ID)
		}
		if len(rd.Attractions) != 1 || len(rd.Attractions[0].Reviews) != 1 {
			t.Fatalf("exported attractions/reviews = %+v, want 1/1", rd.Attractions)
		}
		sent := rd.Attractions[0].Reviews[0].Sentiment
		if sent == nil || sent.Label != model.LabelVeryPositive {
			t.Errorf("review sentiment = %+v, want very positive", sent)
		}
	})

	t.Run("csv summary", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "export.csv")
		root := NewRootCmd()
		root.SetArgs([]string{"export", "--csv", "--db-dir", dbDir, "-o", outPath})
		if err := root.Execute(); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("export file not written: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("csv lines = %d, want header plus one attraction row", len(lines))
		}
		if !strings.Contains(lines[1], "Alpha") {
			t.Errorf("attraction row missing name: %s", lines[1])
		}
	})

	t.Run("markdown report", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "export.md")
		root := NewRootCmd()
		root.SetArgs([]string{"export", "--markdown", "--db-dir", dbDir, "-o", outPath})
		if err := root.Execute(); err != nil {
			t.Fatalf("Execute() error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("export file not written: %v", err)
		}
		if !strings.Contains(string(data), "# Travel Review Sentiment Report") {
			t.Errorf("markdown missing title:\n%s", data)
		}
		if !strings.Contains(string(data), "Testville") {
			t.Errorf("markdown missing region name:\n%s", data)
		}
	})

	t.Run("conflicting formats rejected", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"export", "--json", "--csv", "--db-dir", dbDir})
		if err := root.Execute(); err == nil {
			t.Error("Execute() accepted conflicting formats")
		}
	})

	t.Run("missing database errors", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"export", "--db-dir", t.TempDir()})
		if err := root.Execute(); err == nil {
			t.Error("Execute() succeeded without an existing database")
		}
	})
}

func TestRegionsCmd(t *testing.T) {
	t.Parallel()
	dbDir := seedStore(t)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"regions", "--db-dir", dbDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "REGION") {
		t.Errorf("output missing header:\n%s", got)
	}
	if !strings.Contains(got, "testville") {
		t.Errorf("output missing region row:\n%s", got)
	}
	if !strings.Contains(got, "Very Positive") {
		t.Errorf("output missing dominant label:\n%s", got)
	}
}
