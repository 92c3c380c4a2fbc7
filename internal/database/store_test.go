package database

import (
	"context"
	"testing"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRegion() model.Region {
	return model.Region{ID: "valparaiso", Name: "Valparaíso", ListingURL: "https://example.com/Attractions-g294306.html"}
}

func seedRegionAndAttraction(t *testing.T, s *Store) model.Attraction {
	t.Helper()
	ctx := context.Background()
	if err := s.UpsertRegion(ctx, testRegion()); err != nil {
		t.Fatalf("UpsertRegion() error: %v", err)
	}
	a := model.Attraction{
		ID:           "311289",
		RegionID:     "valparaiso",
		Name:         "Cerro Alegre",
		Category:     "Neighborhoods",
		URL:          "https://example.com/Attraction_Review-g294306-d311289-Reviews-Cerro_Alegre.html",
		Rating:       4.5,
		ReviewCount:  100,
		Position:     1,
		DiscoveredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if _, err := s.MergeAttractions(ctx, []model.Attraction{a}); err != nil {
		t.Fatalf("MergeAttractions() error: %v", err)
	}
	return a
}

func TestStoreRegions(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	region := testRegion()
	if err := s.UpsertRegion(ctx, region); err != nil {
		t.Fatalf("UpsertRegion() error: %v", err)
	}

	// upsert with a new name replaces, not duplicates
	region.Name = "Valparaíso y alrededores"
	if err := s.UpsertRegion(ctx, region); err != nil {
		t.Fatalf("second UpsertRegion() error: %v", err)
	}

	regions, err := s.ListRegions(ctx)
	if err != nil {
		t.Fatalf("ListRegions() error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if regions[0].Name != "Valparaíso y alrededores" {
		t.Errorf("Name = %q, want updated name", regions[0].Name)
	}
}

func TestStoreMergeAttractions(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	a := seedRegionAndAttraction(t, s)

	t.Run("update preserves discovery time", func(t *testing.T) {
		updated := a
		updated.Rating = 4.7
		updated.ReviewCount = 120
		updated.DiscoveredAt = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

		inserted, err := s.MergeAttractions(ctx, []model.Attraction{updated})
		if err != nil {
			t.Fatalf("MergeAttractions() error: %v", err)
		}
		if inserted != 0 {
			t.Errorf("inserted = %d, want 0 for an existing attraction", inserted)
		}

		stored, err := s.ListAttractions(ctx, "valparaiso")
		if err != nil {
			t.Fatalf("ListAttractions() error: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("got %d attractions, want 1", len(stored))
		}
		got := stored[0]
		if got.Rating != 4.7 || got.ReviewCount != 120 {
			t.Errorf("mutable fields not updated: rating=%v count=%d", got.Rating, got.ReviewCount)
		}
		if !got.DiscoveredAt.Equal(a.DiscoveredAt) {
			t.Errorf("DiscoveredAt = %v, want original %v", got.DiscoveredAt, a.DiscoveredAt)
		}
	})

	t.Run("new attraction counts as inserted", func(t *testing.T) {
		b := a
		b.ID = "420761"
		b.Name = "Ascensor Artillería"
		b.URL = "https://example.com/Attraction_Review-g294306-d420761-Reviews-Ascensor.html"
		b.Position = 2

		inserted, err := s.MergeAttractions(ctx, []model.Attraction{b})
		if err != nil {
			t.Fatalf("MergeAttractions() error: %v", err)
		}
		if inserted != 1 {
			t.Errorf("inserted = %d, want 1", inserted)
		}
	})

	t.Run("mark crawled", func(t *testing.T) {
		at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
		if err := s.MarkAttractionCrawled(ctx, a.ID, at); err != nil {
			t.Fatalf("MarkAttractionCrawled() error: %v", err)
		}
		if err := s.MarkAttractionCrawled(ctx, "nope", at); err == nil {
			t.Error("MarkAttractionCrawled() on unknown id returned nil error")
		}
	})
}

func testReview(id, attractionID, text string) model.Review {
	return model.Review{
		ID:           id,
		AttractionID: attractionID,
		Author:       "traveler42",
		Title:        "Title " + id,
		Text:         text,
		Rating:       4,
		PostedDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Language:     "en",
		ExtractedAt:  time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC),
	}
}

func TestStoreMergeReviews(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	a := seedRegionAndAttraction(t, s)

	r1 := testReview("r1", a.ID, "Original text.")
	r2 := testReview("r2", a.ID, "Another review.")

	inserted, err := s.MergeReviews(ctx, []model.Review{r1, r2})
	if err != nil {
		t.Fatalf("MergeReviews() error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	t.Run("stored text is immutable", func(t *testing.T) {
		changed := r1
		changed.Text = "Rewritten text that must not land."
		inserted, err := s.MergeReviews(ctx, []model.Review{changed})
		if err != nil {
			t.Fatalf("MergeReviews() error: %v", err)
		}
		if inserted != 0 {
			t.Errorf("inserted = %d, want 0 for a duplicate", inserted)
		}

		count, err := s.StoredReviewCount(ctx, a.ID)
		if err != nil {
			t.Fatalf("StoredReviewCount() error: %v", err)
		}
		if count != 2 {
			t.Errorf("StoredReviewCount = %d, want 2", count)
		}

		reviews, err := s.ListUnclassifiedReviews(ctx, "m1", 0)
		if err != nil {
			t.Fatalf("ListUnclassifiedReviews() error: %v", err)
		}
		for _, r := range reviews {
			if r.ID == "r1" && r.Text != "Original text." {
				t.Errorf("review text = %q, want original preserved", r.Text)
			}
		}
	})

	t.Run("same hash id under other attraction is distinct", func(t *testing.T) {
		b := a
		b.ID = "999"
		b.URL = "https://example.com/Attraction_Review-g294306-d999-Reviews-Other.html"
		if _, err := s.MergeAttractions(ctx, []model.Attraction{b}); err != nil {
			t.Fatalf("MergeAttractions() error: %v", err)
		}
		other := testReview("r1", b.ID, "Same ID, different attraction.")
		inserted, err := s.MergeReviews(ctx, []model.Review{other})
		if err != nil {
			t.Fatalf("MergeReviews() error: %v", err)
		}
		if inserted != 1 {
			t.Errorf("inserted = %d, want 1 (identity is scoped to the attraction)", inserted)
		}
	})
}

func TestStoreSentiments(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	a := seedRegionAndAttraction(t, s)

	if _, err := s.MergeReviews(ctx, []model.Review{
		testReview("r1", a.ID, "Nice."),
		testReview("r2", a.ID, "Bad."),
	}); err != nil {
		t.Fatalf("MergeReviews() error: %v", err)
	}

	res := model.SentimentResult{
		ReviewID:     "r1",
		Label:        model.LabelPositive,
		Score:        3.1,
		ModelVersion: "m1",
		ClassifiedAt: time.Now().UTC(),
	}
	inserted, err := s.InsertSentiments(ctx, []model.SentimentResult{res})
	if err != nil {
		t.Fatalf("InsertSentiments() error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	t.Run("one result per review and model version", func(t *testing.T) {
		dup := res
		dup.Label = model.LabelVeryNegative
		inserted, err := s.InsertSentiments(ctx, []model.SentimentResult{dup})
		if err != nil {
			t.Fatalf("InsertSentiments() error: %v", err)
		}
		if inserted != 0 {
			t.Errorf("inserted = %d, want 0 for a duplicate pair", inserted)
		}
	})

	t.Run("another model version is a new row", func(t *testing.T) {
		v2 := res
		v2.ModelVersion = "m2"
		inserted, err := s.InsertSentiments(ctx, []model.SentimentResult{v2})
		if err != nil {
			t.Fatalf("InsertSentiments() error: %v", err)
		}
		if inserted != 1 {
			t.Errorf("inserted = %d, want 1 for a new model version", inserted)
		}
	})

	t.Run("unclassified listing shrinks", func(t *testing.T) {
		remaining, err := s.ListUnclassifiedReviews(ctx, "m1", 0)
		if err != nil {
			t.Fatalf("ListUnclassifiedReviews() error: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != "r2" {
			t.Errorf("remaining = %+v, want only r2", remaining)
		}
	})
}

func TestStoreAggregatesAndDataset(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	a := seedRegionAndAttraction(t, s)

	if _, err := s.MergeReviews(ctx, []model.Review{testReview("r1", a.ID, "Nice.")}); err != nil {
		t.Fatalf("MergeReviews() error: %v", err)
	}
	if _, err := s.InsertSentiments(ctx, []model.SentimentResult{{
		ReviewID: "r1", Label: model.LabelPositive, Score: 3.2, ModelVersion: "m1", ClassifiedAt: time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("InsertSentiments() error: %v", err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	regionAgg := model.RegionAggregate{
		RegionID:        "valparaiso",
		AttractionCount: 1,
		ReviewCount:     1,
		ClassifiedCount: 1,
		MeanRating:      4.0,
		MeanScore:       3.2,
		DominantLabel:   model.LabelPositive,
		Distribution:    model.Distribution{Positive: 100},
		Languages:       map[string]int{"en": 1},
		ComputedAt:      now,
	}
	attractionAgg := model.AttractionAggregate{
		AttractionID:    a.ID,
		RegionID:        "valparaiso",
		ReviewCount:     1,
		ClassifiedCount: 1,
		MeanRating:      4.0,
		MeanScore:       3.2,
		DominantLabel:   model.LabelPositive,
		Distribution:    model.Distribution{Positive: 100},
		ComputedAt:      now,
	}

	if err := s.ReplaceAggregates(ctx, []model.RegionAggregate{regionAgg}, []model.AttractionAggregate{attractionAgg}); err != nil {
		t.Fatalf("ReplaceAggregates() error: %v", err)
	}
	// replacing again must not duplicate rows
	if err := s.ReplaceAggregates(ctx, []model.RegionAggregate{regionAgg}, []model.AttractionAggregate{attractionAgg}); err != nil {
		t.Fatalf("second ReplaceAggregates() error: %v", err)
	}

	got, err := s.GetRegionAggregate(ctx, "valparaiso")
	if err != nil {
		t.Fatalf("GetRegionAggregate() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetRegionAggregate() returned nil")
	}
	if got.DominantLabel != model.LabelPositive {
		t.Errorf("DominantLabel = %v, want Positive", got.DominantLabel)
	}
	if got.Languages["en"] != 1 {
		t.Errorf("Languages = %v, want map with en:1", got.Languages)
	}
	if !got.ComputedAt.Equal(now) {
		t.Errorf("ComputedAt = %v, want %v", got.ComputedAt, now)
	}

	ds, err := s.LoadDataset(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadDataset() error: %v", err)
	}
	if ds.TotalAttractions() != 1 || ds.TotalReviews() != 1 {
		t.Fatalf("dataset has %d attractions / %d reviews, want 1/1", ds.TotalAttractions(), ds.TotalReviews())
	}
	rd := ds.Regions[0]
	if rd.Aggregate == nil {
		t.Error("region aggregate missing from dataset")
	}
	ad := rd.Attractions[0]
	if ad.Aggregate == nil {
		t.Error("attraction aggregate missing from dataset")
	}
	review := ad.Reviews[0]
	if review.Sentiment == nil {
		t.Fatal("sentiment missing from dataset review")
	}
	if review.Sentiment.Label != model.LabelPositive || review.Sentiment.Score != 3.2 {
		t.Errorf("sentiment = %+v, want Positive/3.2", review.Sentiment)
	}
	if !review.Review.PostedDate.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedDate = %v, round trip failed", review.Review.PostedDate)
	}

	t.Run("missing region aggregate is nil", func(t *testing.T) {
		agg, err := s.GetRegionAggregate(ctx, "nowhere")
		if err != nil {
			t.Fatalf("GetRegionAggregate() error: %v", err)
		}
		if agg != nil {
			t.Errorf("aggregate = %+v, want nil", agg)
		}
	})
}
