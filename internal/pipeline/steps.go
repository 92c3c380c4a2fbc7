package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ignacioe7/tripscan/internal/analyze"
	"github.com/ignacioe7/tripscan/internal/crawler"
	"github.com/ignacioe7/tripscan/internal/database"
	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/model"
	"github.com/ignacioe7/tripscan/internal/sentiment"
)

// classifyChunkSize is how many unclassified reviews are pulled from the
// store per round. Keeps memory flat on large backlogs and bounds the work
// lost on cancellation.
const classifyChunkSize = 500

// DiscoverStep walks each configured region's listing and merges the
// discovered attractions into the store.
type DiscoverStep struct {
	regions    []model.Region
	discoverer *crawler.Discoverer
	store      *database.Store
	logger     *slog.Logger
}

// NewDiscoverStep creates a DiscoverStep over the given regions.
func NewDiscoverStep(regions []model.Region, discoverer *crawler.Discoverer, store *database.Store, logger *slog.Logger) *DiscoverStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoverStep{regions: regions, discoverer: discoverer, store: store, logger: logger}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do discovers attractions region by region. A failed region is recorded and
// skipped; a Blocked site or a canceled context stops the step with an error
// so the pipeline aborts the run.
func (s *DiscoverStep) Do(ctx context.Context, report *model.RunReport) error {
	for _, region := range s.regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.store.UpsertRegion(ctx, region); err != nil {
			return err
		}

		attractions, err := s.discoverer.Discover(ctx, region)
		if err != nil {
			if fetch.IsBlocked(err) || ctx.Err() != nil {
				report.AddRegionOutcome(model.RegionOutcome{
					RegionID: region.ID,
					Blocked:  fetch.IsBlocked(err),
					Error:    err.Error(),
				})
				return err
			}
			s.logger.Warn("region discovery failed", "region", region.ID, "error", err)
			report.AddError(fmt.Sprintf("discover %s: %v", region.ID, err))
		}

		if len(attractions) > 0 {
			if _, err := s.store.MergeAttractions(ctx, attractions); err != nil {
				return err
			}
			report.AddDiscovered(len(attractions))
		}
	}
	return nil
}

// ExtractStep pulls review pages for every stored attraction whose review
// count has moved since the last crawl, and merges the reviews.
type ExtractStep struct {
	pool   *crawler.Pool
	store  *database.Store
	logger *slog.Logger
}

// NewExtractStep creates an ExtractStep using pool for concurrent extraction.
func NewExtractStep(pool *crawler.Pool, store *database.Store, logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{pool: pool, store: store, logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts reviews region by region. Attractions whose stored review count
// already matches the listing are skipped as up to date. Regions run
// sequentially; attractions within a region run on the pool.
func (s *ExtractStep) Do(ctx context.Context, report *model.RunReport) error {
	regions, err := s.store.ListRegions(ctx)
	if err != nil {
		return err
	}

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}

		attractions, err := s.store.ListAttractions(ctx, region.ID)
		if err != nil {
			return err
		}

		var toCrawl []model.Attraction
		for _, a := range attractions {
			stored, err := s.store.StoredReviewCount(ctx, a.ID)
			if err != nil {
				return err
			}
			if a.ReviewCount > 0 && stored >= a.ReviewCount {
				s.logger.Debug("attraction up to date", "attraction", a.ID, "reviews", stored)
				report.AddUpToDate(1)
				continue
			}
			toCrawl = append(toCrawl, a)
		}
		if len(toCrawl) == 0 {
			report.AddRegionOutcome(model.RegionOutcome{RegionID: region.ID, Completed: true})
			continue
		}

		results, poolErr := s.pool.ExtractAll(ctx, toCrawl)
		for _, res := range results {
			if res == nil {
				continue
			}
			stored := 0
			if len(res.Reviews) > 0 {
				stored, err = s.store.MergeReviews(ctx, res.Reviews)
				if err != nil {
					return err
				}
			}
			report.AddExtracted(len(res.Reviews), stored)
			report.AddPagesSkipped(res.PagesSkipped)
			if res.PagesSkipped > 0 {
				report.AddIncompleteAttraction(res.AttractionID)
			}
			if res.PagesFetched > 0 {
				if err := s.store.MarkAttractionCrawled(ctx, res.AttractionID, time.Now().UTC()); err != nil {
					return err
				}
			}
		}

		if poolErr != nil {
			report.AddRegionOutcome(model.RegionOutcome{
				RegionID: region.ID,
				Blocked:  fetch.IsBlocked(poolErr),
				Error:    poolErr.Error(),
			})
			return poolErr
		}
		report.AddRegionOutcome(model.RegionOutcome{RegionID: region.ID, Completed: true})
	}
	return nil
}

// ClassifyStep runs sentiment inference over every stored review that has no
// result for the run's model version.
type ClassifyStep struct {
	classifier *sentiment.Classifier
	store      *database.Store
	logger     *slog.Logger
}

// NewClassifyStep creates a ClassifyStep.
func NewClassifyStep(classifier *sentiment.Classifier, store *database.Store, logger *slog.Logger) *ClassifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyStep{classifier: classifier, store: store, logger: logger}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do pulls unclassified reviews in chunks and classifies them. Reviews the
// classifier could not handle stay unclassified and are counted; results are
// stored after each chunk so cancellation loses at most one chunk of work.
func (s *ClassifyStep) Do(ctx context.Context, report *model.RunReport) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		reviews, err := s.store.ListUnclassifiedReviews(ctx, report.ModelVersion, classifyChunkSize)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			return nil
		}

		outcome, err := s.classifier.ClassifyReviews(ctx, reviews)
		if err != nil {
			return err
		}
		if len(outcome.Results) > 0 {
			if _, err := s.store.InsertSentiments(ctx, outcome.Results); err != nil {
				return err
			}
		}
		report.AddClassified(len(outcome.Results), outcome.Unclassified)

		// Anything still unclassified in this chunk would come back on the
		// next query, so a chunk that produced no results ends the loop.
		if len(outcome.Results) == 0 {
			return nil
		}
		if len(reviews) < classifyChunkSize {
			return nil
		}
	}
}

// AggregateStep recomputes the aggregate snapshot from everything stored.
type AggregateStep struct {
	store  *database.Store
	logger *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewAggregateStep creates an AggregateStep.
func NewAggregateStep(store *database.Store, logger *slog.Logger) *AggregateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateStep{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do loads the dataset, computes aggregates, and replaces the stored
// snapshot in one transaction.
func (s *AggregateStep) Do(ctx context.Context, report *model.RunReport) error {
	ds, err := s.store.LoadDataset(ctx, report.ModelVersion)
	if err != nil {
		return err
	}

	regionAggs, attractionAggs := analyze.AggregateDataset(ds, s.now())
	if err := s.store.ReplaceAggregates(ctx, regionAggs, attractionAggs); err != nil {
		return err
	}

	s.logger.Info("aggregates recomputed",
		"regions", len(regionAggs),
		"attractions", len(attractionAggs),
	)
	return nil
}
