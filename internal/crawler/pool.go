package crawler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/model"
)

// defaultPoolWorkers is the extraction concurrency. Three workers keeps
// total request pressure modest even before the shared limiter applies.
const defaultPoolWorkers = 3

// Pool extracts reviews for many attractions concurrently.
//
// Design decision: errgroup with SetLimit rather than a hand-rolled worker
// pool. Each attraction gets its own goroutine; the limit bounds how many run
// at once, and the shared fetch limiter bounds request rate independently of
// worker count. Results are pre-allocated by index so output order matches
// input order regardless of completion order.
type Pool struct {
	extractor *Extractor
	workers   int
	logger    *slog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of concurrent extractions.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPoolLogger sets a custom logger.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates a Pool driving extractor.
func NewPool(extractor *Extractor, opts ...PoolOption) *Pool {
	p := &Pool{
		extractor: extractor,
		workers:   defaultPoolWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// ExtractAll runs extraction for every attraction. Per-attraction failures
// are recorded in the result slice (nil entry) and do not stop the batch;
// a Blocked error or context cancellation stops everything and returns the
// results collected so far.
func (p *Pool) ExtractAll(ctx context.Context, attractions []model.Attraction) ([]*ExtractResult, error) {
	results := make([]*ExtractResult, len(attractions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, attraction := range attractions {
		g.Go(func() error {
			res, err := p.extractor.Extract(gctx, attraction)
			if err != nil {
				if fetch.IsBlocked(err) || gctx.Err() != nil {
					// keep partial results, stop the group
					results[i] = res
					return err
				}
				p.logger.Warn("attraction extraction failed",
					"attraction", attraction.ID,
					"error", err,
				)
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
