package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/model"
)

// defaultMaxListingPages bounds listing pagination. A region listing rarely
// exceeds a few dozen pages; the cap stops runaway crawls when the next-page
// link loops.
const defaultMaxListingPages = 50

// PageGetter fetches one URL. Both fetch.Fetcher and fetch.Retrier satisfy
// it; tests substitute a stub.
type PageGetter interface {
	Get(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Discoverer walks a region's listing pages and collects the attractions
// found there.
//
// Design decision: discovery is sequential, not pooled. Listing pagination is
// a linked chain where each page reveals the next URL, so there is nothing to
// parallelize, and a single walker keeps the request pattern close to a
// human paging through results.
type Discoverer struct {
	getter         PageGetter
	maxPages       int
	maxAttractions int
	logger         *slog.Logger
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithMaxListingPages caps how many listing pages are walked per region.
func WithMaxListingPages(n int) DiscovererOption {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithMaxAttractions caps how many attractions are collected per region.
// Zero means no cap.
func WithMaxAttractions(n int) DiscovererOption {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxAttractions = n
		}
	}
}

// WithDiscovererLogger sets a custom logger.
func WithDiscovererLogger(logger *slog.Logger) DiscovererOption {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// NewDiscoverer creates a Discoverer using getter for page fetches.
func NewDiscoverer(getter PageGetter, opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		getter:   getter,
		maxPages: defaultMaxListingPages,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Discover walks the region's listing from its first page and returns every
// attraction seen, deduplicated by ID with the first occurrence winning.
// A fetch failure on page one fails discovery; a failure on a later page
// returns what was collected so far along with the error. Blocked errors are
// always returned so the caller can stop the whole run.
func (d *Discoverer) Discover(ctx context.Context, region model.Region) ([]model.Attraction, error) {
	var attractions []model.Attraction
	seen := make(map[string]bool)
	pageURL := region.ListingURL

	for pageNum := 1; pageURL != "" && pageNum <= d.maxPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return attractions, err
		}

		res, err := d.getter.Get(ctx, pageURL)
		if err != nil {
			if pageNum == 1 {
				return nil, fmt.Errorf("region %s: listing page 1: %w", region.ID, err)
			}
			return attractions, fmt.Errorf("region %s: listing page %d: %w", region.ID, pageNum, err)
		}

		page, err := ParseListing(res.Body, pageURL)
		if err != nil {
			return attractions, fmt.Errorf("region %s: listing page %d: %w", region.ID, pageNum, err)
		}

		now := time.Now().UTC()
		added := 0
		for _, a := range page.Attractions {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			a.RegionID = region.ID
			a.DiscoveredAt = now
			if err := a.Validate(); err != nil {
				d.logger.Warn("dropping invalid attraction card", "region", region.ID, "error", err)
				continue
			}
			attractions = append(attractions, a)
			added++
			if d.maxAttractions > 0 && len(attractions) >= d.maxAttractions {
				d.logger.Info("attraction cap reached", "region", region.ID, "cap", d.maxAttractions)
				return attractions, nil
			}
		}

		d.logger.Info("listing page parsed",
			"region", region.ID,
			"page", pageNum,
			"attractions", added,
			"incomplete_cards", page.Incomplete,
		)
		pageURL = page.NextURL
	}

	d.logger.Info("discovery finished", "region", region.ID, "total", len(attractions))
	return attractions, nil
}
