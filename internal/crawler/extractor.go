package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/model"
)

// reviewsPerPage is how many reviews the site shows per review page. Page N
// starts at offset (N-1)*reviewsPerPage, encoded in the URL as "-orOFFSET-".
const reviewsPerPage = 10

// ExtractResult is the outcome of extracting one attraction's reviews.
type ExtractResult struct {
	// AttractionID identifies the extracted attraction.
	AttractionID string

	// Reviews holds every review parsed across all pages, deduplicated
	// by review ID within the extraction.
	Reviews []model.Review

	// PagesFetched counts review pages successfully fetched and parsed.
	PagesFetched int

	// PagesSkipped counts pages dropped after fetch or parse failures.
	PagesSkipped int
}

// Extractor pulls all review pages for one attraction.
type Extractor struct {
	getter   PageGetter
	maxPages int
	language string
	logger   *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMaxReviewPages caps review pages fetched per attraction. Zero means
// no cap beyond what the review count implies.
func WithMaxReviewPages(n int) ExtractorOption {
	return func(e *Extractor) {
		e.maxPages = n
	}
}

// WithReviewLanguage restricts review pages to one language by appending the
// site's filterLang query parameter. Empty means all languages.
func WithReviewLanguage(lang string) ExtractorOption {
	return func(e *Extractor) {
		e.language = lang
	}
}

// WithExtractorLogger sets a custom logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor using getter for page fetches.
func NewExtractor(getter PageGetter, opts ...ExtractorOption) *Extractor {
	e := &Extractor{getter: getter}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// PageURL returns the URL of review page n (1-based) for an attraction.
// Page 1 is the attraction URL itself; later pages insert the "-orOFFSET-"
// segment after "-Reviews".
func PageURL(attractionURL string, n int) string {
	if n <= 1 {
		return attractionURL
	}
	offset := (n - 1) * reviewsPerPage
	return strings.Replace(attractionURL, "-Reviews-", fmt.Sprintf("-Reviews-or%d-", offset), 1)
}

// Extract fetches the attraction's review pages in order and collects every
// review. The expected page count comes from the listing's review count,
// corrected upward by the total the first page reports. Extraction stops
// early when a page yields no reviews.
//
// Failed pages are skipped and counted; only Blocked and context errors
// abort the attraction, since continuing after a block would dig the hole
// deeper.
func (e *Extractor) Extract(ctx context.Context, attraction model.Attraction) (*ExtractResult, error) {
	result := &ExtractResult{AttractionID: attraction.ID}
	seen := make(map[string]bool)

	expectedPages := pageCount(attraction.ReviewCount)
	if expectedPages < 1 {
		expectedPages = 1
	}
	if e.maxPages > 0 && expectedPages > e.maxPages {
		expectedPages = e.maxPages
	}

	for pageNum := 1; pageNum <= expectedPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageURL := PageURL(attraction.URL, pageNum)
		if e.language != "" {
			pageURL = withLanguageFilter(pageURL, e.language)
		}
		res, err := e.getter.Get(ctx, pageURL)
		if err != nil {
			if fetch.IsBlocked(err) || ctx.Err() != nil {
				return result, err
			}
			e.logger.Warn("skipping review page",
				"attraction", attraction.ID,
				"page", pageNum,
				"error", err,
			)
			result.PagesSkipped++
			continue
		}

		page, err := ParseReviews(res.Body, attraction.ID)
		if err != nil {
			e.logger.Warn("skipping unparseable review page",
				"attraction", attraction.ID,
				"page", pageNum,
				"error", err,
			)
			result.PagesSkipped++
			continue
		}
		result.PagesFetched++

		if pageNum == 1 && page.TotalReviews > 0 {
			if total := pageCount(page.TotalReviews); total > expectedPages {
				expectedPages = total
				if e.maxPages > 0 && expectedPages > e.maxPages {
					expectedPages = e.maxPages
				}
			}
		}

		if len(page.Reviews) == 0 {
			// past the last real page
			break
		}
		for _, r := range page.Reviews {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			result.Reviews = append(result.Reviews, r)
		}
	}

	e.logger.Info("extraction finished",
		"attraction", attraction.ID,
		"reviews", len(result.Reviews),
		"pages_fetched", result.PagesFetched,
		"pages_skipped", result.PagesSkipped,
	)
	return result, nil
}

// withLanguageFilter appends the site's review language filter to a page URL.
func withLanguageFilter(rawURL, lang string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("filterLang", lang)
	u.RawQuery = q.Encode()
	return u.String()
}

// pageCount returns how many review pages hold n reviews.
func pageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + reviewsPerPage - 1) / reviewsPerPage
}
