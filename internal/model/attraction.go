package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Attraction represents a single attraction discovered in a region listing.
//
// Design decision: identity comes from the site's numeric location ID embedded
// in the attraction URL (the "-dNNNNN-" segment) rather than from the name,
// because names are edited over time while the location ID is stable. Mutable
// listing state (rating, review count) is kept separate from identity fields
// so that merges can update one without touching the other.
type Attraction struct {
	// ID is the numeric location identifier extracted from the URL.
	ID string `json:"id"`

	// RegionID links the attraction to the region whose listing it was
	// discovered in.
	RegionID string `json:"region_id"`

	// Name is the attraction display name as shown in the listing.
	Name string `json:"name"`

	// Category is the attraction category (e.g. "Museums"), empty when the
	// listing card does not carry one.
	Category string `json:"category,omitempty"`

	// URL is the absolute URL of the attraction's review page.
	URL string `json:"url"`

	// Rating is the site-reported average rating (0 when absent).
	Rating float64 `json:"rating"`

	// ReviewCount is the site-reported total number of reviews.
	ReviewCount int `json:"review_count"`

	// Position is the 1-based rank of the attraction within the listing at
	// discovery time.
	Position int `json:"position"`

	// DiscoveredAt is when this attraction was first seen.
	DiscoveredAt time.Time `json:"discovered_at"`

	// LastCrawledAt is when reviews were last extracted for this attraction.
	// Zero if extraction has never completed.
	LastCrawledAt time.Time `json:"last_crawled_at,omitempty"`
}

// attractionIDPattern matches the numeric location ID segment in an
// attraction URL, e.g. "/Attraction_Review-g294306-d311289-Reviews-...".
var attractionIDPattern = regexp.MustCompile(`-d(\d+)-`)

// AttractionIDFromURL extracts the numeric location ID from an attraction
// URL. It returns an empty string when the URL carries no ID segment.
func AttractionIDFromURL(rawURL string) string {
	m := attractionIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Validate checks that the attraction can be stored and crawled.
func (a Attraction) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing id (url=%q)", ErrInvalidAttraction, a.URL)
	}
	if a.RegionID == "" {
		return fmt.Errorf("%w: attraction %s has no region", ErrInvalidAttraction, a.ID)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: attraction %s has no name", ErrInvalidAttraction, a.ID)
	}
	if a.URL == "" {
		return fmt.Errorf("%w: attraction %s has no URL", ErrInvalidAttraction, a.ID)
	}
	return nil
}
