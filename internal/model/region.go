package model

import (
	"fmt"
	"strings"
)

// Region identifies a geographic area whose attraction listing is crawled.
// Regions are configured by the user (regions file) rather than discovered,
// so the struct stays small: an identifier, a display name, and the listing
// URL where attraction discovery starts.
type Region struct {
	// ID is a stable, URL-safe identifier (e.g. "valparaiso").
	// It is used as the database key and in file names, so it must be
	// non-empty and lowercase.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable region name (e.g. "Valparaíso").
	Name string `json:"name" yaml:"name"`

	// ListingURL is the first page of the attraction listing for this region.
	ListingURL string `json:"listing_url" yaml:"listing_url"`
}

// Validate checks that the region has all fields required to crawl it.
func (r Region) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: region id is empty", ErrInvalidRegion)
	}
	if r.ID != strings.ToLower(r.ID) {
		return fmt.Errorf("%w: region id %q must be lowercase", ErrInvalidRegion, r.ID)
	}
	if strings.ContainsAny(r.ID, " /\\") {
		return fmt.Errorf("%w: region id %q contains path or space characters", ErrInvalidRegion, r.ID)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: region %q has no name", ErrInvalidRegion, r.ID)
	}
	if !strings.HasPrefix(r.ListingURL, "http://") && !strings.HasPrefix(r.ListingURL, "https://") {
		return fmt.Errorf("%w: region %q listing URL %q is not absolute", ErrInvalidRegion, r.ID, r.ListingURL)
	}
	return nil
}
