package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Review represents a single user review extracted from an attraction's
// review pages.
//
// Design decision: the review ID is the site's native review identifier when
// the page exposes one. When it does not, a content hash over the stable
// fields stands in, so deduplication keeps working for anonymous cards. Text
// and posted date are treated as immutable once stored; re-extraction never
// rewrites them.
type Review struct {
	// ID is the site review identifier, or a content hash when the page
	// exposes none. See FallbackID.
	ID string `json:"id"`

	// AttractionID is the attraction this review belongs to.
	AttractionID string `json:"attraction_id"`

	// Author is the reviewer display name, empty when the card is anonymous.
	Author string `json:"author,omitempty"`

	// Title is the review headline.
	Title string `json:"title,omitempty"`

	// Text is the review body.
	Text string `json:"text"`

	// Rating is the reviewer's bubble rating on the 1..5 scale, 0 when the
	// card carried no parseable rating.
	Rating int `json:"rating"`

	// PostedDate is when the review was written, zero when unparseable.
	PostedDate time.Time `json:"posted_date,omitempty"`

	// VisitDate is the month of the visit as reported by the reviewer,
	// zero when absent.
	VisitDate time.Time `json:"visit_date,omitempty"`

	// TripType is the reported trip companion type (e.g. "Family"), empty
	// when absent.
	TripType string `json:"trip_type,omitempty"`

	// Language is the BCP 47 language tag of the review text when the page
	// declares one (normalized), empty otherwise.
	Language string `json:"language,omitempty"`

	// ExtractedAt is when this review was pulled from the site.
	ExtractedAt time.Time `json:"extracted_at"`
}

// FallbackID derives a stable identifier from the review's immutable content
// when the page exposes no native review ID. Author, title, text, and posted
// date together are stable across re-crawls of the same card.
func (r Review) FallbackID() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s",
		r.AttractionID, r.Author, r.Title, r.Text, r.PostedDate.UTC().Format(time.RFC3339))
	return "h:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// ClassifiableText returns the text submitted to the sentiment model: the
// title and body joined with ". " when both are present, otherwise whichever
// one exists. An empty result means the review cannot be classified.
func (r Review) ClassifiableText() string {
	switch {
	case r.Title != "" && r.Text != "":
		return r.Title + ". " + r.Text
	case r.Title != "":
		return r.Title
	default:
		return r.Text
	}
}

// Validate checks that the review has an identity and an owner.
func (r Review) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidReview)
	}
	if r.AttractionID == "" {
		return fmt.Errorf("%w: review %s has no attraction", ErrInvalidReview, r.ID)
	}
	return nil
}
