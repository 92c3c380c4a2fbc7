package model

import "time"

// Distribution holds the percentage of reviews in each of the five sentiment
// classes. Percentages are rounded to one decimal and computed over classified
// reviews only, so they sum to roughly 100 (exact up to rounding).
type Distribution struct {
	VeryNegative float64 `json:"very_negative"`
	Negative     float64 `json:"negative"`
	Neutral      float64 `json:"neutral"`
	Positive     float64 `json:"positive"`
	VeryPositive float64 `json:"very_positive"`
}

// Share returns the percentage stored for the given label.
// LabelUnclassified returns 0.
func (d Distribution) Share(l Label) float64 {
	switch l {
	case LabelVeryNegative:
		return d.VeryNegative
	case LabelNegative:
		return d.Negative
	case LabelNeutral:
		return d.Neutral
	case LabelPositive:
		return d.Positive
	case LabelVeryPositive:
		return d.VeryPositive
	default:
		return 0
	}
}

// SetShare stores a percentage for the given label. Setting
// LabelUnclassified is a no-op.
func (d *Distribution) SetShare(l Label, pct float64) {
	switch l {
	case LabelVeryNegative:
		d.VeryNegative = pct
	case LabelNegative:
		d.Negative = pct
	case LabelNeutral:
		d.Neutral = pct
	case LabelPositive:
		d.Positive = pct
	case LabelVeryPositive:
		d.VeryPositive = pct
	}
}

// AttractionAggregate summarizes one attraction's reviews and sentiment.
// All statistics derive purely from stored reviews and sentiment results, so
// recomputing over the same data always yields the same aggregate.
type AttractionAggregate struct {
	// AttractionID identifies the summarized attraction.
	AttractionID string `json:"attraction_id"`

	// RegionID is carried for grouping in exports.
	RegionID string `json:"region_id"`

	// ReviewCount is the number of stored reviews for the attraction.
	ReviewCount int `json:"review_count"`

	// ClassifiedCount is the number of those reviews with a sentiment
	// result for the run's model version.
	ClassifiedCount int `json:"classified_count"`

	// MeanRating is the average of reviewer ratings over reviews that carry
	// one, rounded to two decimals. Zero when no review has a rating.
	MeanRating float64 `json:"mean_rating"`

	// MeanScore is the average expected sentiment score over classified
	// reviews, rounded to two decimals.
	MeanScore float64 `json:"mean_score"`

	// DominantLabel is the class with the largest share; ties resolve to
	// the more positive class. LabelUnclassified when nothing is classified.
	DominantLabel Label `json:"dominant_label"`

	// Distribution is the per-class percentage breakdown.
	Distribution Distribution `json:"distribution"`

	// ComputedAt is when the aggregate snapshot was taken.
	ComputedAt time.Time `json:"computed_at"`
}

// RegionAggregate summarizes a region across all of its attractions.
type RegionAggregate struct {
	// RegionID identifies the summarized region.
	RegionID string `json:"region_id"`

	// AttractionCount is the number of attractions with stored reviews.
	AttractionCount int `json:"attraction_count"`

	// ReviewCount is the total number of stored reviews in the region.
	ReviewCount int `json:"review_count"`

	// ClassifiedCount is the number of reviews with a sentiment result.
	ClassifiedCount int `json:"classified_count"`

	// MeanRating is the review-weighted average rating, rounded to two
	// decimals.
	MeanRating float64 `json:"mean_rating"`

	// MeanScore is the review-weighted average sentiment score, rounded to
	// two decimals.
	MeanScore float64 `json:"mean_score"`

	// DominantLabel is the class with the largest share across the region.
	DominantLabel Label `json:"dominant_label"`

	// Distribution is the per-class percentage breakdown over all
	// classified reviews in the region.
	Distribution Distribution `json:"distribution"`

	// Languages maps normalized language tags to review counts, for the
	// per-language view of the region. Reviews without a detected language
	// are counted under "und".
	Languages map[string]int `json:"languages,omitempty"`

	// ComputedAt is when the aggregate snapshot was taken.
	ComputedAt time.Time `json:"computed_at"`
}
