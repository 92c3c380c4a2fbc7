package model

import "time"

// Dataset is the consolidated export of everything stored: regions with their
// attractions, each attraction with its reviews and sentiment results, plus
// the precomputed aggregates. Report writers consume this structure rather
// than querying the database themselves.
type Dataset struct {
	// GeneratedAt is when the export was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// ModelVersion is the sentiment model whose results are included.
	ModelVersion string `json:"model_version"`

	// Regions holds one entry per region, sorted by region ID.
	Regions []RegionData `json:"regions"`
}

// RegionData groups one region's attractions and aggregate.
type RegionData struct {
	Region      Region `json:"region"`
	Attractions []AttractionData `json:"attractions"`

	// Aggregate is nil when aggregation has not run for this region.
	Aggregate *RegionAggregate `json:"aggregate,omitempty"`
}

// AttractionData groups one attraction's reviews and aggregate.
type AttractionData struct {
	Attraction Attraction   `json:"attraction"`
	Reviews    []ReviewData `json:"reviews"`

	// Aggregate is nil when aggregation has not run for this attraction.
	Aggregate *AttractionAggregate `json:"aggregate,omitempty"`
}

// ReviewData pairs a review with its sentiment result, if any.
type ReviewData struct {
	Review Review `json:"review"`

	// Sentiment is nil when the review has no result for the exported
	// model version.
	Sentiment *SentimentResult `json:"sentiment,omitempty"`
}

// TotalReviews counts all reviews in the dataset.
func (d Dataset) TotalReviews() int {
	n := 0
	for _, rd := range d.Regions {
		for _, ad := range rd.Attractions {
			n += len(ad.Reviews)
		}
	}
	return n
}

// TotalAttractions counts all attractions in the dataset.
func (d Dataset) TotalAttractions() int {
	n := 0
	for _, rd := range d.Regions {
		n += len(rd.Attractions)
	}
	return n
}
