package model

import (
	"sync"
	"time"
)

// RunReport accumulates counters and findings across one pipeline run. Every
// run produces a report, even when individual regions fail partway.
//
// Design decision: the report carries its own mutex rather than relying on
// callers to serialize, because extraction workers and pipeline steps update
// it concurrently. All mutating methods take the lock; read access after the
// run (reporting, exit code) happens single-threaded.
type RunReport struct {
	mu sync.Mutex

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, set by Finish.
	FinishedAt time.Time `json:"finished_at"`

	// ModelVersion is the sentiment model used for this run.
	ModelVersion string `json:"model_version"`

	// Regions lists the per-region outcomes in processing order.
	Regions []RegionOutcome `json:"regions"`

	// AttractionsDiscovered counts attractions seen in listings this run.
	AttractionsDiscovered int `json:"attractions_discovered"`

	// AttractionsUpToDate counts attractions skipped because the stored
	// review count already matched the listing.
	AttractionsUpToDate int `json:"attractions_up_to_date"`

	// ReviewsExtracted counts reviews parsed from review pages this run.
	ReviewsExtracted int `json:"reviews_extracted"`

	// ReviewsNew counts extracted reviews that were not already stored.
	ReviewsNew int `json:"reviews_new"`

	// PagesSkipped counts review pages dropped due to fetch or parse
	// failures after retries.
	PagesSkipped int `json:"pages_skipped"`

	// AttractionsIncomplete lists attraction IDs whose extraction skipped
	// at least one page, so their stored reviews may fall short of the
	// site's count until a later run fills the gap.
	AttractionsIncomplete []string `json:"attractions_incomplete,omitempty"`

	// ReviewsClassified counts reviews that gained a sentiment result.
	ReviewsClassified int `json:"reviews_classified"`

	// ReviewsUnclassified counts reviews left without a result: empty text
	// or failed inference batches.
	ReviewsUnclassified int `json:"reviews_unclassified"`

	// Errors lists non-fatal errors encountered during the run.
	Errors []string `json:"errors,omitempty"`
}

// RegionOutcome records how processing ended for one region.
type RegionOutcome struct {
	// RegionID identifies the region.
	RegionID string `json:"region_id"`

	// Completed is true when every stage finished for the region.
	Completed bool `json:"completed"`

	// Blocked is true when the site refused access (HTTP 403) and the
	// region was abandoned without retrying.
	Blocked bool `json:"blocked"`

	// Error holds the failure message when Completed is false, empty
	// otherwise.
	Error string `json:"error,omitempty"`
}

// NewRunReport starts a report for a run using the given model version.
func NewRunReport(modelVersion string) *RunReport {
	return &RunReport{
		StartedAt:    time.Now().UTC(),
		ModelVersion: modelVersion,
	}
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now().UTC()
}

// Duration returns the wall-clock length of the run. Zero before Finish.
func (r *RunReport) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AddRegionOutcome appends one region's result.
func (r *RunReport) AddRegionOutcome(o RegionOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Regions = append(r.Regions, o)
}

// AddDiscovered adds to the discovered-attractions counter.
func (r *RunReport) AddDiscovered(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AttractionsDiscovered += n
}

// AddUpToDate adds to the skipped up-to-date attraction counter.
func (r *RunReport) AddUpToDate(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AttractionsUpToDate += n
}

// AddExtracted records extracted and newly stored review counts.
func (r *RunReport) AddExtracted(extracted, stored int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ReviewsExtracted += extracted
	r.ReviewsNew += stored
}

// AddPagesSkipped adds to the skipped-pages counter.
func (r *RunReport) AddPagesSkipped(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PagesSkipped += n
}

// AddIncompleteAttraction marks one attraction as incompletely extracted.
func (r *RunReport) AddIncompleteAttraction(attractionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AttractionsIncomplete = append(r.AttractionsIncomplete, attractionID)
}

// AddClassified records classified and unclassified review counts.
func (r *RunReport) AddClassified(classified, unclassified int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ReviewsClassified += classified
	r.ReviewsUnclassified += unclassified
}

// AddError records a non-fatal error message.
func (r *RunReport) AddError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

// Snapshot returns a copy of the report safe to serialize while workers may
// still be running.
func (r *RunReport) Snapshot() *RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := &RunReport{
		StartedAt:             r.StartedAt,
		FinishedAt:            r.FinishedAt,
		ModelVersion:          r.ModelVersion,
		AttractionsDiscovered: r.AttractionsDiscovered,
		AttractionsUpToDate:   r.AttractionsUpToDate,
		ReviewsExtracted:      r.ReviewsExtracted,
		ReviewsNew:            r.ReviewsNew,
		PagesSkipped:          r.PagesSkipped,
		ReviewsClassified:     r.ReviewsClassified,
		ReviewsUnclassified:   r.ReviewsUnclassified,
	}
	cp.Regions = append(cp.Regions, r.Regions...)
	cp.AttractionsIncomplete = append(cp.AttractionsIncomplete, r.AttractionsIncomplete...)
	cp.Errors = append(cp.Errors, r.Errors...)
	return cp
}
