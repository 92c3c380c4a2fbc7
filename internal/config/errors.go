package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the regions file
// loader, and provide specific information about what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRate is returned when the request rate is not positive.
	// A rate of zero would block every request forever.
	ErrInvalidRate = errors.New("invalid request rate: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no extraction happens at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is not
	// positive. Every page needs at least one attempt.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be positive")

	// ErrInvalidBatchSize is returned when the inference batch size is not
	// positive. A batch size of zero would mean no classification.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxAttractions is returned when the per-region attraction cap
	// is negative. Use 0 to disable the cap.
	ErrInvalidMaxAttractions = errors.New("invalid max attractions: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown and --csv is specified. Only one output format can be used
	// at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json, --markdown and --csv cannot be combined")

	// ErrNoRegions is returned when the regions file defines no regions.
	// A run without regions has nothing to do.
	ErrNoRegions = errors.New("no regions configured: add at least one region to the regions file")

	// ErrDuplicateRegion is returned when two regions share an ID.
	// Region IDs key the database, so they must be unique.
	ErrDuplicateRegion = errors.New("duplicate region id in regions file")

	// ErrInvalidRegion is returned when a region entry is missing its ID or
	// listing URL, or the listing URL is not an absolute http(s) URL.
	ErrInvalidRegion = errors.New("invalid region entry: id and an absolute http(s) listing_url are required")
)
