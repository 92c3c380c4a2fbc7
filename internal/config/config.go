package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/ignacioe7/tripscan/internal/model"
)

// Default configuration values.
// These values are chosen to stay well below the review site's rate
// limiting thresholds while keeping full-region runs tractable.
const (
	// DefaultTimeout is the per-request timeout. The site serves heavy
	// pages and occasionally stalls; 30 seconds covers slow responses
	// without hanging a worker for minutes.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond caps the outbound request rate across all
	// workers. One request per second is conservative enough that runs
	// over several hundred pages have not triggered blocking in practice.
	DefaultRequestsPerSecond = 1.0

	// DefaultWorkers is the number of attractions extracted concurrently.
	// The shared rate limiter bounds actual request pressure, so more
	// workers mostly help when pages parse slowly.
	DefaultWorkers = 3

	// DefaultMaxAttempts is how many times a transient fetch failure is
	// retried before the page is skipped.
	DefaultMaxAttempts = 4

	// DefaultMaxReviewPages caps review pages fetched per attraction.
	// Attractions with tens of thousands of reviews would otherwise
	// dominate a run. Zero disables the cap.
	DefaultMaxReviewPages = 0

	// DefaultBatchSize is the number of review texts sent per inference
	// request. Sixteen keeps request bodies small enough for hosted
	// inference endpoints while amortizing round trips.
	DefaultBatchSize = 16

	// DefaultInferenceEndpoint is the hosted inference URL for the default
	// sentiment model.
	DefaultInferenceEndpoint = "https://api-inference.huggingface.co/models/tabularisai/multilingual-sentiment-analysis"

	// DefaultModelName identifies the sentiment model. It is stored with
	// every result so reclassification with a newer model can coexist
	// with older results.
	DefaultModelName = "tabularisai/multilingual-sentiment-analysis"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for the site's HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "tripscan"
)

// Config holds all configuration options for tripscan.
// This struct is designed to be populated from CLI flags and the config
// file, and passed through the application via dependency injection rather
// than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, SentimentConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Timeout is the timeout for each HTTP request.
	// This applies to individual requests, not the overall run duration.
	Timeout time.Duration

	// RequestsPerSecond caps the outbound request rate shared by all
	// extraction workers.
	RequestsPerSecond float64

	// Workers is the number of attractions extracted concurrently within
	// one region.
	Workers int

	// MaxAttempts is how many times a transient fetch failure is retried.
	MaxAttempts int

	// MaxReviewPages caps review pages fetched per attraction.
	// Zero means no cap.
	MaxReviewPages int

	// MaxAttractions caps how many attractions are collected per region.
	// Zero means no cap. Useful for sampling a large region.
	MaxAttractions int

	// Language restricts review extraction to one review language, using
	// the site's language filter (e.g. "en", "es"). Empty means all.
	Language string

	// UserAgent overrides the User-Agent header sent with HTTP requests.
	// When empty, the fetcher's browser-like default is used.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are rejected. Set to 0 for the default.
	MaxBodySize int64

	// InferenceEndpoint is the URL of the sentiment inference API.
	InferenceEndpoint string

	// InferenceToken authenticates against the inference API.
	// Taken from the TRIPSCAN_HF_TOKEN environment variable when empty.
	InferenceToken string

	// ModelName identifies the sentiment model, stored with every result.
	ModelName string

	// BatchSize is the number of review texts per inference request.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// RegionsFilePath is the path to the regions configuration file.
	// If empty, the tool searches for tripscan.yml in the current
	// directory and then in the XDG config directory.
	RegionsFilePath string

	// Regions holds the regions to process, loaded from the regions file.
	Regions []model.Region

	// JSONReport enables JSON output instead of human-readable format.
	// Mutually exclusive with MarkdownReport and CSVReport.
	JSONReport bool

	// MarkdownReport enables Markdown output with tables and charts.
	// Mutually exclusive with JSONReport and CSVReport.
	MarkdownReport bool

	// CSVReport enables flat CSV output for spreadsheets.
	// Mutually exclusive with JSONReport and MarkdownReport.
	CSVReport bool

	// ReportFile is the output file path for exports.
	// When set, output is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory
	// (~/.local/share/tripscan on Linux).
	DBDir string

	// SkipClassify disables the sentiment classification stage.
	// Useful for collecting data where no inference endpoint is reachable;
	// a later run with classification enabled picks up the backlog.
	SkipClassify bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Workers:           DefaultWorkers,
		MaxAttempts:       DefaultMaxAttempts,
		MaxReviewPages:    DefaultMaxReviewPages,
		MaxBodySize:       DefaultMaxBodySize,
		InferenceEndpoint: DefaultInferenceEndpoint,
		ModelName:         DefaultModelName,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for tripscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/tripscan
// On macOS: ~/Library/Application Support/tripscan
// On Windows: %LOCALAPPDATA%\tripscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tripscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/tripscan
// On macOS: ~/Library/Application Support/tripscan
// On Windows: %APPDATA%\tripscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network activity.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Timeout must be positive; zero timeout would fail every request
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// The rate limit must be positive, otherwise no request ever leaves
	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRate
	}

	// Workers must be positive; zero would mean no extraction
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// At least one attempt per page
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	// BatchSize must be positive; zero would mean no classification
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// A negative attraction cap is a flag typo, not "no cap"
	if c.MaxAttractions < 0 {
		return ErrInvalidMaxAttractions
	}

	// Report formats are mutually exclusive
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
