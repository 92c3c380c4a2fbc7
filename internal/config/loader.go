package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ignacioe7/tripscan/internal/model"
)

// DefaultRegionsFile is the default regions file name.
const DefaultRegionsFile = "tripscan.yml"

// ErrRegionsNotFound is returned when the regions file does not exist.
var ErrRegionsNotFound = errors.New("regions file not found")

// File represents the structure of the tripscan.yml regions file.
type File struct {
	// Regions lists the regions to discover and extract, in run order.
	Regions []model.Region `yaml:"regions"`

	// Settings contains optional overrides for run parameters. Zero
	// values leave the corresponding Config field untouched.
	Settings Settings `yaml:"settings,omitempty"`
}

// Settings holds the run parameters a regions file may override.
// CLI flags take precedence over these values, which take precedence over
// the built-in defaults.
type Settings struct {
	// RequestsPerSecond overrides the outbound request rate.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// Workers overrides the extraction concurrency.
	Workers int `yaml:"workers,omitempty"`

	// MaxReviewPages overrides the per-attraction page cap.
	MaxReviewPages int `yaml:"max_review_pages,omitempty"`

	// MaxAttractions overrides the per-region attraction cap.
	MaxAttractions int `yaml:"max_attractions,omitempty"`

	// Language restricts review extraction to one review language.
	Language string `yaml:"language,omitempty"`

	// BatchSize overrides the inference batch size.
	BatchSize int `yaml:"batch_size,omitempty"`

	// Model overrides the sentiment model name.
	Model string `yaml:"model,omitempty"`

	// Endpoint overrides the inference endpoint URL.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// LoadConfigFile loads regions and settings from a YAML file.
// If the file does not exist, it returns ErrRegionsNotFound.
// Callers should handle this error appropriately based on whether
// the file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRegionsNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := validateRegions(cf.Regions); err != nil {
		return nil, err
	}
	return &cf, nil
}

// validateRegions checks that every region entry can key the database and
// be fetched.
func validateRegions(regions []model.Region) error {
	if len(regions) == 0 {
		return ErrNoRegions
	}

	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		if r.ID == "" || r.ListingURL == "" {
			return fmt.Errorf("%w: %+v", ErrInvalidRegion, r)
		}
		u, err := url.Parse(r.ListingURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: region %q listing_url %q", ErrInvalidRegion, r.ID, r.ListingURL)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateRegion, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Apply copies the file's regions and non-zero settings into the config.
// Fields already changed from their defaults by CLI flags should be applied
// after this call so flags win.
func (cf *File) Apply(c *Config) {
	c.Regions = cf.Regions

	if cf.Settings.RequestsPerSecond > 0 {
		c.RequestsPerSecond = cf.Settings.RequestsPerSecond
	}
	if cf.Settings.Workers > 0 {
		c.Workers = cf.Settings.Workers
	}
	if cf.Settings.MaxReviewPages > 0 {
		c.MaxReviewPages = cf.Settings.MaxReviewPages
	}
	if cf.Settings.MaxAttractions > 0 {
		c.MaxAttractions = cf.Settings.MaxAttractions
	}
	if cf.Settings.Language != "" {
		c.Language = cf.Settings.Language
	}
	if cf.Settings.BatchSize > 0 {
		c.BatchSize = cf.Settings.BatchSize
	}
	if cf.Settings.Model != "" {
		c.ModelName = cf.Settings.Model
	}
	if cf.Settings.Endpoint != "" {
		c.InferenceEndpoint = cf.Settings.Endpoint
	}
}

// FindConfigFile searches for the regions file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for tripscan.yml in the current directory
//  3. Look for tripscan.yml in the XDG config directory
//
// Returns the path to the regions file if found, or empty string if not
// found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultRegionsFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check XDG config directory
	xdgConfig := filepath.Join(XDGConfigDir(), DefaultRegionsFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
