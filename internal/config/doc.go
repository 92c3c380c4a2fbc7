// Package config provides configuration structures and utilities for
// tripscan. It defines the main options for discovery, extraction,
// sentiment classification, and report generation.
package config
