package model

import "errors"

var (
	// ErrInvalidRegion is returned when a configured region is missing
	// required fields or has a malformed identifier.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidAttraction is returned when an attraction lacks the fields
	// needed to store or crawl it.
	ErrInvalidAttraction = errors.New("invalid attraction")

	// ErrInvalidReview is returned when a review lacks an identity or an
	// attraction to attach to.
	ErrInvalidReview = errors.New("invalid review")

	// ErrUnknownLabel is returned when parsing a sentiment label string
	// that does not match any known class.
	ErrUnknownLabel = errors.New("unknown sentiment label")
)
