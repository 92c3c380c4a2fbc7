// Package model defines the core data structures shared across the scraping
// and sentiment analysis pipeline: regions, attractions, reviews, sentiment
// results, aggregates, and the run report. These types have no behavior beyond
// validation, identity, and serialization helpers so that every other package
// can depend on them without cycles.
package model
