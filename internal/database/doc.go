// Package database provides SQLite-based storage for regions, attractions,
// reviews, sentiment results, and aggregate snapshots.
//
// All write paths are merges: re-running the pipeline over the same pages
// updates mutable listing state and inserts only what is new, so a run can
// be repeated or resumed without corrupting earlier data. Aggregates are
// replaced in a single transaction so readers never observe a half-written
// snapshot.
package database
