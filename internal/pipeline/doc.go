// Package pipeline executes the scraping run as a sequence of steps:
// attraction discovery, review extraction, sentiment classification, and
// aggregation. Each step reads from and writes to the shared store and
// records its counters on the run report.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps and between
//    per-region units of work inside steps
//
// A step failure normally stops the run; the run report is produced either
// way, so a partial run still states what it discovered, extracted, skipped,
// and left unclassified.
package pipeline
