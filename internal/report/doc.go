// Package report provides export and output functionality for collected
// review data and run results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON export for tool integration
//   - CSVWriter: Flat summary and per-review exports for spreadsheets
//   - MarkdownWriter: Shareable reports with sentiment charts
//
// Design decision: We separate report writing from the data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
