// Package crawler discovers attractions from region listing pages and
// extracts reviews from attraction review pages. Parsing is separated from
// fetching: the parsers work on raw HTML and never touch the network, while
// the Discoverer and Extractor drive pagination through a shared rate-limited
// fetcher. A Pool runs extraction for many attractions concurrently under a
// fixed worker limit.
package crawler
