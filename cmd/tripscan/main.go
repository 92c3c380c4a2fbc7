// Package main provides the entry point for the tripscan CLI.
//
// Tripscan collects attraction reviews from travel listing pages, classifies
// their sentiment with a hosted inference model, and aggregates the results
// per attraction and region.
//
// Usage:
//
//	tripscan run
//	tripscan run -c regions.yml
//	tripscan export --csv
//
// See --help for all available options.
package main

// main is the entry point for tripscan.
func main() {
	Execute()
}
