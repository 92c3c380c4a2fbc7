// Package analyze computes aggregate statistics from stored reviews and
// sentiment results. Everything here is a pure function of its input: no
// clocks except the injected snapshot time, no randomness, and fixed
// iteration order, so aggregating the same data twice produces identical
// results.
package analyze
