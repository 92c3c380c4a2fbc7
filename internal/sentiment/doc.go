// Package sentiment classifies review text into five ordinal classes by
// calling an HTTP inference service. The client speaks the common
// text-classification API shape (a JSON list of inputs in, a list of
// per-class score lists out) and the classifier on top handles batching,
// input truncation, and collapsing each class distribution to a single
// label and expected score.
package sentiment
