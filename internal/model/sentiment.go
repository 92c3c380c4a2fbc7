package model

import (
	"fmt"
	"strings"
	"time"
)

// Label represents one of the five ordinal sentiment classes.
//
// Design decision: iota-based constants rather than strings keep comparisons
// and ordering cheap; the ordinal value doubles as the class score used when
// collapsing a model's probability distribution to a single label. The zero
// value is LabelUnclassified so that a missing result is never mistaken for
// "very negative".
type Label int

const (
	// LabelUnclassified marks a review with no sentiment result: empty text,
	// a failed inference batch, or a review not yet processed.
	LabelUnclassified Label = iota

	// LabelVeryNegative is the lowest class (ordinal score 0).
	LabelVeryNegative

	// LabelNegative is ordinal score 1.
	LabelNegative

	// LabelNeutral is ordinal score 2.
	LabelNeutral

	// LabelPositive is ordinal score 3.
	LabelPositive

	// LabelVeryPositive is the highest class (ordinal score 4).
	LabelVeryPositive
)

// Labels lists the five real classes in ordinal order, excluding
// LabelUnclassified. Aggregation iterates this slice so distributions always
// come out in the same order.
func Labels() []Label {
	return []Label{LabelVeryNegative, LabelNegative, LabelNeutral, LabelPositive, LabelVeryPositive}
}

// String returns the canonical label name as produced by the sentiment model.
func (l Label) String() string {
	switch l {
	case LabelVeryNegative:
		return "Very Negative"
	case LabelNegative:
		return "Negative"
	case LabelNeutral:
		return "Neutral"
	case LabelPositive:
		return "Positive"
	case LabelVeryPositive:
		return "Very Positive"
	default:
		return "Unclassified"
	}
}

// Ordinal returns the label's position on the 0..4 sentiment scale.
// LabelUnclassified returns -1.
func (l Label) Ordinal() int {
	if l < LabelVeryNegative || l > LabelVeryPositive {
		return -1
	}
	return int(l - LabelVeryNegative)
}

// ParseLabel converts a model output string to a Label. Matching is
// case-insensitive and tolerates underscores instead of spaces, since
// inference services differ in how they spell class names.
func ParseLabel(s string) (Label, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	switch norm {
	case "very negative":
		return LabelVeryNegative, nil
	case "negative":
		return LabelNegative, nil
	case "neutral":
		return LabelNeutral, nil
	case "positive":
		return LabelPositive, nil
	case "very positive":
		return LabelVeryPositive, nil
	default:
		return LabelUnclassified, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
}

// LabelForScore maps an expected ordinal score in [0, 4] to the nearest
// label. Scores exactly on a boundary (0.5, 1.5, 2.5, 3.5) resolve to the
// higher label.
func LabelForScore(score float64) Label {
	switch {
	case score >= 3.5:
		return LabelVeryPositive
	case score >= 2.5:
		return LabelPositive
	case score >= 1.5:
		return LabelNeutral
	case score >= 0.5:
		return LabelNegative
	default:
		return LabelVeryNegative
	}
}

// MarshalText implements encoding.TextMarshaler so labels serialize as their
// canonical names in JSON and YAML.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "Unclassified" and the
// empty string round-trip to LabelUnclassified.
func (l *Label) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" || strings.EqualFold(s, "Unclassified") {
		*l = LabelUnclassified
		return nil
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// SentimentResult is the outcome of classifying one review with one model
// version. At most one result exists per (review, model version) pair.
type SentimentResult struct {
	// ReviewID identifies the classified review.
	ReviewID string `json:"review_id"`

	// Label is the resolved sentiment class.
	Label Label `json:"label"`

	// Score is the expected ordinal score in [0, 4] computed from the
	// model's probability distribution.
	Score float64 `json:"score"`

	// ModelVersion identifies the model that produced this result.
	ModelVersion string `json:"model_version"`

	// ClassifiedAt is when inference completed.
	ClassifiedAt time.Time `json:"classified_at"`
}
