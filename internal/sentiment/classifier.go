package sentiment

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ignacioe7/tripscan/internal/model"
)

const (
	// defaultBatchSize is how many texts go into one inference request.
	defaultBatchSize = 16

	// defaultMaxInputRunes caps classified text length. The model truncates
	// at 512 tokens anyway; cutting client-side keeps requests small and
	// makes the behavior explicit.
	defaultMaxInputRunes = 512
)

// Predictor is the inference dependency of the Classifier. *Client satisfies
// it; tests substitute a stub.
type Predictor interface {
	Predict(ctx context.Context, texts []string) ([]Prediction, error)
	ModelVersion() string
}

// Classifier turns reviews into sentiment results. It batches texts,
// truncates long input, and tolerates batch failures: a failed batch leaves
// its reviews unclassified instead of failing the run.
type Classifier struct {
	predictor     Predictor
	batchSize     int
	maxInputRunes int
	logger        *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithBatchSize sets how many texts go into one inference request.
func WithBatchSize(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithMaxInputRunes caps the classified text length.
func WithMaxInputRunes(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.maxInputRunes = n
		}
	}
}

// WithClassifierLogger sets a custom logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a Classifier using predictor for inference.
func NewClassifier(predictor Predictor, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		predictor:     predictor,
		batchSize:     defaultBatchSize,
		maxInputRunes: defaultMaxInputRunes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Outcome is what classification produced for a set of reviews.
type Outcome struct {
	// Results holds one sentiment result per successfully classified
	// review.
	Results []model.SentimentResult

	// Unclassified counts reviews left without a result: empty text or a
	// failed inference batch.
	Unclassified int
}

// ClassifyReviews classifies every review with non-empty text. Reviews with
// empty classifiable text are counted as unclassified without touching the
// inference service. A batch whose request or decode fails marks all of its
// reviews unclassified and processing continues with the next batch; only
// context cancellation aborts.
func (c *Classifier) ClassifyReviews(ctx context.Context, reviews []model.Review) (*Outcome, error) {
	outcome := &Outcome{}
	version := c.predictor.ModelVersion()

	// filter empties before batching so batch slots are never wasted
	var pending []model.Review
	var texts []string
	for _, r := range reviews {
		text := strings.TrimSpace(r.ClassifiableText())
		if text == "" {
			outcome.Unclassified++
			continue
		}
		pending = append(pending, r)
		texts = append(texts, TruncateText(text, c.maxInputRunes))
	}

	for start := 0; start < len(pending); start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		end := start + c.batchSize
		if end > len(pending) {
			end = len(pending)
		}

		predictions, err := c.predictor.Predict(ctx, texts[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return outcome, ctx.Err()
			}
			c.logger.Warn("inference batch failed, leaving reviews unclassified",
				"batch_start", start,
				"batch_size", end-start,
				"error", err,
			)
			outcome.Unclassified += end - start
			continue
		}

		now := time.Now().UTC()
		for i, p := range predictions {
			score, err := ExpectedScore(p)
			if err != nil {
				c.logger.Warn("unusable prediction", "review", pending[start+i].ID, "error", err)
				outcome.Unclassified++
				continue
			}
			outcome.Results = append(outcome.Results, model.SentimentResult{
				ReviewID:     pending[start+i].ID,
				Label:        model.LabelForScore(score),
				Score:        score,
				ModelVersion: version,
				ClassifiedAt: now,
			})
		}
	}
	return outcome, nil
}

// TruncateText cuts text to at most maxRunes runes, backing up to the last
// whitespace inside the window so words are not cut in half. Text with no
// whitespace in the window is cut hard at the limit.
func TruncateText(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	cut := runes[:maxRunes]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return strings.TrimRight(string(cut[:i]), " \t\n")
		}
	}
	return string(cut)
}
