package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

// DefaultModel is the multilingual five-class sentiment model used unless
// configured otherwise.
const DefaultModel = "tabularisai/multilingual-sentiment-analysis"

// defaultInferenceTimeout bounds one inference request. Model cold starts
// can take tens of seconds, so this is deliberately generous.
const defaultInferenceTimeout = 60 * time.Second

// ErrInference is wrapped by all inference transport and decode failures.
var ErrInference = errors.New("inference request failed")

// ClassScore is one class probability from the model.
type ClassScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Prediction is the model's class distribution for one input text.
type Prediction []ClassScore

// Client calls an HTTP text-classification endpoint.
type Client struct {
	endpoint string
	token    string
	model    string
	hc       *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets a bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithModel sets the model identifier reported as the version of results.
func WithModel(m string) ClientOption {
	return func(c *Client) {
		c.model = m
	}
}

// WithClientHTTP replaces the default HTTP client.
func WithClientHTTP(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// NewClient creates a client for the given inference endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    DefaultModel,
		hc:       &http.Client{Timeout: defaultInferenceTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelVersion returns the model identifier stamped on results.
func (c *Client) ModelVersion() string {
	return c.model
}

// Predict classifies a batch of texts in one request. The response carries
// one class distribution per input, in input order.
func (c *Client) Predict(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{"inputs": texts})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrInference, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var predictions []Prediction
	if err := json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInference, err)
	}
	if len(predictions) != len(texts) {
		return nil, fmt.Errorf("%w: got %d predictions for %d inputs", ErrInference, len(predictions), len(texts))
	}
	return predictions, nil
}

// ExpectedScore collapses a class distribution to its expected ordinal score
// in [0, 4]: the sum of each class ordinal weighted by its probability.
// Weights are normalized so partial distributions still land on the scale.
func ExpectedScore(p Prediction) (float64, error) {
	var sum, total float64
	for _, cs := range p {
		label, err := decodeModelLabel(cs.Label)
		if err != nil {
			return 0, err
		}
		sum += float64(label.Ordinal()) * cs.Score
		total += cs.Score
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: empty class distribution", ErrInference)
	}
	return sum / total, nil
}

// decodeModelLabel accepts both the spelled-out class names and the
// positional "LABEL_N" form some deployments emit.
func decodeModelLabel(s string) (model.Label, error) {
	if rest, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(s)), "LABEL_"); ok {
		switch rest {
		case "0":
			return model.LabelVeryNegative, nil
		case "1":
			return model.LabelNegative, nil
		case "2":
			return model.LabelNeutral, nil
		case "3":
			return model.LabelPositive, nil
		case "4":
			return model.LabelVeryPositive, nil
		}
		return model.LabelUnclassified, fmt.Errorf("%w: class %q", model.ErrUnknownLabel, s)
	}
	return model.ParseLabel(s)
}
