package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientPredict(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q, want bearer token", got)
			}
			var req struct {
				Inputs []string `json:"inputs"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			out := make([]Prediction, len(req.Inputs))
			for i := range out {
				out[i] = Prediction{
					{Label: "Very Positive", Score: 0.7},
					{Label: "Positive", Score: 0.2},
					{Label: "Neutral", Score: 0.1},
				}
			}
			json.NewEncoder(w).Encode(out)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithToken("tok"))
		preds, err := c.Predict(context.Background(), []string{"great", "fine"})
		if err != nil {
			t.Fatalf("Predict() error: %v", err)
		}
		if len(preds) != 2 {
			t.Fatalf("got %d predictions, want 2", len(preds))
		}
		if preds[0][0].Label != "Very Positive" {
			t.Errorf("top label = %q", preds[0][0].Label)
		}
	})

	t.Run("empty input needs no request", func(t *testing.T) {
		t.Parallel()

		c := NewClient("http://127.0.0.1:0/unreachable")
		preds, err := c.Predict(context.Background(), nil)
		if err != nil || preds != nil {
			t.Errorf("Predict(nil) = (%v, %v), want (nil, nil)", preds, err)
		}
	})

	t.Run("non-200 wraps ErrInference", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Predict(context.Background(), []string{"x"})
		if !errors.Is(err, ErrInference) {
			t.Errorf("error = %v, want ErrInference", err)
		}
	})

	t.Run("prediction count mismatch fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]Prediction{{{Label: "Neutral", Score: 1}}})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Predict(context.Background(), []string{"a", "b"})
		if !errors.Is(err, ErrInference) {
			t.Errorf("error = %v, want ErrInference", err)
		}
	})
}

func TestExpectedScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Prediction
		want float64
	}{
		{
			name: "certain very positive",
			p:    Prediction{{Label: "Very Positive", Score: 1.0}},
			want: 4.0,
		},
		{
			name: "uniform distribution lands neutral",
			p: Prediction{
				{Label: "Very Negative", Score: 0.2},
				{Label: "Negative", Score: 0.2},
				{Label: "Neutral", Score: 0.2},
				{Label: "Positive", Score: 0.2},
				{Label: "Very Positive", Score: 0.2},
			},
			want: 2.0,
		},
		{
			name: "positional labels",
			p: Prediction{
				{Label: "LABEL_3", Score: 0.5},
				{Label: "LABEL_4", Score: 0.5},
			},
			want: 3.5,
		},
		{
			name: "unnormalized scores are normalized",
			p: Prediction{
				{Label: "Positive", Score: 0.3},
				{Label: "Very Positive", Score: 0.3},
			},
			want: 3.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExpectedScore(tt.p)
			if err != nil {
				t.Fatalf("ExpectedScore() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ExpectedScore() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("unknown class fails", func(t *testing.T) {
		t.Parallel()

		_, err := ExpectedScore(Prediction{{Label: "Confused", Score: 1}})
		if err == nil {
			t.Error("ExpectedScore() with unknown class returned nil error")
		}
	})

	t.Run("empty distribution fails", func(t *testing.T) {
		t.Parallel()

		_, err := ExpectedScore(Prediction{})
		if !errors.Is(err, ErrInference) {
			t.Errorf("error = %v, want ErrInference", err)
		}
	})
}
