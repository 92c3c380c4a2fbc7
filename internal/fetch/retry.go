package fetch

import (
	"context"
	"errors"
	"time"
)

const (
	// defaultMaxAttempts bounds total tries per page, including the first.
	defaultMaxAttempts = 4

	// defaultBaseDelay is the backoff before the first retry; it doubles
	// each further attempt.
	defaultBaseDelay = 200 * time.Millisecond

	// defaultMaxDelay caps a single backoff wait regardless of attempt
	// number or server Retry-After.
	defaultMaxDelay = 30 * time.Second
)

// Retrier wraps a Fetcher with bounded retries for transient failures.
// Permanent and blocked failures return immediately; a server-provided
// Retry-After overrides the computed backoff, capped at the maximum delay.
type Retrier struct {
	fetcher     *Fetcher
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxAttempts sets the total number of tries, including the first.
// Values below 1 are treated as 1.
func WithMaxAttempts(n int) RetrierOption {
	return func(r *Retrier) {
		if n < 1 {
			n = 1
		}
		r.maxAttempts = n
	}
}

// WithBaseDelay sets the backoff before the first retry.
func WithBaseDelay(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.baseDelay = d
	}
}

// WithMaxDelay caps a single backoff wait.
func WithMaxDelay(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.maxDelay = d
	}
}

// NewRetrier wraps fetcher with retry behavior.
func NewRetrier(fetcher *Fetcher, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		fetcher:     fetcher,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get fetches a URL, retrying transient failures with exponential backoff and
// jitter. Every attempt draws its own token from the underlying limiter, so
// retries stay inside the rate budget.
func (r *Retrier) Get(ctx context.Context, rawURL string) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		res, err := r.fetcher.Get(ctx, rawURL)
		if err == nil {
			return res, nil
		}
		if !IsTransient(err) {
			// permanent, blocked, or context error
			return nil, err
		}
		lastErr = err

		if attempt == r.maxAttempts-1 {
			break
		}
		wait := r.backoff(attempt)
		var fe *Error
		if errors.As(err, &fe) && fe.RetryAfter > wait {
			wait = fe.RetryAfter
		}
		if wait > r.maxDelay {
			wait = r.maxDelay
		}
		if !sleepCtx(ctx, wait) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// backoff returns the exponential delay for retry attempt i (0-based), with
// up to +50% random jitter to avoid synchronized retries across workers.
func (r *Retrier) backoff(i int) time.Duration {
	base := r.baseDelay << uint(i)
	return base + randomDelay(base/2)
}
