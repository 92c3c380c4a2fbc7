package fetch

import (
	"context"
	crand "crypto/rand"
	"math/big"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing requests. It wraps a token bucket with an
// optional random politeness delay on top, so request timing does not form a
// mechanical pattern the target site can fingerprint.
type Limiter struct {
	rl        *rate.Limiter
	maxJitter time.Duration
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithJitter adds up to max of random extra delay after each token.
func WithJitter(max time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.maxJitter = max
	}
}

// WithBurst allows n requests to proceed without waiting when the limiter
// has been idle. Values below 1 are ignored.
func WithBurst(n int) LimiterOption {
	return func(l *Limiter) {
		if n >= 1 {
			l.rl.SetBurst(n)
		}
	}
}

// NewLimiter creates a limiter allowing requestsPerSecond sustained requests.
// The burst is 1, so no one-second window ever sees more than the configured
// rate plus the single in-flight token. Non-positive rates fall back to
// 1 req/s.
func NewLimiter(requestsPerSecond float64, opts ...LimiterOption) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	l := &Limiter{rl: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.rl.Wait(ctx); err != nil {
		return err
	}
	if l.maxJitter > 0 {
		if !sleepCtx(ctx, randomDelay(l.maxJitter)) {
			return ctx.Err()
		}
	}
	return nil
}

// randomDelay returns a uniform duration in [0, max). crypto/rand keeps it
// safe under concurrent callers without a shared seeded source.
func randomDelay(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return max / 2
	}
	return time.Duration(n.Int64())
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
