package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a fetch failure so callers know whether retrying can help.
type Kind int

const (
	// KindTransient covers failures that may succeed on retry: network
	// errors, HTTP 429, and 5xx responses.
	KindTransient Kind = iota

	// KindPermanent covers failures that will not change on retry, such as
	// HTTP 404 or 410. The page is skipped, never retried.
	KindPermanent

	// KindBlocked means the site refused access (HTTP 403). Retrying a
	// block only makes the block worse, so the crawl must stop entirely.
	KindBlocked
)

// String returns the classification name for logs.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure.
type Error struct {
	// Kind is the retry classification.
	Kind Kind

	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, 0 for network-level failures.
	StatusCode int

	// RetryAfter is the server-requested wait from a Retry-After header,
	// 0 when absent.
	RetryAfter time.Duration

	// Err is the underlying cause, nil for pure status failures.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d (%s)", e.URL, e.StatusCode, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %v (%s)", e.URL, e.Err, e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a fetch failure worth retrying.
func IsTransient(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindTransient
}

// IsPermanent reports whether err is a fetch failure that retrying cannot fix.
func IsPermanent(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindPermanent
}

// IsBlocked reports whether err means the site refused access.
func IsBlocked(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindBlocked
}

// classifyStatus maps a non-2xx HTTP status to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusForbidden:
		return KindBlocked
	case status == http.StatusTooManyRequests:
		return KindTransient
	case status >= 500:
		return KindTransient
	default:
		// 404, 410, 401, and the rest of 4xx: the page will not appear
		// by asking again.
		return KindPermanent
	}
}
