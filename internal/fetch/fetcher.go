package fetch

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultTimeout bounds a single HTTP request.
	defaultTimeout = 30 * time.Second

	// defaultMaxBodySize limits response bodies to 5MB. Listing and review
	// pages are far smaller; anything bigger is not a page we want.
	defaultMaxBodySize = 5 * 1024 * 1024

	// defaultUserAgent mimics a desktop browser. The target site serves
	// reduced markup, or none at all, to clients that identify as bots.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Result is a successful page fetch.
type Result struct {
	// URL is the requested URL (before any redirects).
	URL string

	// StatusCode is the HTTP status, always 2xx here.
	StatusCode int

	// Body is the response body, capped at the configured maximum size.
	Body []byte

	// Header holds the response headers.
	Header http.Header
}

// Fetcher performs rate-limited GET requests and classifies failures.
//
// Design decision: the limiter is injected rather than owned, so the crawler
// and all of its workers share one budget. A fetcher without workers sharing
// it would let N workers multiply the configured rate by N.
type Fetcher struct {
	client      *http.Client
	limiter     *Limiter
	userAgent   string
	maxBodySize int64
	headers     map[string]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the response body size read into memory.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) FetcherOption {
	return func(f *Fetcher) {
		f.headers[key] = value
	}
}

// NewFetcher creates a fetcher that draws from limiter before every request.
func NewFetcher(limiter *Limiter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: defaultTimeout},
		limiter:     limiter,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		headers:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get fetches one URL. On a non-2xx status or network failure it returns a
// classified *Error; callers use IsTransient/IsPermanent/IsBlocked or a
// Retrier to act on the classification. A single call never retries.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindPermanent, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Kind: KindTransient, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Kind:       classifyStatus(resp.StatusCode),
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Kind: KindTransient, URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	return &Result{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}

// retryAfter parses a Retry-After header (seconds or HTTP-date).
// Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
