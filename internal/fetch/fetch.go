// Package fetch provides HTTP retrieval of raw source payloads. It
// centralizes the shared client, the request descriptors for each source,
// and the transient/permanent error classification the retry policy keys on.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Source names. Each has its own rate budget and circuit breaker.
const (
	SourceStats     = "nba_stats"
	SourceBRef      = "bref"
	SourceGamebooks = "gamebooks"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; nba-ingest/1.0)"

// Error represents a failed fetch. Retryable distinguishes transient
// failures (timeouts, connection resets, 429/5xx) from permanent ones.
type Error struct {
	Source    string
	URL       string
	Message   string
	Status    int
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s %s: %s: %v", e.Source, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s %s: %s", e.Source, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable satisfies the retry policy's transient-error check.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// Request describes one fetch against a source.
type Request struct {
	Source  string
	URL     string
	Headers map[string]string
}

// Result holds the raw payload from a fetch.
type Result struct {
	Source      string
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Options configures the fetch client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client issues source requests over a single shared http.Client. It is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       *Options
}

// NewClient creates a fetch client.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

// Do executes a request descriptor and returns the raw payload.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{
			Source:  req.Source,
			URL:     req.URL,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &Error{
			Source:  req.Source,
			URL:     req.URL,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{
			Source:    req.Source,
			URL:       req.URL,
			Message:   "HTTP request failed",
			Retryable: isNetworkTransient(err),
			Cause:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Source:    req.Source,
			URL:       req.URL,
			Message:   "failed to read response body",
			Retryable: true,
			Cause:     err,
		}
	}

	result := &Result{
		Source:      req.Source,
		URL:         req.URL,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			Source:    req.Source,
			URL:       req.URL,
			Message:   fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Status:    resp.StatusCode,
			Retryable: isStatusTransient(resp.StatusCode),
		}
	}

	return result, nil
}

// isStatusTransient classifies HTTP status codes: throttling and server
// errors are worth retrying, other non-200s are not.
func isStatusTransient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// isNetworkTransient classifies transport-level failures. Context
// cancellation is not transient: the caller gave up.
func isNetworkTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Connection resets and refused connections arrive as *url.Error
	// wrapping syscall errors; treat transport failures as transient.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
