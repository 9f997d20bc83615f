// Package congress is the HTTP Fetcher (spec.md §4.1): it issues GET
// requests against congress.gov v3, enforces inter-request spacing,
// retries 429s with exponential backoff, and surfaces a distinguishable
// "not found" vs "exhausted retries" outcome to callers. It never parses
// response bodies itself and never logs the API key.
package congress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	baseURL        = "https://api.congress.gov/v3"
	defaultTimeout = 30 * time.Second
)

// Errors returned by the client.
var (
	ErrNoAPIKey  = errors.New("congress: API key is required")
	ErrExhausted = errors.New("congress: retries exhausted")
	ErrNotFound  = errors.New("congress: resource not found")
)

// nonRetryable wraps a non-2xx, non-429, non-404 status so Retry stops
// immediately instead of burning the attempt budget on a dead endpoint.
type nonRetryable struct{ status int }

func (e *nonRetryable) Error() string { return fmt.Sprintf("congress: unexpected status %d", e.status) }

// Client is a thread-safe Congress.gov API V3 client. All methods are safe
// for concurrent use, though the Batch Worker and Assembler only ever call
// them sequentially per spec.md §5.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string

	interRequestDelay time.Duration
	maxRetries        int
	initialBackoff    time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the API requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default Congress.gov API base URL. Useful for
// testing with mock servers.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithInterRequestDelay overrides D_req, the minimum spacing between
// consecutive calls on this Client (default 750ms).
func WithInterRequestDelay(d time.Duration) Option {
	return func(c *Client) { c.interRequestDelay = d }
}

// WithMaxRetries overrides the number of 429/network retry attempts
// before Fetch surfaces ErrExhausted (default 3).
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithInitialBackoff overrides B in the B*2^attempt 429 backoff (default 10s).
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// New creates a new Congress.gov API client with the given API key and
// the canonical defaults (D_req=750ms, 3 retries, 10s initial backoff).
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	c := &Client{
		apiKey:            apiKey,
		httpClient:        &http.Client{Timeout: defaultTimeout},
		baseURL:           baseURL,
		interRequestDelay: 750 * time.Millisecond,
		maxRetries:        3,
		initialBackoff:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// throttle blocks until at least interRequestDelay has elapsed since the
// last call issued by this Client, then records the new call time. This
// enforces D_req spacing across both first attempts and retries.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := c.interRequestDelay - time.Since(c.lastRequest)
	if wait < 0 {
		wait = 0
	}
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outcome is the Fetcher's raw, unparsed result: either a successful body,
// a "not found" signal the caller interprets as "this sub-endpoint
// contributed nothing", or (via the returned error) an exhausted-retries
// failure the caller records against the bill and continues past.
type Outcome struct {
	StatusCode int
	Body       []byte
	NotFound   bool
}

// Fetch issues a GET against url, enforcing D_req spacing before every
// attempt (including retries). 429s are retried with a B*2^attempt
// backoff up to maxRetries attempts; on exhaustion it returns ErrExhausted
// (the spec's "surface null"). 404s are returned as a NotFound outcome,
// not an error. Any other non-2xx status is returned unretried so the
// caller can decide (spec.md §4.1's "current policy: treat as failure").
func (c *Client) Fetch(ctx context.Context, url, label string) (*Outcome, error) {
	var outcome *Outcome

	policy := &fixedExponentialBackoff{base: c.initialBackoff}
	bo := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	operation := func() error {
		if err := c.throttle(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("congress: failed to build request for %s: %w", label, err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err // network failure: retryable
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
			if readErr != nil {
				return readErr // retryable: treat a broken read like a transient failure
			}
			outcome = &Outcome{StatusCode: resp.StatusCode, Body: body}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			outcome = &Outcome{StatusCode: resp.StatusCode, NotFound: true}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", errRateLimited, label) // retryable
		default:
			return backoff.Permanent(&nonRetryable{status: resp.StatusCode})
		}
	}

	err := backoff.Retry(operation, bo)
	if err == nil {
		return outcome, nil
	}

	var nr *nonRetryable
	if errors.As(err, &nr) {
		return &Outcome{StatusCode: nr.status}, nil
	}
	if outcome != nil && outcome.NotFound {
		return outcome, nil
	}

	// Retries exhausted on 429/network failure, or context cancellation.
	return nil, fmt.Errorf("%w: %s: %v", ErrExhausted, label, err)
}

var errRateLimited = errors.New("congress: rate limited")

// fixedExponentialBackoff implements backoff.BackOff with the spec's exact
// B*2^attempt policy (B=initialBackoff), rather than the jittered default
// exponential curve cenkalti/backoff ships with.
type fixedExponentialBackoff struct {
	base    time.Duration
	attempt int
}

func (f *fixedExponentialBackoff) NextBackOff() time.Duration {
	d := f.base << f.attempt
	f.attempt++
	return d
}

func (f *fixedExponentialBackoff) Reset() { f.attempt = 0 }
