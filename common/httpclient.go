package common

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// HttpClient is an interface for HTTP operations with optional retry logic.
// This allows mocking or custom transport layers in testing.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	Get(url string) (*http.Response, error)
	Post(url, contentType string, body io.Reader) (*http.Response, error)
	PostForm(url string, data url.Values) (*http.Response, error)
	CloseIdleConnections()
	RetryWithExponentialBackoff(ctx context.Context, operation func() (interface{}, error)) (interface{}, error)
	SetRandAndSleepForTest(sleep func(d time.Duration), seed int64)
}

// userAgentRoundTripper is a custom RoundTripper that adds a User-Agent header.
type userAgentRoundTripper struct {
	Wrapped   http.RoundTripper
	UserAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.UserAgent)
	return rt.Wrapped.RoundTrip(clone)
}

// Implementation of HttpClient that wraps a standard *http.Client with retry logic.
type httpClient struct {
	client    *http.Client
	sleepFunc func(ctx context.Context, d time.Duration) error

	// rand.Rand is not safe for concurrent use
	randMu sync.Mutex
	rnd    *rand.Rand
}

// DefaultTimeout matches what Splitwise recommends for API clients.
const DefaultTimeout = 30 * time.Second

// NewSplitwiseHttpClient returns a new HttpClient with the given timeout
// (DefaultTimeout when zero), plus a custom User-Agent.
func NewSplitwiseHttpClient(userAgent string, base *http.Client, timeout time.Duration) HttpClient {
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	base.Transport = &userAgentRoundTripper{
		Wrapped:   base.Transport,
		UserAgent: userAgent,
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base.Timeout = timeout

	return &httpClient{
		client:    base,
		sleepFunc: sleepContext,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *httpClient) Get(url string) (*http.Response, error) {
	return h.client.Get(url)
}

func (h *httpClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return h.client.Post(url, contentType, body)
}

func (h *httpClient) PostForm(url string, data url.Values) (*http.Response, error) {
	return h.client.PostForm(url, data)
}

func (h *httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}

// Exponential backoff constants
const (
	maxRetries = 4
	baseDelay  = 1 * time.Second
	maxDelay   = 16 * time.Second
)

// RetryWithExponentialBackoff retries operation while it fails with a
// retryable APIError (5xx gateway errors and 429). A RateLimitError with a
// RetryAfter waits that long instead of the computed delay. No wait exceeds
// maxDelay, and a done ctx ends the wait with ctx.Err().
func (h *httpClient) RetryWithExponentialBackoff(ctx context.Context, operation func() (interface{}, error)) (interface{}, error) {
	var result interface{}
	var err error
	delay := baseDelay

	for i := 0; i < maxRetries; i++ {
		if result, err = operation(); err == nil {
			return result, nil
		}
		if !isRetryable(err) || i == maxRetries-1 {
			break
		}

		wait := delay + h.jitter(delay)
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			wait = time.Duration(rl.RetryAfter) * time.Second
		}
		if wait > maxDelay {
			wait = maxDelay
		}
		if sleepErr := h.sleepFunc(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return nil, err
}

func (h *httpClient) jitter(d time.Duration) time.Duration {
	h.randMu.Lock()
	defer h.randMu.Unlock()
	return time.Duration(h.rnd.Int63n(int64(d)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// SetRandAndSleepForTest replaces the wait with sleep, which is still followed
// by a ctx check, and reseeds the jitter.
func (h *httpClient) SetRandAndSleepForTest(sleep func(d time.Duration), seed int64) {
	h.sleepFunc = func(ctx context.Context, d time.Duration) error {
		sleep(d)
		return ctx.Err()
	}
	h.randMu.Lock()
	h.rnd = rand.New(rand.NewSource(seed))
	h.randMu.Unlock()
}
