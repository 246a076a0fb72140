package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 10 << 20

var (
	// ErrRetriesExhausted wraps the last cause once the retry budget is spent.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.URL)
}

// Retryable reports whether the status signals rate limiting.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type ClientOptions struct {
	BaseURL       string
	APIKey        string
	UserAgent     string
	Timeout       time.Duration
	RateLimit     time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxConcurrent int
}

// Client issues rate-limited upstream GETs with bounded retries.
type Client struct {
	opts       ClientOptions
	httpClient *http.Client
	limiter    *RateLimiter
	sem        chan struct{}
	metrics    *metricsRecorder
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(opts ClientOptions) *Client {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    NewRateLimiter(opts.RateLimit),
		sem:        make(chan struct{}, opts.MaxConcurrent),
		metrics:    &metricsRecorder{},
		sleep:      sleepContext,
	}
}

// GetJSON calls an API endpoint relative to the base URL and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.opts.APIKey != "" {
		params.Set("apikey", c.opts.APIKey)
	}

	u := strings.TrimRight(c.opts.BaseURL, "/") + endpoint
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	_, err := c.request(ctx, u, "application/json", func(body []byte) error {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		return nil
	})
	return err
}

// Fetch retrieves an absolute URL, such as a feed or an article page.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return c.request(ctx, rawURL, "*/*", nil)
}

func (c *Client) request(ctx context.Context, u, accept string, decode func([]byte) error) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		c.metrics.update(func(m *Metrics) { m.TotalRequests++ })

		body, err := c.do(ctx, u, accept)
		if err == nil {
			if decode != nil {
				if decodeErr := decode(body); decodeErr != nil {
					c.metrics.update(func(m *Metrics) { m.FailedRequests++ })
					return nil, decodeErr
				}
			}
			c.metrics.update(func(m *Metrics) { m.SuccessfulRequests++ })
			return body, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			c.metrics.update(func(m *Metrics) { m.FailedRequests++ })
			return nil, ctxErr
		}

		lastErr = err
		delay := c.opts.RetryDelay * time.Duration(attempt+1)

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if !httpErr.Retryable() {
				c.metrics.update(func(m *Metrics) { m.FailedRequests++ })
				return nil, err
			}
			delay *= 2
		}

		if attempt == c.opts.MaxRetries {
			break
		}

		c.metrics.update(func(m *Metrics) { m.RetriesAttempted++ })
		slog.Warn("Upstream request failed, retrying", "url", redact(u), "attempt", attempt+1, "max_retries", c.opts.MaxRetries, "delay", delay.String(), "error", err)

		if err := c.sleep(ctx, delay); err != nil {
			c.metrics.update(func(m *Metrics) { m.FailedRequests++ })
			return nil, err
		}
	}

	c.metrics.update(func(m *Metrics) { m.FailedRequests++ })
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.opts.MaxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, u, accept string) ([]byte, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), URL: redact(u)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (c *Client) Metrics() Metrics {
	m := c.metrics.snapshot()
	m.RateLimitHits = c.limiter.Hits()
	return m
}

func (c *Client) ResetMetrics() {
	c.metrics.reset()
	c.limiter.ResetHits()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// redact hides the API key in logged URLs.
func redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	if q.Has("apikey") {
		q.Set("apikey", "***")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}
