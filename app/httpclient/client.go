package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const maxBodyBytes = 10 << 20

// StatusError is returned for non-2xx upstream responses. It unwraps to
// types.ErrUpstreamQuota for 429 and types.ErrUpstream otherwise.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return types.ErrUpstreamQuota
	}
	return types.ErrUpstream
}

// Client is the outbound HTTP client shared by every search and LLM
// integration.
type Client struct {
	http            *http.Client
	maxRetries      uint
	initialInterval time.Duration
	logger          *slog.Logger
}

type Option func(*Client)

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) { c.initialInterval = d }
}

// WithTransport replaces the base transport wrapped by otelhttp.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = otelhttp.NewTransport(rt) }
}

func New(timeout time.Duration, maxRetries uint, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries:      maxRetries,
		initialInterval: 300 * time.Millisecond,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request, retrying network errors and 5xx responses with
// exponential backoff. 4xx responses are returned immediately.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	l := c.logger.With(slog.String("method", method), slog.String("url", url))
	attempt := 0

	op := func() ([]byte, error) {
		attempt++
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if body != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			l.WarnContext(ctx, "Upstream request failed", slog.Int("attempt", attempt), slog.Any("error", err))
			return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", types.ErrUpstream, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}

		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
		if resp.StatusCode >= 500 {
			l.WarnContext(ctx, "Upstream server error", slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	data, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxRetries+1),
	)
	if err != nil {
		l.ErrorContext(ctx, "Upstream call failed", slog.Int("attempts", attempt), slog.Any("error", err))
		if !errors.Is(err, types.ErrUpstream) && !errors.Is(err, types.ErrUpstreamQuota) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", types.ErrUpstream, err)
		}
		return nil, err
	}
	return data, nil
}

// GetJSON issues a GET and decodes the JSON body into dst.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, dst any) error {
	data, err := c.Do(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: decode response from %s: %v", types.ErrUpstream, url, err)
	}
	return nil
}

// PostJSON marshals payload, POSTs it and decodes the JSON body into dst.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := c.Do(ctx, http.MethodPost, url, headers, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: decode response from %s: %v", types.ErrUpstream, url, err)
	}
	return nil
}

// HTTPClient exposes the instrumented *http.Client for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
