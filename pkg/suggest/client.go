package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/obslog"
	"github.com/yourusername/bgrules/pkg/engine"
)

// ErrServiceStatus is wrapped by errors for non-2xx answers.
var ErrServiceStatus = errors.New("suggestion service error")

// Client posts positions to the suggestion service over HTTP.
type Client struct {
	url    string
	http   *fasthttp.Client
	logger *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

// WithTimeout bounds each attempt when the context has no earlier deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

// WithRetry sets how many attempts are made on transport errors and 5xx.
func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client posting to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:            url,
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		logger:         obslog.L(),
		defaultTimeout: 5 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest asks the service for a play in pos. The answer is not checked;
// pass it to Vet before using it.
func (c *Client) Suggest(ctx context.Context, pos engine.Position) (Candidate, error) {
	var cand Candidate
	payload, err := json.Marshal(Request{Position: pos.XGID()})
	if err != nil {
		return cand, fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.url)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return cand, err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		switch {
		case err != nil:
			lastErr = fmt.Errorf("request failed: %w", err)
		case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
			status := resp.StatusCode()
			lastErr = fmt.Errorf("%w: status=%d body=%s", ErrServiceStatus, status, truncate(string(resp.Body()), 512))
			if !shouldRetryStatus(status) {
				return cand, lastErr
			}
		default:
			if err := json.Unmarshal(resp.Body(), &cand); err != nil {
				return cand, fmt.Errorf("decode response: %w", err)
			}
			c.logger.Debug("suggestion received",
				zap.String("position", pos.String()),
				zap.Int("moves", len(cand.List())),
				zap.Int("attempt", attempt))
			return cand, nil
		}

		if attempt == attempts {
			break
		}
		c.logger.Warn("suggestion attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return cand, lastErr
		}
	}
	return cand, lastErr
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 50 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
