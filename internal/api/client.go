// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/logging"
)

// Configuration constants for the backend client.
const (
	// DefaultBaseURL is where a local backend listens.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds ordinary requests.
	DefaultTimeout = 30 * time.Second

	// DefaultChatTimeout bounds chat requests, which wait on the assistant.
	DefaultChatTimeout = 120 * time.Second

	// DefaultMaxRetries is the default number of retries for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 8 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 4 * 1024 * 1024

	userAgent = "taskchat/1.0"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	if s == "" {
		return "", ErrUnauthorized
	}
	return string(s), nil
}

// Options configures a Client. Zero values take the defaults above.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	ChatTimeout time.Duration
	// MaxRetries is the number of retries after the first attempt. Negative disables retries.
	MaxRetries int
	// RequestsPerMinute caps outgoing requests. Zero means unlimited.
	RequestsPerMinute int
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the taskchat backend.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	limiter     *rate.Limiter
	timeout     time.Duration
	chatTimeout time.Duration
	maxRetries  int
	baseDelay   time.Duration
	log         *zap.Logger
}

// New creates a client. tokens may be nil for unauthenticated use (login,
// register, health).
func New(opts Options, tokens TokenSource) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		tokens:      tokens,
		timeout:     opts.Timeout,
		chatTimeout: opts.ChatTimeout,
		maxRetries:  opts.MaxRetries,
		baseDelay:   retryBaseDelay,
		log:         opts.Logger,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.chatTimeout <= 0 {
		c.chatTimeout = DefaultChatTimeout
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if opts.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
		burst := opts.RequestsPerMinute / 6
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(perSecond, burst)
	}
	if c.log == nil {
		c.log = logging.L()
	}
	c.log = c.log.Named("api")

	return c
}

// NewFromConfig creates a client from the [server] config section.
func NewFromConfig(cfg *config.Config, tokens TokenSource) *Client {
	return New(Options{
		BaseURL:           cfg.Server.BaseURL,
		Timeout:           time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		ChatTimeout:       time.Duration(cfg.Server.ChatTimeoutSecs) * time.Second,
		MaxRetries:        cfg.Server.MaxRetries,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	}, tokens)
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTokens returns a copy of the client that authenticates with tokens.
// The copy shares the transport and rate limiter.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// call describes one logical API call.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	// auth attaches the bearer token.
	auth bool
	// retry allows retrying on 5xx and transport errors. Only idempotent
	// calls set it; a retried POST could create a task twice.
	retry   bool
	timeout time.Duration
}

// do performs the call with retries and exponential backoff.
func (c *Client) do(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		var err error
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := 1
	if cl.retry {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		err := c.attempt(ctx, cl, payload, attempt)
		if err == nil {
			return nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		lastErr = err
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs a single HTTP round trip.
func (c *Client) attempt(ctx context.Context, cl call, payload []byte, attempt int) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth {
		if c.tokens == nil {
			return ErrUnauthorized
		}
		token, err := c.tokens.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Int("attempt", attempt),
			zap.Duration("duration", duration),
			zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return fmt.Errorf("request timed out: %w", ctxErr)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Never log headers or bodies: they carry tokens, passwords and chat text.
	c.log.Debug("request",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode),
		zap.Int("attempt", attempt),
		zap.Duration("duration", duration))

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, data)
	}

	if cl.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cl.out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRetryable reports whether err is a 5xx or a transport failure.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, ErrUnavailable)
}

// calculateBackoff returns the delay to wait before the given retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
