// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package openwebif is the network data source for Enigma2 receivers. It wraps
// GET and POST calls against the receiver's OpenWebIF JSON API.
package openwebif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Client interacts with the OpenWebIF API of a single receiver.
type Client struct {
	base       string
	http       *http.Client
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	username   string
	password   string
	userAgent  string
	rnd        *rand.Rand
	mu         sync.Mutex

	// StreamPort is the port for direct stream URLs (8001 on stock Enigma2).
	// When 0, StreamURL points at /web/stream.m3u and lets the receiver decide.
	StreamPort int
}

// Options configures the client behavior. Zero values pick a default except
// for MaxRetries and BreakerThreshold: zero retries means a single attempt and
// a threshold <= 0 disables the circuit breaker.
type Options struct {
	Timeout          time.Duration
	MaxRetries       int // extra attempts for idempotent reads
	Backoff          time.Duration
	MaxBackoff       time.Duration
	Username         string
	Password         string
	UserAgent        string
	RateLimit        rate.Limit
	RateLimitBurst   int
	BreakerThreshold int
	BreakerReset     time.Duration
	StreamPort       int
	Transport        http.RoundTripper
	Name             string // receiver label for breaker metrics
}

const (
	defaultTimeout        = 10 * time.Second
	defaultBackoff        = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultRateLimit      = 10
	defaultRateLimitBurst = 20
	defaultBreakerReset   = 30 * time.Second
	defaultUserAgent      = "e2remote"
	maxResponseBytes      = 32 << 20
)

// New creates a client for baseURL. Credentials embedded in the URL are moved
// into basic auth and stripped from the stored base.
func New(baseURL string, opts Options) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if u, err := url.Parse(trimmed); err == nil {
		if u.User != nil && opts.Username == "" {
			opts.Username = u.User.Username()
			if pass, ok := u.User.Password(); ok {
				opts.Password = pass
			}
		}
		u.User = nil
		trimmed = strings.TrimRight(u.String(), "/")
	}

	nopts := normalizeOptions(opts)
	transport := nopts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: nopts.Timeout,
			TLSHandshakeTimeout:   5 * time.Second,
		}
	}

	return &Client{
		base: trimmed,
		http: &http.Client{
			Timeout:   nopts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		limiter:    rate.NewLimiter(nopts.RateLimit, nopts.RateLimitBurst),
		breaker:    NewCircuitBreaker(nopts.Name, nopts.BreakerThreshold, nopts.BreakerReset),
		maxRetries: nopts.MaxRetries,
		backoff:    nopts.Backoff,
		maxBackoff: nopts.MaxBackoff,
		username:   nopts.Username,
		password:   nopts.Password,
		userAgent:  nopts.UserAgent,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
		StreamPort: nopts.StreamPort,
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = defaultBreakerReset
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = "openwebif"
	}
	return opts
}

// BaseURL returns the receiver base URL without credentials.
func (c *Client) BaseURL() string { return c.base }

// Breaker exposes the client's circuit breaker for status reporting.
func (c *Client) Breaker() *CircuitBreaker { return c.breaker }

// getJSON performs a read-only GET and decodes the JSON body into v. Reads
// are retried on transport errors and 5xx responses.
func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, v any) error {
	body, err := c.do(ctx, operation, http.MethodGet, path, params, nil, true)
	if err != nil {
		return err
	}
	return c.decode(ctx, operation, body, v)
}

// command performs a GET that changes receiver state (zap, key press, timer
// toggle, ...). It is sent exactly once: a command that timed out may already
// have been applied by the receiver.
func (c *Client) command(ctx context.Context, operation, path string, params url.Values, v any) error {
	body, err := c.do(ctx, operation, http.MethodGet, path, params, nil, false)
	if err != nil {
		return err
	}
	return c.decode(ctx, operation, body, v)
}

// postForm performs a form-encoded POST and decodes the JSON body into v.
// Like command it is never retried.
func (c *Client) postForm(ctx context.Context, operation, path string, form url.Values, v any) error {
	body, err := c.do(ctx, operation, http.MethodPost, path, nil, form, false)
	if err != nil {
		return err
	}
	return c.decode(ctx, operation, body, v)
}

// getRaw performs a read-only GET and returns the raw body (used for screenshots).
func (c *Client) getRaw(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, operation, http.MethodGet, path, params, nil, true)
}

func (c *Client) decode(ctx context.Context, operation string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		logger := xglog.WithComponentFromContext(ctx, "openwebif")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "openwebif.decode").
			Str(xglog.FieldOperation, operation).
			Msg("failed to decode response")
		return &OWIError{
			Sentinel:  ErrUpstreamBadResponse,
			Operation: operation,
			Status:    http.StatusOK,
			Body:      sanitizeBody(body),
			Err:       err,
		}
	}
	return nil
}

func (c *Client) buildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

// do runs a request through the rate limiter and circuit breaker and returns
// the body of a 2xx response. Any other outcome is an *OWIError. Only
// idempotent requests are retried.
func (c *Client) do(ctx context.Context, operation, method, path string, params, form url.Values, idempotent bool) ([]byte, error) {
	rawURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, &OWIError{Sentinel: ErrUpstreamUnavailable, Operation: operation, Err: err}
	}

	ctx, span := telemetry.Tracer("e2remote.openwebif").Start(ctx, "openwebif."+operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("openwebif.operation", operation),
		attribute.String(telemetry.HTTPMethodKey, method),
		attribute.String(telemetry.HTTPRouteKey, path),
	)
	defer span.End()

	var (
		body   []byte
		status int
	)
	err = c.breaker.Execute(func() error {
		var rtErr error
		body, status, rtErr = c.roundTrip(ctx, operation, method, path, rawURL, form, idempotent)
		return rtErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if _, ok := err.(*OWIError); ok {
			return nil, err
		}
		return nil, wrapError(operation, err, status, body)
	}

	span.SetAttributes(attribute.Int(telemetry.HTTPStatusCodeKey, status))
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		span.SetStatus(codes.Error, http.StatusText(status))
		return nil, wrapError(operation, nil, status, body)
	}
	span.SetStatus(codes.Ok, "")
	return body, nil
}

// roundTrip retries transport failures and 5xx responses of idempotent
// requests. Only those outcomes are returned as errors so that 4xx responses
// do not trip the circuit breaker.
func (c *Client) roundTrip(ctx context.Context, operation, method, endpoint, rawURL string, form url.Values, idempotent bool) ([]byte, int, error) {
	logger := xglog.WithComponentFromContext(ctx, "openwebif")
	maxAttempts := c.maxRetries + 1
	if !idempotent {
		maxAttempts = 1
	}

	var (
		lastErr    error
		lastStatus int
		lastBody   []byte
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, wrapError(operation, err, 0, nil)
		}

		req, err := c.newRequest(ctx, method, rawURL, form)
		if err != nil {
			return nil, 0, &OWIError{Sentinel: ErrUpstreamUnavailable, Operation: operation, Err: err}
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		duration := time.Since(start)

		status := 0
		var body []byte
		if resp != nil {
			status = resp.StatusCode
			body, err = readBody(resp, err)
		}

		retry := attempt < maxAttempts && ctx.Err() == nil && shouldRetry(status, err)
		recordAttempt(operation, status, duration, err, retry)

		logger.Debug().
			Str(xglog.FieldEvent, "openwebif.request").
			Str(xglog.FieldOperation, operation).
			Str(xglog.FieldPath, endpoint).
			Int(xglog.FieldStatus, status).
			Int(xglog.FieldAttempt, attempt).
			Dur(xglog.FieldDuration, duration).
			Err(err).
			Msg("receiver request")

		if err == nil && status < http.StatusInternalServerError {
			return body, status, nil
		}

		lastErr, lastStatus, lastBody = err, status, body
		if !retry {
			break
		}

		wait := c.backoffFor(attempt - 1)
		logger.Warn().
			Str(xglog.FieldEvent, "openwebif.retry").
			Str(xglog.FieldOperation, operation).
			Int(xglog.FieldAttempt, attempt).
			Dur("backoff", wait).
			Msg("retrying receiver request")
		if err := sleepWithContext(ctx, wait); err != nil {
			return nil, 0, wrapError(operation, err, 0, nil)
		}
	}

	return lastBody, lastStatus, wrapError(operation, lastErr, lastStatus, lastBody)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.applyHeaders(req)
	return req, nil
}

func readBody(resp *http.Response, err error) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		return true
	}
	return status >= http.StatusInternalServerError
}

func (c *Client) backoffFor(attempt int) time.Duration {
	wait := c.backoff * time.Duration(1<<attempt)
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	jitter := time.Duration(c.randInt63n(int64(wait/5 + 1)))
	return wait + jitter
}

func (c *Client) randInt63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int63n(n)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
