// Package core provides the shared plumbing of the grandkitchen client SDK.
// This file implements the single HTTP transport every feature client calls
// through.
//
// Purpose:
// - One place that knows how to talk to the ordering backend
// - Attaches the session token and a request ID to every request
// - Logs every request and response through the injected logger
// - Normalizes server responses into typed envelopes and errors
// - Retries transient transport failures with exponential backoff, for
//   idempotent reads only: a mutation whose connection died may already have
//   been processed server-side, and re-sending it would place an order or
//   add a cart line twice
//
// Scope:
// - Transport: base URL + versioned prefix + http.Client with timeout
// - PostJSON / PostForm / GetJSON: enveloped endpoints
// - GetRaw: the few endpoints that bypass the standard envelope
//
// Earlier clients of this API duplicated token attachment and logging in
// every feature slice, drifting apart over time. Feature packages here hold
// no HTTP code at all; they describe requests and let the transport execute
// them.
//
// The auth header is a custom header literally named "bearer" carrying the
// raw token. The backend does not read the standard Authorization scheme.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// TokenFunc supplies the current session token for a request. An empty
// return means no session; the request goes out unauthenticated.
type TokenFunc func(ctx context.Context) string

// Transport executes API requests against the ordering backend
type Transport struct {
	baseURL    string
	prefix     string
	httpClient *http.Client
	logger     logger.Logger
	tokenFn    TokenFunc
	retry      RetryConfig
}

// TransportOption customizes a Transport
type TransportOption func(*Transport)

// WithTokenFunc installs the session token supplier
func WithTokenFunc(fn TokenFunc) TransportOption {
	return func(t *Transport) {
		t.tokenFn = fn
	}
}

// WithRoundTripper replaces the underlying round tripper. Used to install
// the otelhttp-instrumented transport when telemetry is enabled.
func WithRoundTripper(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.httpClient.Transport = rt
	}
}

// NewTransport creates a transport from the given config
func NewTransport(cfg *Config, log logger.Logger, opts ...TransportOption) *Transport {
	if log == nil {
		log = logger.NopLogger{}
	}
	t := &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.APIPrefix,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.With(map[string]interface{}{"component": "transport"}),
		retry:  cfg.Retry,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PostJSON sends a JSON body to an enveloped mutation endpoint and decodes
// the envelope's data field into out (out may be nil). Mutations are never
// retried automatically: a dropped connection does not prove the server
// skipped the request.
func (t *Transport) PostJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return t.do(ctx, http.MethodPost, path, "application/json", payload, out, true, false)
}

// PostJSONRead sends a JSON body to an enveloped read endpoint. Several of
// the backend's reads are POST-shaped (cart get, order list); re-sending
// them is safe, so they retry like GETs.
func (t *Transport) PostJSONRead(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return t.do(ctx, http.MethodPost, path, "application/json", payload, out, true, true)
}

// PostForm sends a form-encoded body to an enveloped read endpoint. The
// allowance endpoint requires this encoding.
func (t *Transport) PostForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	return t.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", []byte(form.Encode()), out, true, true)
}

// GetJSON issues a GET against an enveloped endpoint
func (t *Transport) GetJSON(ctx context.Context, path string, out interface{}) error {
	return t.do(ctx, http.MethodGet, path, "", nil, out, true, true)
}

// GetRaw issues a GET against an endpoint that does not use the standard
// envelope and decodes the body directly into out.
func (t *Transport) GetRaw(ctx context.Context, path string, out interface{}) error {
	return t.do(ctx, http.MethodGet, path, "", nil, out, false, true)
}

// do executes one logical request, retrying transient failures when the
// request is idempotent. The body is pre-encoded so each attempt rebuilds a
// fresh request.
func (t *Transport) do(ctx context.Context, method, path, contentType string, body []byte, out interface{}, enveloped, idempotent bool) error {
	requestID := uuid.NewString()
	fullURL := t.baseURL + t.prefix + path
	log := t.logger.With(map[string]interface{}{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})

	var lastErr error
	delay := t.retry.InitialDelay

	for attempt := 1; attempt <= t.retry.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return contextError(ctx, ctx.Err())
		default:
		}

		err := t.attempt(ctx, log, method, fullURL, contentType, body, requestID, out, enveloped)
		if err == nil {
			return nil
		}
		lastErr = err

		if !idempotent || !IsRetryable(err) || attempt == t.retry.MaxAttempts {
			return err
		}

		log.Warn("Retrying request after transient failure", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt > 1 {
			delay = time.Duration(float64(delay) * t.retry.BackoffFactor)
			if delay > t.retry.MaxDelay {
				delay = t.retry.MaxDelay
			}
		}
		if t.retry.JitterEnabled {
			delay += time.Duration(float64(delay) * 0.1 * math.Sin(float64(attempt)))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return contextError(ctx, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

// contextError maps a terminated context to the matching sentinel: a blown
// deadline is a timeout, an explicit cancel is not
func contextError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", ErrContextCanceled, cause)
	}
	return fmt.Errorf("%w: %v", ErrTimeout, cause)
}

// attempt executes a single HTTP exchange
func (t *Transport) attempt(ctx context.Context, log logger.Logger, method, fullURL, contentType string, body []byte, requestID string, out interface{}, enveloped bool) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t.tokenFn != nil {
		if token := t.tokenFn(ctx); token != "" {
			req.Header.Set(BearerHeader, token)
		}
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Error("Request failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if ctx.Err() != nil {
			return contextError(ctx, err)
		}
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrConnectionFailed, err)
	}

	log.Debug("Request completed", map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if !enveloped {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	env := DecodeEnvelope(respBody)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return env.AsAPIError(resp.StatusCode)
	}
	if !env.Success {
		return env.AsAPIError(resp.StatusCode)
	}
	return env.DecodeData(out)
}
