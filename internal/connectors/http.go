// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/metrics"
)

const (
	// maxBodySize caps successful response bodies.
	maxBodySize = 10 << 20
	// maxErrorBodySize caps the body kept for error reporting.
	maxErrorBodySize = 64 * 1024
	// maxRetryAfter bounds how long a Retry-After header can stall a call.
	maxRetryAfter = 30 * time.Second
)

// StatusError is returned when a vendor API answers with a non-2xx status.
type StatusError struct {
	Connector  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Connector, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}

// readBody reads a success body, failing when it exceeds maxBodySize.
func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}
	return body, nil
}

// request describes one vendor call. Body, when set, is sent as JSON.
type request struct {
	method string
	url    string
	body   any
	header http.Header
}

// apiClient is the transport shared by every connector: an http.Client,
// an outbound rate limiter, retry with exponential backoff on 429 and 5xx,
// and a circuit breaker around the whole exchange.
type apiClient struct {
	name           string
	http           *http.Client
	limiter        *rate.Limiter
	breaker        *Breaker
	maxRetries     int
	retryBaseDelay time.Duration
}

func newAPIClient(name string, httpClient *http.Client, cfg config.ConnectorsConfig) *apiClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.Timeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &apiClient{
		name:           name,
		http:           httpClient,
		limiter:        rate.NewLimiter(limit, 1),
		breaker:        NewBreaker(name + "-api"),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// do executes req and returns the response body.
func (c *apiClient) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, req)
	})
	metrics.RecordConnectorCall(c.name, time.Since(start), err)
	return body, err
}

// doJSON executes req and decodes the response into out.
func (c *apiClient) doJSON(ctx context.Context, req request, out any) error {
	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func (c *apiClient) doWithRetry(ctx context.Context, req request) ([]byte, error) {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", c.name, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryAfter, err := c.once(ctx, req, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var se *StatusError
		if !errors.As(err, &se) || !se.Retryable() || attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter > 0 {
			delay = min(retryAfter, maxRetryAfter)
		}
		metrics.ConnectorRetries.WithLabelValues(c.name).Inc()
		logging.Debug().Str("connector", c.name).Int("status", se.StatusCode).
			Int("attempt", attempt+1).Dur("delay", delay).Msg("Retrying upstream request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// once performs a single HTTP exchange. The returned duration is the
// server's Retry-After hint, if any.
func (c *apiClient) once(ctx context.Context, req request, payload []byte) ([]byte, time.Duration, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create request: %w", c.name, err)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &StatusError{
			Connector:  c.name,
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", c.name, err)
	}
	return body, 0, nil
}

// parseRetryAfter handles the delta-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
