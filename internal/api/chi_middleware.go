// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/middleware"
	"github.com/tomtom215/aeopulse/internal/models"
)

// Login attempts allowed per client IP and window.
const (
	LoginRateLimit  = 5
	LoginRateWindow = 5 * time.Minute
)

// ChiMiddleware builds the CORS and rate limiting middleware from the
// security configuration.
type ChiMiddleware struct {
	cfg    config.SecurityConfig
	keyIP  httprate.KeyFunc
	corsMW func(http.Handler) http.Handler
}

// NewChiMiddleware creates the factory. clientIP extracts the rate limit
// key; it should honor only trusted proxies.
func NewChiMiddleware(cfg config.SecurityConfig, clientIP func(*http.Request) string) *ChiMiddleware {
	return &ChiMiddleware{
		cfg: cfg,
		keyIP: func(r *http.Request) (string, error) {
			return clientIP(r), nil
		},
		// Empty origins disable cross-origin access entirely.
		corsMW: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.corsMW
}

// RateLimit applies the configured general limit per client IP.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.cfg.RateLimitReqs, m.cfg.RateLimitWindow)
}

// RateLimitLogin applies the login brute-force limit per client IP.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.limit(LoginRateLimit, LoginRateWindow)
}

func (m *ChiMiddleware) limit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled || requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(m.keyIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(middleware.RoutePattern(r)).Inc()
	respondAPIError(w, http.StatusTooManyRequests, &models.APIError{
		Code:    ErrCodeRateLimited,
		Message: "Too many requests, try again later",
	})
}
