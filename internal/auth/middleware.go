// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/models"
)

type contextKey string

const (
	// ClaimsContextKey holds the *Claims of an authenticated request.
	ClaimsContextKey contextKey = "claims"
	// CSPNonceContextKey holds the per-request script nonce.
	CSPNonceContextKey contextKey = "csp-nonce"
)

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "aeo_session"

// LoginPath is where RequirePage sends unauthenticated browsers.
const LoginPath = "/admin/login"

// Middleware provides session and request hardening middleware.
type Middleware struct {
	jwt            *JWTManager
	cookieName     string
	trustedProxies map[string]bool
}

// NewMiddleware creates the middleware.
func NewMiddleware(jwtManager *JWTManager, cfg *config.SecurityConfig) *Middleware {
	trusted := make(map[string]bool, len(cfg.TrustedProxies))
	for _, p := range cfg.TrustedProxies {
		trusted[strings.TrimSpace(p)] = true
	}
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Middleware{jwt: jwtManager, cookieName: name, trustedProxies: trusted}
}

// CookieName returns the session cookie name.
func (m *Middleware) CookieName() string { return m.cookieName }

// ClaimsFromContext returns the claims set by RequireAPI or RequirePage.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return c, ok
}

// NonceFromContext returns the CSP nonce set by SecurityHeaders.
func NonceFromContext(ctx context.Context) string {
	n, _ := ctx.Value(CSPNonceContextKey).(string)
	return n
}

// Authenticate returns the claims of r's session, if any.
func (m *Middleware) Authenticate(r *http.Request) (*Claims, error) {
	token, err := m.extractToken(r)
	if err != nil {
		return nil, err
	}
	return m.jwt.ValidateToken(token)
}

// RequireAPI rejects unauthenticated requests with 401 JSON.
func (m *Middleware) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("API request rejected")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
	})
}

// RequirePage redirects unauthenticated browsers to the login page,
// preserving the requested path in ?next=.
func (m *Middleware) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r)
		if err != nil {
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
	})
}

// extractToken reads the Bearer header first, then the session cookie.
func (m *Middleware) extractToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", errInvalidAuthHeader
		}
		return strings.TrimSpace(token), nil
	}
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", errMissingToken
	}
	return c.Value, nil
}

// SetSessionCookie stores token in the session cookie.
func (m *Middleware) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.IsTLS(r),
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Middleware) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.IsTLS(r),
		SameSite: http.SameSiteStrictMode,
	})
}

// IsTLS reports whether the client connection used TLS. X-Forwarded-Proto
// is honored only from trusted proxies.
func (m *Middleware) IsTLS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return m.isFromTrustedProxy(remoteIP(r)) && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// ClientIP returns the client address. Forwarding headers are honored only
// when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	ip := remoteIP(r)
	if !m.isFromTrustedProxy(ip) {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if candidate := strings.TrimSpace(first); net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return ip
}

func (m *Middleware) isFromTrustedProxy(ip string) bool {
	return len(m.trustedProxies) > 0 && m.trustedProxies[ip]
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// SecurityHeaders adds security headers and a CSP script nonce to every response.
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := generateNonce()
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to generate CSP nonce")
			nonce = ""
		}
		r = r.WithContext(context.WithValue(r.Context(), CSPNonceContextKey, nonce))

		csp := "default-src 'self'; " +
			"script-src 'self' 'nonce-" + nonce + "'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if m.IsTLS(r) {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingToken      authError = "missing session token"
	errInvalidAuthHeader authError = "invalid authorization header"
)

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Authentication required",
		},
	})
}
