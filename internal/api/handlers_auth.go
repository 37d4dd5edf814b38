// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/content"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
)

const (
	adminPath           = "/admin"
	invalidLoginMessage = "Invalid email or password"
)

// LoginRequest is the login body, accepted as JSON or a form post.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
	Next     string `json:"next,omitempty" validate:"max=1024"`
}

type loginPageData struct {
	Error string
	Next  string
	Email string
}

// LoginPage renders the sign-in form. Signed-in admins go straight to
// the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, err := h.Sessions.Authenticate(r); err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{Next: next})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	w.Header().Set("Cache-Control", "no-store")
	h.Renderer.Render(w, status, content.PageLogin, content.PageData{
		Title:   "Sign in",
		Nonce:   auth.NonceFromContext(r.Context()),
		NoIndex: true,
		Data:    data,
	})
}

// Login checks the admin credentials and sets the session cookie. JSON
// clients get a LoginResponse; form posts are redirected.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	jsonClient := wantsJSON(r)

	var req LoginRequest
	if isJSONRequest(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadBody(w, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Error: "Malformed form submission"})
			return
		}
		req = LoginRequest{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Next:     r.PostForm.Get("next"),
		}
	}
	req.Email = strings.TrimSpace(req.Email)
	next := safeNext(req.Next)

	if verr := validateRequest(&req); verr != nil {
		if jsonClient {
			respondValidation(w, verr)
			return
		}
		h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Error: verr.Error(), Next: next, Email: req.Email})
		return
	}

	ip := h.Sessions.ClientIP(r)
	ua := r.UserAgent()

	if h.Auth == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Admin login is not configured", nil)
		return
	}
	if err := h.Auth.Authenticate(req.Email, req.Password); err != nil {
		metrics.RecordLogin(false)
		h.security.LogLoginFailure(req.Email, ip, ua, err.Error())
		if jsonClient {
			respondAPIError(w, http.StatusUnauthorized, &models.APIError{Code: ErrCodeUnauthorized, Message: invalidLoginMessage})
			return
		}
		h.renderLogin(w, r, http.StatusUnauthorized, loginPageData{Error: invalidLoginMessage, Next: next, Email: req.Email})
		return
	}

	token, expiresAt, err := h.JWT.GenerateToken(h.Auth.Email(), auth.RoleAdmin)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create session", err)
		return
	}
	h.Sessions.SetSessionCookie(w, r, token, expiresAt)
	metrics.RecordLogin(true)
	h.security.LogLoginSuccess(h.Auth.Email(), ip, ua)

	if !jsonClient {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	respondSuccess(w, models.LoginResponse{
		Email:     h.Auth.Email(),
		Role:      auth.RoleAdmin,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, time.Time{})
}

// Logout clears the session cookie. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, err := h.Sessions.Authenticate(r); err == nil {
		h.security.LogLogout(claims.Email, h.Sessions.ClientIP(r))
	}
	h.Sessions.ClearSessionCookie(w, r)

	if !wantsJSON(r) {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	respondSuccess(w, map[string]bool{"logged_out": true}, time.Time{})
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") ||
		strings.ContainsAny(next, "\r\n") {
		return adminPath
	}
	return next
}
