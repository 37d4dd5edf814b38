// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package api wires the HTTP surface: the public content site, the admin
// pages and the JSON endpoints, on a chi router.
//
// Routes:
//
//	GET  /, /guides[/{slug}], /troubleshooting[/{slug}]   content pages
//	GET  /robots.txt, /sitemap.xml, /llms.txt
//	GET  /admin/login                                     sign-in form
//	GET  /admin                                           dashboard (session)
//	POST /api/auth/login, /api/auth/logout
//	GET  /api/stats?range=28d                             dashboard JSON (session)
//	POST /api/track                                       visit beacon (rate limited)
//	POST /api/aeo/citation-test                           citation test (session)
//	GET  /api/health, /metrics
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/aeopulse/internal/middleware"
	"github.com/tomtom215/aeopulse/internal/models"
)

// compressibleTypes are gzip-compressed by chi's Compress middleware.
var compressibleTypes = []string{
	"text/html",
	"text/plain",
	"application/json",
	"application/xml",
}

// Router owns the handler and middleware factories.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over deps.
func NewRouter(deps Deps) *Router {
	h := NewHandler(deps)
	return &Router{
		handler:       h,
		chiMiddleware: NewChiMiddleware(deps.Config.Security, deps.Sessions.ClientIP),
	}
}

// Handler returns the handler used by the routes.
func (router *Router) Handler() *Handler { return router.handler }

// SetupChi builds the full route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	sessions := h.Sessions

	r := chi.NewRouter()

	// Global stack, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(sessions.SecurityHeaders)
	r.Use(chimiddleware.Compress(5, compressibleTypes...))

	r.NotFound(h.Site.NotFound)
	h.Site.Routes(r)

	r.Get("/admin/login", h.LoginPage)
	r.With(sessions.RequirePage).Get("/admin", h.AdminPage)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.CORS())
		r.NotFound(apiNotFound)

		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.With(router.chiMiddleware.RateLimit()).Post("/track", h.Track)

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireAPI)
			r.Get("/stats", h.Stats)
			r.Post("/aeo/citation-test", h.CitationTest)
		})
	})

	return r
}

func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	respondAPIError(w, http.StatusNotFound, &models.APIError{
		Code:    ErrCodeNotFound,
		Message: "No such endpoint",
	})
}
