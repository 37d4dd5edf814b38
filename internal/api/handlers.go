// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"context"
	"time"

	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/citation"
	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/content"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/models"
	"github.com/tomtom215/aeopulse/internal/visits"
)

// StatsProvider assembles the dashboard for a date range.
type StatsProvider interface {
	Stats(ctx context.Context, rangeName string) (*models.Stats, error)
}

// CitationRunner runs citation tests.
type CitationRunner interface {
	Run(ctx context.Context, req citation.Request) (*citation.Result, error)
	Configured() map[string]bool
}

// VisitTracker records beacon reports: new hits through Track, engagement
// for a visit the page already recorded through Engage.
type VisitTracker interface {
	Track(ctx context.Context, h visits.Hit) (visits.Outcome, error)
	Engage(ctx context.Context, id string, h visits.Hit) (visits.Outcome, error)
}

// HealthChecker reports visit store health.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Backend() string
}

// Deps are the collaborators the handlers need. Site and Renderer serve
// pages; the rest back the JSON endpoints.
type Deps struct {
	Config     *config.Config
	Site       *content.Site
	Renderer   *content.Renderer
	Auth       *auth.Authenticator
	JWT        *auth.JWTManager
	Sessions   *auth.Middleware
	Dashboard  StatsProvider
	Citation   CitationRunner
	Tracker    VisitTracker
	Store      HealthChecker
	Connectors map[string]bool
	Version    string
}

// Handler implements the admin pages and JSON endpoints.
type Handler struct {
	Deps
	security  *logging.SecurityLogger
	startTime time.Time
}

// NewHandler creates a handler. Missing optional collaborators (Citation,
// Store) make their endpoints answer SERVICE_UNAVAILABLE.
func NewHandler(deps Deps) *Handler {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{
		Deps:      deps,
		security:  logging.NewSecurityLogger(),
		startTime: time.Now(),
	}
}

// defaultRange is the dashboard range used when none is requested.
func (h *Handler) defaultRange() string {
	if r := h.Config.Dashboard.DefaultRange; r != "" {
		return r
	}
	return "28d"
}
