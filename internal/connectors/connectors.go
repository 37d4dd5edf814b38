// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

/*
Package connectors provides clients for the third-party analytics APIs the
dashboard reads: Google Analytics 4, Google Search Console and SEMrush.

Every client shares one transport (apiClient) with:
  - a per-connector outbound rate limit (golang.org/x/time/rate)
  - retry with exponential backoff on 429 and 5xx, honoring Retry-After
  - a sony/gobreaker circuit breaker reporting to Prometheus
  - a 10 MiB cap on response bodies and 64 KiB on error bodies

Google APIs authenticate with a service account key through the OAuth2 JWT
bearer flow, or with a static access token for local development.

Unconfigured connectors are left nil in Set; callers treat a nil source as
unavailable rather than failed.
*/
package connectors

import (
	"context"
	"time"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/models"
)

// TrafficSource returns GA4-style traffic for an inclusive date range.
type TrafficSource interface {
	Name() string
	RunReport(ctx context.Context, start, end time.Time) (*models.GA4Report, error)
}

// SearchSource returns Search Console rows for an inclusive date range.
type SearchSource interface {
	Name() string
	Query(ctx context.Context, start, end time.Time) (*models.SearchReport, error)
}

// SEOSource returns the current SEO report for the configured domain.
type SEOSource interface {
	Name() string
	Report(ctx context.Context) (*models.SEMrushReport, error)
}

// Set holds the configured connectors. Nil fields are not configured.
type Set struct {
	Traffic TrafficSource
	Search  SearchSource
	SEO     SEOSource
}

// Configured reports which connectors are available, keyed by name.
func (s *Set) Configured() map[string]bool {
	return map[string]bool{
		"ga4":            s.Traffic != nil,
		"search_console": s.Search != nil,
		"semrush":        s.SEO != nil,
	}
}

// New builds the connectors enabled by cfg. Google connectors need
// credentials; a credential error disables them with a warning instead of
// failing startup.
func New(ctx context.Context, cfg *config.Config) *Set {
	set := &Set{}
	log := logging.WithComponent("connectors")

	googleWanted := cfg.GA4.PropertyID != "" || cfg.SearchConsole.SiteURL != ""
	if googleWanted {
		ts, err := GoogleTokenSource(ctx, cfg.Google, ScopeAnalyticsReadonly, ScopeWebmastersReadonly)
		if err != nil {
			log.Warn().Err(err).Msg("Google connectors disabled")
		} else {
			if cfg.GA4.PropertyID != "" {
				set.Traffic = NewGA4Client(cfg.GA4, cfg.Connectors, googleHTTPClient(ts, cfg.Connectors))
			}
			if cfg.SearchConsole.SiteURL != "" {
				set.Search = NewSearchConsoleClient(cfg.SearchConsole, cfg.Connectors, googleHTTPClient(ts, cfg.Connectors))
			}
		}
	}

	if cfg.SEMrush.APIKey != "" && cfg.SEMrush.Domain != "" {
		set.SEO = NewSEMrushClient(cfg.SEMrush, cfg.Connectors, nil)
	}

	for name, ok := range set.Configured() {
		log.Info().Str("connector", name).Bool("configured", ok).Msg("Connector status")
	}
	return set
}
