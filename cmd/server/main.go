// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Command server runs the AEOPulse content site and admin dashboard.
//
// Startup order:
//
//  1. Configuration: .env, config.yaml and environment (koanf)
//  2. Visit store: memory, DuckDB, Postgres or Supabase
//  3. Connectors: GA4, Search Console, SEMrush (each optional)
//  4. Dashboard: in-memory cache plus Badger last-known-good snapshots
//  5. Citation tester: OpenAI, Perplexity, Anthropic (each optional)
//  6. Admin auth: JWT sessions over a single configured identity
//  7. HTTP router, then the supervisor tree (HTTP server, retention, refresh)
//
// The server shuts down gracefully on SIGINT and SIGTERM.
//
// Minimal development run:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_EMAIL=admin@example.com
//	export ADMIN_PASSWORD=change-me-please
//	./server
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/aeopulse/internal/aggregate"
	"github.com/tomtom215/aeopulse/internal/api"
	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/cache"
	"github.com/tomtom215/aeopulse/internal/citation"
	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/connectors"
	"github.com/tomtom215/aeopulse/internal/content"
	"github.com/tomtom215/aeopulse/internal/dashboard"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/supervisor"
	"github.com/tomtom215/aeopulse/internal/supervisor/services"
	"github.com/tomtom215/aeopulse/internal/visits"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

//nolint:gocyclo // sequential startup
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("visit_backend", cfg.Visits.Backend).
		Str("environment", cfg.Server.Environment).
		Msg("Starting AEOPulse")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// === STORAGE ===

	store, err := visits.NewStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open visit store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing visit store")
		}
	}()
	if err := store.Ping(ctx); err != nil {
		// The site still serves pages; tracking and the AI section degrade.
		logging.Warn().Err(err).Str("backend", store.Backend()).Msg("Visit store is not reachable yet")
	}

	snapshots, err := cache.OpenBadgerSnapshotStore(cfg.Dashboard.SnapshotPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Dashboard.SnapshotPath).Msg("Failed to open snapshot store")
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing snapshot store")
		}
	}()

	// === DATA SOURCES ===

	sources := connectors.New(ctx, cfg)

	dash := dashboard.NewService(dashboard.Options{
		Sources:      sources,
		Visits:       store,
		Snapshots:    snapshots,
		CacheTTL:     cfg.Dashboard.CacheTTL,
		MaxVisitRows: cfg.Dashboard.MaxVisitRows,
	})
	defer dash.Close()

	tester := citation.New(cfg.Citation, nil)
	for name, ok := range tester.Configured() {
		logging.Info().Str("vendor", name).Bool("configured", ok).Msg("Citation vendor status")
	}

	// === AUTH ===

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session tokens")
	}
	authenticator, err := auth.NewAuthenticator(&cfg.Security)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		logging.Warn().Msg("Admin login disabled: set ADMIN_EMAIL and ADMIN_PASSWORD_HASH")
	case err != nil:
		logging.Fatal().Err(err).Msg("Invalid admin credentials")
	}

	// === HTTP ===

	lib, err := content.DefaultLibrary()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load articles")
	}
	renderer, err := content.NewRenderer(cfg.Site)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse templates")
	}
	recorder := visits.NewRecorder(store, cfg.Visits.StoreOrganic)
	site, err := content.NewSite(lib, renderer, recorder)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build content site")
	}
	logging.Info().Int("articles", len(lib.All())).Msg("Content library loaded")

	router := api.NewRouter(api.Deps{
		Config:     cfg,
		Site:       site,
		Renderer:   renderer,
		Auth:       authenticator,
		JWT:        jwtManager,
		Sessions:   auth.NewMiddleware(jwtManager, &cfg.Security),
		Dashboard:  dash,
		Citation:   tester,
		Tracker:    recorder,
		Store:      store,
		Connectors: sources.Configured(),
		Version:    version,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Citation tests wait on three vendors.
		WriteTimeout: max(cfg.Server.Timeout, cfg.Citation.Timeout+5*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})

	if cfg.Visits.RetentionDays > 0 {
		tree.AddDataService(services.NewRetentionService(store, services.RetentionConfig{
			RetentionDays: cfg.Visits.RetentionDays,
			Interval:      cfg.Visits.RetentionInterval,
		}, logging.Logger()))
	}
	if cfg.Dashboard.RefreshInterval > 0 {
		tree.AddDataService(services.NewRefreshService(dash, aggregate.RangeNames(), cfg.Dashboard.RefreshInterval, logging.Logger()))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("AEOPulse stopped")
}
