// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package visits persists classified page visits.
//
// Four Store implementations share one contract:
//   - SupabaseStore talks to the hosted PostgREST endpoint over HTTPS
//   - PostgresStore uses a pgx pool against the same table directly
//   - DuckDBStore keeps visits in an embedded DuckDB file
//   - MemoryStore keeps visits in process, for tests and keyless runs
//
// List returns visits newest first. A zero VisitFilter.Limit falls back to
// the configured query limit; VisitFilter.Offset pages past it.
//
// UpdateEngagement fills in time on page and scroll depth for a visit the
// server recorded before the page beacon reported them.
package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/models"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("visit store is closed")
	// ErrNotFound is returned when no visit has the requested ID.
	ErrNotFound = errors.New("visit not found")
)

// Store persists AI visits.
type Store interface {
	// Insert stores v. An empty ID is assigned a UUID.
	Insert(ctx context.Context, v *models.AIVisit) error
	// List returns visits matching f, newest first.
	List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error)
	// UpdateEngagement sets the session metrics of the visit with id.
	UpdateEngagement(ctx context.Context, id string, timeOnPage, scrollDepth int) error
	// DeleteBefore removes visits older than t and returns how many were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation for logs and health output.
	Backend() string
	Close() error
}

// NewStore opens the backend selected by cfg.Visits.Backend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	v := cfg.Visits
	switch v.Backend {
	case config.VisitBackendSupabase:
		return NewSupabaseStore(cfg.Supabase, v.Table, v.QueryLimit, nil), nil
	case config.VisitBackendPostgres:
		return NewPostgresStore(ctx, v.PostgresURL, v.Table, v.QueryLimit)
	case config.VisitBackendDuckDB:
		return NewDuckDBStore(ctx, v.DuckDBPath, v.Table, v.QueryLimit)
	case config.VisitBackendMemory, "":
		return NewMemoryStore(v.QueryLimit), nil
	default:
		return nil, fmt.Errorf("unknown visit backend %q", v.Backend)
	}
}

// prepare assigns an ID when missing and normalizes the visit.
func prepare(v *models.AIVisit) error {
	if v == nil {
		return errors.New("visit cannot be nil")
	}
	if !v.SourceType.Valid() {
		return fmt.Errorf("invalid source type %q", v.SourceType)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.Normalize(time.Now().UTC())
	return nil
}

// effectiveLimit applies the store default to a filter limit.
func effectiveLimit(requested, fallback int) int {
	switch {
	case requested > 0 && (fallback <= 0 || requested < fallback):
		return requested
	case fallback > 0:
		return fallback
	default:
		return 0
	}
}
