// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
)

// PostgresStore stores visits in Postgres, typically the database behind
// a Supabase project reached through its direct connection string.
type PostgresStore struct {
	pool  *pgxpool.Pool
	name  string
	table string
	limit int
}

// NewPostgresStore connects to dsn and ensures the visits table exists.
func NewPostgresStore(ctx context.Context, dsn, table string, queryLimit int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	s := NewPostgresStoreWithPool(pool, table, queryLimit)
	if err := s.CreateTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool. The caller owns schema setup.
func NewPostgresStoreWithPool(pool *pgxpool.Pool, table string, queryLimit int) *PostgresStore {
	return &PostgresStore{
		pool:  pool,
		name:  table,
		table: pgx.Identifier{table}.Sanitize(),
		limit: queryLimit,
	}
}

// Backend returns "postgres".
func (s *PostgresStore) Backend() string { return "postgres" }

// CreateTable creates the visits table and its indexes if missing.
func (s *PostgresStore) CreateTable(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL,
			user_agent TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			page_path TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			time_on_page INTEGER NOT NULL DEFAULT 0,
			scroll_depth INTEGER NOT NULL DEFAULT 0,
			visited_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (visited_at DESC)`,
			pgx.Identifier{indexName(s.name, "visited_at")}.Sanitize(), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (engine, source_type)`,
			pgx.Identifier{indexName(s.name, "engine")}.Sanitize(), s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	logging.Info().Str("table", s.name).Msg("Postgres visits table created/verified")
	return nil
}

// Insert stores v.
func (s *PostgresStore) Insert(ctx context.Context, v *models.AIVisit) error {
	if err := prepare(v); err != nil {
		return err
	}
	start := time.Now()
	_, err := s.pool.Exec(ctx, insertQuery(s.table, dollarPlaceholder), insertArgs(v)...)
	metrics.RecordStoreQuery(s.Backend(), "insert", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// List returns matching visits newest first.
func (s *PostgresStore) List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error) {
	query, args := listQuery(s.table, f, effectiveLimit(f.Limit, s.limit), dollarPlaceholder)

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreQuery(s.Backend(), "list", time.Since(start), err)
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	out := make([]models.AIVisit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			metrics.RecordStoreQuery(s.Backend(), "list", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		out = append(out, v)
	}
	err = rows.Err()
	metrics.RecordStoreQuery(s.Backend(), "list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}
	return out, nil
}

// UpdateEngagement sets the session metrics of the visit with id.
func (s *PostgresStore) UpdateEngagement(ctx context.Context, id string, timeOnPage, scrollDepth int) error {
	timeOnPage, scrollDepth = models.ClampEngagement(timeOnPage, scrollDepth)

	start := time.Now()
	tag, err := s.pool.Exec(ctx, updateEngagementQuery(s.table, dollarPlaceholder), timeOnPage, scrollDepth, id)
	metrics.RecordStoreQuery(s.Backend(), "update", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore removes visits older than t.
func (s *PostgresStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	start := time.Now()
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE visited_at < $1", s.table), t.UTC())
	metrics.RecordStoreQuery(s.Backend(), "delete", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete visits: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the pool can reach the server.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
