// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
)

// DuckDBStore stores visits in an embedded DuckDB database file.
type DuckDBStore struct {
	db    *sql.DB
	name  string
	table string
	limit int
	mu    sync.RWMutex
}

// NewDuckDBStore opens (or creates) the database at path and ensures the
// visits table exists. An empty path opens an in-memory database.
func NewDuckDBStore(ctx context.Context, path, table string, queryLimit int) (*DuckDBStore, error) {
	if path != "" {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are not needed; keep DuckDB from reaching the network.
	connStr := path + "?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false"
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &DuckDBStore{
		db:    db,
		name:  table,
		table: `"` + table + `"`,
		limit: queryLimit,
	}
	if err := s.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Backend returns "duckdb".
func (s *DuckDBStore) Backend() string { return "duckdb" }

// CreateTable creates the visits table if it doesn't exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL,
			user_agent TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			page_path TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			time_on_page INTEGER NOT NULL DEFAULT 0,
			scroll_depth INTEGER NOT NULL DEFAULT 0,
			visited_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(visited_at);
		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s(engine);
	`, s.table, indexName(s.name, "visited_at"), indexName(s.name, "engine"))

	for _, stmt := range strings.Split(query, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	logging.Info().Str("table", s.name).Msg("DuckDB visits table created/verified")
	return nil
}

// Insert stores v. DuckDB TIMESTAMP columns hold UTC wall time.
func (s *DuckDBStore) Insert(ctx context.Context, v *models.AIVisit) error {
	if err := prepare(v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	_, err := s.db.ExecContext(ctx, insertQuery(s.table, questionPlaceholder), insertArgs(v)...)
	metrics.RecordStoreQuery(s.Backend(), "insert", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// List returns matching visits newest first.
func (s *DuckDBStore) List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := listQuery(s.table, f, effectiveLimit(f.Limit, s.limit), questionPlaceholder)
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *DuckDBStore) UpdateEngagement(ctx context.Context, id string, timeOnPage, scrollDepth int) error {
	timeOnPage, scrollDepth = models.ClampEngagement(timeOnPage, scrollDepth)
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, err := s.db.ExecContext(ctx, updateEngagementQuery(s.table, questionPlaceholder), timeOnPage, scrollDepth, id)
	metrics.RecordStoreQuery(s.Backend(), "update", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count updated visits: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore removes visits older than t.
func (s *DuckDBStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE visited_at < ?", s.table), t.UTC())
	metrics.RecordStoreQuery(s.Backend(), "delete", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete visits: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted visits: %w", err)
	}
	return n, nil
}

// Ping checks the database handle.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
