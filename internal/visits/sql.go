// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"fmt"
	"strings"

	"github.com/tomtom215/aeopulse/internal/models"
)

// visitColumns is the column order used by every SQL backend.
const visitColumns = "id, engine, source_type, user_agent, referrer, page_path, session_id, time_on_page, scroll_depth, visited_at"

// placeholderFunc renders the n-th (1-based) bind parameter.
type placeholderFunc func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// insertQuery builds the INSERT for table.
func insertQuery(table string, ph placeholderFunc) string {
	marks := make([]string, 10)
	for i := range marks {
		marks[i] = ph(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, visitColumns, strings.Join(marks, ", "))
}

func insertArgs(v *models.AIVisit) []any {
	return []any{
		v.ID,
		v.Engine,
		string(v.SourceType),
		v.UserAgent,
		v.Referrer,
		v.PagePath,
		v.SessionID,
		v.TimeOnPageSeconds,
		v.ScrollDepth,
		v.VisitedAt,
	}
}

// updateEngagementQuery builds the UPDATE for a visit's session metrics.
func updateEngagementQuery(table string, ph placeholderFunc) string {
	return fmt.Sprintf("UPDATE %s SET time_on_page = %s, scroll_depth = %s WHERE id = %s", table, ph(1), ph(2), ph(3))
}

// listQuery builds a filtered SELECT ordered newest first. The id tiebreak
// keeps OFFSET pages stable.
func listQuery(table string, f models.VisitFilter, limit int, ph placeholderFunc) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, ph(len(args))))
	}
	if !f.Start.IsZero() {
		add("visited_at >= %s", f.Start.UTC())
	}
	if !f.End.IsZero() {
		add("visited_at < %s", f.End.UTC())
	}
	if f.Engine != "" {
		add("engine = %s", f.Engine)
	}
	if f.SourceType != "" {
		add("source_type = %s", string(f.SourceType))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", visitColumns, table)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY visited_at DESC, id DESC")
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if f.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", f.Offset)
	}
	return b.String(), args
}

// rowScanner is satisfied by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(r rowScanner) (models.AIVisit, error) {
	var (
		v          models.AIVisit
		sourceType string
	)
	err := r.Scan(
		&v.ID,
		&v.Engine,
		&sourceType,
		&v.UserAgent,
		&v.Referrer,
		&v.PagePath,
		&v.SessionID,
		&v.TimeOnPageSeconds,
		&v.ScrollDepth,
		&v.VisitedAt,
	)
	v.SourceType = models.SourceType(sourceType)
	v.VisitedAt = v.VisitedAt.UTC()
	return v, err
}

func indexName(table, column string) string {
	return "idx_" + table + "_" + column
}
