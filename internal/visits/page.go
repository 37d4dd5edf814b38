// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"fmt"

	"github.com/tomtom215/aeopulse/internal/models"
)

// DefaultMaxListRows bounds ListAll when the caller passes no limit.
const DefaultMaxListRows = 200_000

// Lister reads visits page by page.
type Lister interface {
	List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error)
}

// ListAll reads every visit matching f by paging with Offset until a page
// comes back empty. Pages end on the store's own cap, or on a server-side
// row cap such as PostgREST max-rows, so a short page is not taken as the
// end. Reading stops at maxRows and truncated reports that rows were left.
func ListAll(ctx context.Context, l Lister, f models.VisitFilter, maxRows int) (rows []models.AIVisit, truncated bool, err error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxListRows
	}
	f.Offset = 0
	f.Limit = 0

	rows = make([]models.AIVisit, 0)
	for {
		page, err := l.List(ctx, f)
		if err != nil {
			return nil, false, fmt.Errorf("list visits at offset %d: %w", f.Offset, err)
		}
		if len(page) == 0 {
			return rows, false, nil
		}
		if room := maxRows - len(rows); len(page) > room {
			return append(rows, page[:room]...), true, nil
		}
		rows = append(rows, page...)
		f.Offset += len(page)
	}
}
