// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

//go:build integration

package visits

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomtom215/aeopulse/internal/models"
)

func TestDuckDBStore_Contract(t *testing.T) {
	store, err := NewDuckDBStore(context.Background(), "", "ai_visits", 100)
	if err != nil {
		t.Fatalf("NewDuckDBStore() error = %v", err)
	}
	defer store.Close()

	runStoreContract(t, store)
}

func TestDuckDBStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "visits.duckdb")

	store, err := NewDuckDBStore(ctx, path, "ai_visits", 0)
	if err != nil {
		t.Fatalf("NewDuckDBStore() error = %v", err)
	}
	if err := store.Insert(ctx, &models.AIVisit{Engine: "Claude", SourceType: models.SourceCrawler, PagePath: "/"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewDuckDBStore(ctx, path, "ai_visits", 0)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.List(ctx, models.VisitFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].Engine != "Claude" {
		t.Errorf("after reopen got %+v", got)
	}
}
