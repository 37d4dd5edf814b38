// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

//go:build integration

package visits

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/aeopulse/internal/testinfra"
)

func TestPostgresStore_Contract(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	defer testinfra.CleanupContainer(t, context.Background(), pg)

	store, err := NewPostgresStore(ctx, pg.DSN, "ai_visits", 100)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	defer store.Close()

	// Schema creation must be idempotent.
	if err := store.CreateTable(ctx); err != nil {
		t.Fatalf("second CreateTable() error = %v", err)
	}

	runStoreContract(t, store)
}
