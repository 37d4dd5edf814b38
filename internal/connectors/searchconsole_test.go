// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aeopulse/internal/config"
)

func TestSearchConsoleClient_Query(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.EscapedPath(), "/sites/https:%2F%2Facme.dev%2F/searchAnalytics/query") {
			t.Errorf("escaped path = %s", r.URL.EscapedPath())
		}
		var req searchQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		dim := req.Dimensions[0]
		mu.Lock()
		seen[dim] = req.RowLimit
		mu.Unlock()

		switch dim {
		case DimensionDate:
			_, _ = w.Write([]byte(`{"rows":[{"keys":["2026-03-01"],"clicks":4,"impressions":100,"ctr":0.04,"position":8.2}]}`))
		case DimensionQuery:
			_, _ = w.Write([]byte(`{"rows":[{"keys":["install acme"],"clicks":3,"impressions":20,"ctr":0.15,"position":2.1}]}`))
		case DimensionPage:
			_, _ = w.Write([]byte(`{"responseAggregationType":"byPage"}`))
		}
	}))
	defer srv.Close()

	client := NewSearchConsoleClient(config.SearchConsoleConfig{
		SiteURL:  "https://acme.dev/",
		BaseURL:  srv.URL,
		RowLimit: 250,
	}, testConnectorsConfig(), srv.Client())

	report, err := client.Query(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(report.Daily) != 1 || report.Daily[0].Keys[0] != "2026-03-01" || report.Daily[0].Position != 8.2 {
		t.Errorf("Daily = %+v", report.Daily)
	}
	if len(report.Queries) != 1 || report.Queries[0].Clicks != 3 {
		t.Errorf("Queries = %+v", report.Queries)
	}
	if len(report.Pages) != 0 {
		t.Errorf("Pages = %+v, want empty", report.Pages)
	}
	mu.Lock()
	defer mu.Unlock()
	if seen[DimensionDate] != 0 || seen[DimensionQuery] != 250 {
		t.Errorf("row limits = %+v", seen)
	}
}
