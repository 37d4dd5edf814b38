// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/models"
)

// fakePostgREST implements the subset of PostgREST the store uses.
type fakePostgREST struct {
	t    *testing.T
	mu   sync.Mutex
	rows []models.AIVisit
	// maxRows mimics the server-side max-rows cap; zero means none.
	maxRows int
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/rest/v1/ai_visits" {
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
		return
	}
	if r.Header.Get("apikey") != "service-key" || r.Header.Get("Authorization") != "Bearer service-key" {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		if r.Header.Get("Prefer") != "return=minimal" {
			f.t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		var v models.AIVisit
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, v)
		w.WriteHeader(http.StatusCreated)

	case http.MethodGet:
		out := f.filter(r)
		sort.Slice(out, func(i, j int) bool {
			if !out[i].VisitedAt.Equal(out[j].VisitedAt) {
				return out[i].VisitedAt.After(out[j].VisitedAt)
			}
			return out[i].ID > out[j].ID
		})
		if off, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			out = out[min(off, len(out)):]
		}
		if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim < len(out) {
			out = out[:lim]
		}
		if f.maxRows > 0 && len(out) > f.maxRows {
			out = out[:f.maxRows]
		}
		if out == nil {
			out = []models.AIVisit{}
		}
		_ = json.NewEncoder(w).Encode(out)

	case http.MethodPatch:
		if r.Header.Get("Prefer") != "return=representation" {
			f.t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		var patch struct {
			TimeOnPage  int `json:"time_on_page"`
			ScrollDepth int `json:"scroll_depth"`
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		updated := []map[string]string{}
		for i := range f.rows {
			if "eq."+f.rows[i].ID == r.URL.Query().Get("id") {
				f.rows[i].TimeOnPageSeconds = patch.TimeOnPage
				f.rows[i].ScrollDepth = patch.ScrollDepth
				updated = append(updated, map[string]string{"id": f.rows[i].ID})
			}
		}
		_ = json.NewEncoder(w).Encode(updated)

	case http.MethodDelete:
		matched := f.filter(r)
		remove := make(map[string]bool, len(matched))
		for _, v := range matched {
			remove[v.ID] = true
		}
		kept := f.rows[:0]
		for _, v := range f.rows {
			if !remove[v.ID] {
				kept = append(kept, v)
			}
		}
		f.rows = kept
		w.Header().Set("Content-Range", fmt.Sprintf("*/%d", len(matched)))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakePostgREST) filter(r *http.Request) []models.AIVisit {
	q := r.URL.Query()
	var out []models.AIVisit
	for _, v := range f.rows {
		if matchesPostgREST(v, q["visited_at"], q.Get("engine"), q.Get("source_type")) {
			out = append(out, v)
		}
	}
	return out
}

func matchesPostgREST(v models.AIVisit, times []string, engine, source string) bool {
	for _, cond := range times {
		op, val, _ := strings.Cut(cond, ".")
		ts, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return false
		}
		switch op {
		case "gte":
			if v.VisitedAt.Before(ts) {
				return false
			}
		case "lt":
			if !v.VisitedAt.Before(ts) {
				return false
			}
		}
	}
	if engine != "" && "eq."+v.Engine != engine {
		return false
	}
	if source != "" && "eq."+string(v.SourceType) != source {
		return false
	}
	return true
}

func newTestSupabaseStore(t *testing.T) (*SupabaseStore, *httptest.Server) {
	t.Helper()
	return newTestSupabaseStoreWith(t, &fakePostgREST{t: t})
}

func newTestSupabaseStoreWith(t *testing.T, fake *fakePostgREST) (*SupabaseStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	store := NewSupabaseStore(config.SupabaseConfig{URL: srv.URL + "/", ServiceKey: "service-key"}, "ai_visits", 100, srv.Client())
	return store, srv
}

func TestSupabaseStore_Contract(t *testing.T) {
	t.Parallel()

	store, _ := newTestSupabaseStore(t)
	defer store.Close()
	runStoreContract(t, store)
}

func TestSupabaseStore_ListAllPagesPastServerCap(t *testing.T) {
	t.Parallel()

	store, _ := newTestSupabaseStoreWith(t, &fakePostgREST{t: t, maxRows: 2})
	defer store.Close()
	ctx := context.Background()
	for i := range 5 {
		v := &models.AIVisit{Engine: "ChatGPT", SourceType: models.SourceCrawler, PagePath: "/", VisitedAt: baseTime.Add(-time.Duration(i) * time.Hour)}
		if err := store.Insert(ctx, v); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	single, err := store.List(ctx, models.VisitFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(single) != 2 {
		t.Fatalf("single List() = %d rows, want the server cap of 2", len(single))
	}

	all, truncated, err := ListAll(ctx, store, models.VisitFilter{}, 100)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 5 || truncated {
		t.Errorf("ListAll() = %d rows, truncated=%v; want 5, false", len(all), truncated)
	}
}

func TestSupabaseStore_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakePostgREST{t: t})
	defer srv.Close()

	store := NewSupabaseStore(config.SupabaseConfig{URL: srv.URL, ServiceKey: "wrong"}, "ai_visits", 0, srv.Client())
	err := store.Insert(context.Background(), &models.AIVisit{SourceType: models.SourceCrawler, PagePath: "/"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Insert() error = %v, want HTTP 401", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail with a bad key")
	}
}

func TestFilterParams(t *testing.T) {
	t.Parallel()

	p := filterParams(models.VisitFilter{
		Start:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		SourceType: models.SourceCrawler,
	}, 25)

	if got := p["visited_at"]; len(got) != 2 || got[0] != "gte.2026-03-01T00:00:00Z" || got[1] != "lt.2026-03-08T00:00:00Z" {
		t.Errorf("visited_at = %v", got)
	}
	if p.Get("source_type") != "eq.crawler" || p.Get("engine") != "" {
		t.Errorf("params = %v", p)
	}
	if p.Get("order") != "visited_at.desc,id.desc" || p.Get("limit") != "25" {
		t.Errorf("order/limit = %q/%q", p.Get("order"), p.Get("limit"))
	}
}

func TestParseContentRangeTotal(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"*/12":  12,
		"0-9/4": 4,
		"*/*":   0,
		"":      0,
	}
	for in, want := range tests {
		if got := parseContentRangeTotal(in); got != want {
			t.Errorf("parseContentRangeTotal(%q) = %d, want %d", in, got, want)
		}
	}
}
