// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/aeopulse/internal/aggregate"
	"github.com/tomtom215/aeopulse/internal/cache"
	"github.com/tomtom215/aeopulse/internal/connectors"
	"github.com/tomtom215/aeopulse/internal/models"
	"github.com/tomtom215/aeopulse/internal/visits"
)

var (
	testNow     = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	errUpstream = errors.New("upstream unavailable")
)

type fakeTraffic struct {
	calls atomic.Int32
	mu    sync.Mutex
	err   error
}

func (f *fakeTraffic) Name() string { return "ga4" }

func (f *fakeTraffic) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeTraffic) RunReport(_ context.Context, start, _ time.Time) (*models.GA4Report, error) {
	f.calls.Add(1)
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &models.GA4Report{
		Daily: []models.GA4DailyRow{
			{Date: start, Sessions: 200, TotalUsers: 150, PageViews: 400, EngagementRate: 0.5},
		},
	}, nil
}

type fakeSearch struct{ err error }

func (f *fakeSearch) Name() string { return "search_console" }

func (f *fakeSearch) Query(_ context.Context, start, _ time.Time) (*models.SearchReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SearchReport{
		Daily: []models.SearchRow{
			{Keys: []string{start.Format("2006-01-02")}, Clicks: 10, Impressions: 200, Position: 8},
		},
	}, nil
}

type fakeSEO struct{ err error }

func (f *fakeSEO) Name() string { return "semrush" }

func (f *fakeSEO) Report(context.Context) (*models.SEMrushReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SEMrushReport{
		Overview: models.SEMrushOverview{Domain: "example.com", Rank: 1200, OrganicKeywords: 3},
		Keywords: []models.SEMrushKeyword{{Keyword: "aeo", Position: 2, SearchVolume: 100}},
	}, nil
}

type fakeVisits struct {
	visits []models.AIVisit
	err    error
}

func (f *fakeVisits) List(_ context.Context, filter models.VisitFilter) ([]models.AIVisit, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.AIVisit
	for i := range f.visits {
		if filter.Matches(&f.visits[i]) {
			out = append(out, f.visits[i])
		}
	}
	return out[min(filter.Offset, len(out)):], nil
}

func sampleVisits() []models.AIVisit {
	return []models.AIVisit{
		{ID: "1", Engine: "ChatGPT", SourceType: models.SourceCrawler, PagePath: "/", VisitedAt: testNow.Add(-time.Hour)},
		{ID: "2", Engine: "Perplexity", SourceType: models.SourceCrawler, PagePath: "/guides", VisitedAt: testNow.Add(-2 * time.Hour)},
		{ID: "3", Engine: "ChatGPT", SourceType: models.SourceReferral, PagePath: "/", VisitedAt: testNow.Add(-3 * time.Hour)},
	}
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	s := NewService(opts)
	s.now = func() time.Time { return testNow }
	t.Cleanup(s.Close)
	return s
}

func TestStats_AllSectionsLive(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Options{
		Sources: &connectors.Set{
			Traffic: &fakeTraffic{},
			Search:  &fakeSearch{},
			SEO:     &fakeSEO{},
		},
		Visits:    &fakeVisits{visits: sampleVisits()},
		Snapshots: cache.NewMemorySnapshotStore(),
	})

	stats, err := s.Stats(context.Background(), "7d")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	for _, section := range []string{models.SectionTraffic, models.SectionSearch, models.SectionSEO, models.SectionAIVisits} {
		if got := stats.Sections[section]; got != models.SectionOK {
			t.Errorf("Sections[%s] = %q, want ok", section, got)
		}
	}
	if len(stats.Degraded) != 0 {
		t.Errorf("Degraded = %v, want none", stats.Degraded)
	}
	if !stats.Traffic.Available || stats.Traffic.Sessions != 200 {
		t.Errorf("Traffic = %+v", stats.Traffic)
	}
	if stats.Search.Clicks != 10 {
		t.Errorf("Search.Clicks = %d, want 10", stats.Search.Clicks)
	}
	if stats.SEO.Domain != "example.com" {
		t.Errorf("SEO.Domain = %q", stats.SEO.Domain)
	}
	if stats.AIVisits.Total != 3 || stats.AIVisits.DistinctCrawlers != 2 {
		t.Errorf("AIVisits = %+v", stats.AIVisits)
	}
	if stats.AEO.Score <= 0 || stats.AEO.Grade == "" {
		t.Errorf("AEO = %+v", stats.AEO)
	}
	if stats.Range != "7d" || !stats.GeneratedAt.Equal(testNow) {
		t.Errorf("Range/GeneratedAt = %q/%v", stats.Range, stats.GeneratedAt)
	}
	if got := stats.End.Sub(stats.Start); got != 6*24*time.Hour {
		t.Errorf("End-Start = %v, want 6 days", got)
	}
}

func TestStats_AIVisitsReadPastStoreQueryLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := visits.NewMemoryStore(3)
	for i := range 5 {
		v := &models.AIVisit{Engine: "ChatGPT", SourceType: models.SourceCrawler, PagePath: "/", VisitedAt: testNow.Add(-time.Duration(i+1) * time.Hour)}
		if err := store.Insert(ctx, v); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	stats, err := newTestService(t, Options{Visits: store}).Stats(ctx, "7d")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.AIVisits.Total != 5 || stats.AIVisits.Crawler != 5 || stats.AIVisits.Truncated {
		t.Errorf("AIVisits = total %d crawler %d truncated %v; want 5, 5, false",
			stats.AIVisits.Total, stats.AIVisits.Crawler, stats.AIVisits.Truncated)
	}

	bounded, err := newTestService(t, Options{Visits: store, MaxVisitRows: 4}).Stats(ctx, "7d")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if !bounded.AIVisits.Truncated || bounded.AIVisits.Total != 4 {
		t.Errorf("bounded AIVisits = total %d truncated %v; want 4, true", bounded.AIVisits.Total, bounded.AIVisits.Truncated)
	}
}

func TestStats_UnknownRange(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Options{})
	if _, err := s.Stats(context.Background(), "365d"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestStats_UnconfiguredSectionsAreUnavailable(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Options{})
	stats, err := s.Stats(context.Background(), "28d")
	if err != nil {
		t.Fatal(err)
	}

	for section, status := range stats.Sections {
		if status != models.SectionUnavailable {
			t.Errorf("Sections[%s] = %q, want unavailable", section, status)
		}
	}
	if len(stats.Sections) != 4 {
		t.Errorf("len(Sections) = %d, want 4", len(stats.Sections))
	}
	if len(stats.Degraded) != 0 {
		t.Errorf("unavailable sections must not be listed as degraded: %v", stats.Degraded)
	}
	if stats.AEO.Score != 0 {
		t.Errorf("AEO.Score = %d, want 0", stats.AEO.Score)
	}
}

func TestStats_FailureDegradesOnlyThatSection(t *testing.T) {
	t.Parallel()

	s := newTestService(t, Options{
		Sources: &connectors.Set{
			Traffic: &fakeTraffic{err: errUpstream},
			SEO:     &fakeSEO{},
		},
		Visits: &fakeVisits{err: errUpstream},
	})

	stats, err := s.Stats(context.Background(), "28d")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	want := map[string]models.SectionStatus{
		models.SectionTraffic:  models.SectionDegraded,
		models.SectionSearch:   models.SectionUnavailable,
		models.SectionSEO:      models.SectionOK,
		models.SectionAIVisits: models.SectionDegraded,
	}
	for section, status := range want {
		if got := stats.Sections[section]; got != status {
			t.Errorf("Sections[%s] = %q, want %q", section, got, status)
		}
	}
	if len(stats.Degraded) != 2 {
		t.Errorf("Degraded = %v, want traffic and ai_visits", stats.Degraded)
	}
	if stats.Traffic.Available {
		t.Error("degraded traffic should be the placeholder")
	}
	if !stats.SEO.Available {
		t.Error("SEO should still be live")
	}
}

func TestStats_StaleFallback(t *testing.T) {
	t.Parallel()

	traffic := &fakeTraffic{}
	s := newTestService(t, Options{
		Sources:   &connectors.Set{Traffic: traffic},
		Snapshots: cache.NewMemorySnapshotStore(),
	})
	ctx := context.Background()

	first, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	if first.Sections[models.SectionTraffic] != models.SectionOK {
		t.Fatalf("first build traffic = %q", first.Sections[models.SectionTraffic])
	}

	traffic.setErr(errUpstream)
	second, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	if got := second.Sections[models.SectionTraffic]; got != models.SectionStale {
		t.Errorf("traffic = %q, want stale", got)
	}
	if second.Traffic.Sessions != first.Traffic.Sessions {
		t.Errorf("stale Sessions = %d, want %d", second.Traffic.Sessions, first.Traffic.Sessions)
	}
	if len(second.Degraded) != 1 || second.Degraded[0] != models.SectionTraffic {
		t.Errorf("Degraded = %v", second.Degraded)
	}

	// Snapshots are per range.
	other, err := s.Stats(ctx, "7d")
	if err != nil {
		t.Fatal(err)
	}
	if got := other.Sections[models.SectionTraffic]; got != models.SectionDegraded {
		t.Errorf("7d traffic = %q, want degraded", got)
	}
}

func TestStats_Cache(t *testing.T) {
	t.Parallel()

	traffic := &fakeTraffic{}
	s := newTestService(t, Options{
		Sources:  &connectors.Set{Traffic: traffic},
		CacheTTL: time.Minute,
	})
	ctx := context.Background()

	first, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second call should be served from cache")
	}
	// Current and previous period per build.
	if got := traffic.calls.Load(); got != 2 {
		t.Errorf("RunReport calls = %d, want 2", got)
	}

	if _, err := s.Stats(ctx, "7d"); err != nil {
		t.Fatal(err)
	}
	if got := traffic.calls.Load(); got != 4 {
		t.Errorf("RunReport calls after new range = %d, want 4", got)
	}

	s.Invalidate()
	if _, err := s.Stats(ctx, "28d"); err != nil {
		t.Fatal(err)
	}
	if got := traffic.calls.Load(); got != 6 {
		t.Errorf("RunReport calls after invalidate = %d, want 6", got)
	}
}

func TestRefresh_ReplacesCachedCopy(t *testing.T) {
	t.Parallel()

	traffic := &fakeTraffic{}
	s := newTestService(t, Options{
		Sources:  &connectors.Set{Traffic: traffic},
		CacheTTL: time.Hour,
	})
	ctx := context.Background()

	cached, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	refreshed, err := s.Refresh(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	if refreshed == cached {
		t.Fatal("Refresh() returned the cached copy")
	}
	if got := traffic.calls.Load(); got != 4 {
		t.Errorf("RunReport calls = %d, want 4", got)
	}
	again, err := s.Stats(ctx, "28d")
	if err != nil {
		t.Fatal(err)
	}
	if again != refreshed {
		t.Error("Stats() should serve the refreshed copy")
	}

	if _, err := s.Refresh(ctx, "1y"); err == nil {
		t.Error("Refresh() accepted an unknown range")
	}
}

func TestFetchPair_PreviousFailureFailsSection(t *testing.T) {
	t.Parallel()

	period, err := aggregate.ParseRange("7d", testNow)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = fetchPair(context.Background(), period, func(_ context.Context, p aggregate.Period) (int, error) {
		if p.End.Equal(period.Start) {
			return 0, errUpstream
		}
		return 1, nil
	})
	if !errors.Is(err, errUpstream) {
		t.Errorf("fetchPair() error = %v, want errUpstream", err)
	}
}
