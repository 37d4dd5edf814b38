// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

/*
Package dashboard assembles the admin dashboard view model.

Service.Stats fetches the four sections (traffic, search, seo, ai_visits)
concurrently. Each section degrades on its own:

	live fetch ok          -> "ok", result saved as last-known-good
	live fetch failed      -> last-known-good copy, "stale"
	no last-known-good     -> zero placeholder, "degraded"
	connector not set up   -> zero placeholder, "unavailable"

A failing section never fails the whole response. Complete results are
cached in memory for the configured TTL; results with degraded sections
are cached only briefly so a recovering upstream is picked up quickly.
*/
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/aeopulse/internal/aggregate"
	"github.com/tomtom215/aeopulse/internal/cache"
	"github.com/tomtom215/aeopulse/internal/connectors"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
	"github.com/tomtom215/aeopulse/internal/visits"
)

const degradedCacheTTL = 30 * time.Second

// VisitLister reads stored AI visits.
type VisitLister interface {
	List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error)
}

// Options configures a Service.
type Options struct {
	// Sources holds the external connectors. Nil fields are unavailable.
	Sources *connectors.Set
	// Visits is the AI visit store. Nil marks the section unavailable.
	Visits VisitLister
	// Snapshots keeps last-known-good sections. Nil disables the stale fallback.
	Snapshots cache.SnapshotStore
	// CacheTTL is how long complete results are cached. Zero disables caching.
	CacheTTL time.Duration
	// TopN bounds the top lists in every section.
	TopN int
	// MaxVisitRows bounds how many visits one period reads. Zero uses
	// visits.DefaultMaxListRows.
	MaxVisitRows int
}

// Service builds dashboard stats.
type Service struct {
	sources   *connectors.Set
	visits    VisitLister
	snapshots cache.SnapshotStore
	cache     *cache.Cache[*models.Stats]
	cacheTTL  time.Duration
	topN      int
	maxVisits int
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a dashboard service. Close releases its cache.
func NewService(opts Options) *Service {
	sources := opts.Sources
	if sources == nil {
		sources = &connectors.Set{}
	}
	s := &Service{
		sources:   sources,
		visits:    opts.Visits,
		snapshots: opts.Snapshots,
		cacheTTL:  opts.CacheTTL,
		topN:      opts.TopN,
		maxVisits: opts.MaxVisitRows,
		now:       time.Now,
		log:       logging.WithComponent("dashboard"),
	}
	if s.maxVisits <= 0 {
		s.maxVisits = visits.DefaultMaxListRows
	}
	if opts.CacheTTL > 0 {
		s.cache = cache.New[*models.Stats]("dashboard", opts.CacheTTL)
	}
	return s
}

// Close stops the cache cleanup goroutine.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Invalidate drops every cached result.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Stats returns the dashboard for rangeName (7d, 28d or 90d). The only
// error is an unknown range; upstream failures are reported per section.
func (s *Service) Stats(ctx context.Context, rangeName string) (*models.Stats, error) {
	now := s.now()
	period, err := aggregate.ParseRange(rangeName, now)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(statsKey(rangeName)); ok {
			return cached, nil
		}
	}
	return s.compute(ctx, rangeName, period, now), nil
}

// Refresh rebuilds rangeName, bypassing and then replacing the cached copy.
func (s *Service) Refresh(ctx context.Context, rangeName string) (*models.Stats, error) {
	now := s.now()
	period, err := aggregate.ParseRange(rangeName, now)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, rangeName, period, now), nil
}

func statsKey(rangeName string) string {
	return cache.GenerateKey("stats", rangeName)
}

func (s *Service) compute(ctx context.Context, rangeName string, period aggregate.Period, now time.Time) *models.Stats {
	key := statsKey(rangeName)
	start := time.Now()
	stats := s.build(ctx, rangeName, period, now)
	metrics.DashboardBuildDuration.Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if len(stats.Degraded) == 0 {
			s.cache.Set(key, stats)
		} else {
			s.cache.SetWithTTL(key, stats, min(degradedCacheTTL, s.cacheTTL))
		}
	}
	return stats
}

func (s *Service) build(ctx context.Context, rangeName string, period aggregate.Period, now time.Time) *models.Stats {
	stats := &models.Stats{
		Range:       rangeName,
		Start:       period.Start,
		End:         period.LastDay(),
		Sections:    make(map[string]models.SectionStatus, 4),
		Degraded:    []string{},
		GeneratedAt: now.UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(section string, status models.SectionStatus) {
		mu.Lock()
		defer mu.Unlock()
		stats.Sections[section] = status
		if status == models.SectionStale || status == models.SectionDegraded {
			stats.Degraded = append(stats.Degraded, section)
		}
		metrics.DashboardSectionStatus.WithLabelValues(section, string(status)).Inc()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		summary, status := runSection(ctx, s, models.SectionTraffic, rangeName, s.sources.Traffic != nil,
			func(ctx context.Context) (models.TrafficSummary, error) { return s.traffic(ctx, period) })
		stats.Traffic = summary
		record(models.SectionTraffic, status)
	}()
	go func() {
		defer wg.Done()
		summary, status := runSection(ctx, s, models.SectionSearch, rangeName, s.sources.Search != nil,
			func(ctx context.Context) (models.SearchSummary, error) { return s.search(ctx, period) })
		stats.Search = summary
		record(models.SectionSearch, status)
	}()
	go func() {
		defer wg.Done()
		// SEMrush reports are point-in-time, so one snapshot serves every range.
		summary, status := runSection(ctx, s, models.SectionSEO, "current", s.sources.SEO != nil, s.seo)
		stats.SEO = summary
		record(models.SectionSEO, status)
	}()
	go func() {
		defer wg.Done()
		summary, status := runSection(ctx, s, models.SectionAIVisits, rangeName, s.visits != nil,
			func(ctx context.Context) (models.AIVisitSummary, error) { return s.aiVisits(ctx, period) })
		stats.AIVisits = summary
		record(models.SectionAIVisits, status)
	}()
	wg.Wait()

	stats.AEO = aggregate.AEOScore(stats.AIVisits, stats.Search, stats.Traffic)
	return stats
}

// runSection applies the ok/stale/degraded/unavailable policy to one section.
func runSection[T any](ctx context.Context, s *Service, section, variant string, configured bool,
	fetch func(context.Context) (T, error)) (T, models.SectionStatus) {
	var zero T
	if !configured {
		return zero, models.SectionUnavailable
	}

	snapshotKey := section + ":" + variant
	value, err := fetch(ctx)
	if err == nil {
		if s.snapshots != nil {
			if serr := s.snapshots.Save(ctx, snapshotKey, value); serr != nil {
				s.log.Warn().Err(serr).Str("section", section).Msg("Failed to save last-known-good snapshot")
			}
		}
		return value, models.SectionOK
	}

	s.log.Warn().Err(err).Str("section", section).Str("range", variant).Msg("Section fetch failed")

	if s.snapshots != nil {
		var last T
		savedAt, ok, lerr := s.snapshots.Load(ctx, snapshotKey, &last)
		switch {
		case lerr != nil:
			s.log.Warn().Err(lerr).Str("section", section).Msg("Failed to load last-known-good snapshot")
		case ok:
			s.log.Info().Str("section", section).Time("saved_at", savedAt).Msg("Serving stale section")
			return last, models.SectionStale
		}
	}
	return zero, models.SectionDegraded
}

// fetchPair runs the current and previous period fetches concurrently.
// Either failing fails the section.
func fetchPair[T any](ctx context.Context, period aggregate.Period,
	fetch func(ctx context.Context, p aggregate.Period) (T, error)) (cur, prev T, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		cur, ferr = fetch(gctx, period)
		if ferr != nil {
			return fmt.Errorf("current period: %w", ferr)
		}
		return nil
	})
	g.Go(func() error {
		var ferr error
		prev, ferr = fetch(gctx, period.Previous())
		if ferr != nil {
			return fmt.Errorf("previous period: %w", ferr)
		}
		return nil
	})
	err = g.Wait()
	return cur, prev, err
}

func (s *Service) traffic(ctx context.Context, period aggregate.Period) (models.TrafficSummary, error) {
	src := s.sources.Traffic
	cur, prev, err := fetchPair(ctx, period, func(ctx context.Context, p aggregate.Period) (*models.GA4Report, error) {
		return src.RunReport(ctx, p.Start, p.LastDay())
	})
	if err != nil {
		return models.TrafficSummary{}, fmt.Errorf("%s: %w", src.Name(), err)
	}
	return aggregate.TrafficSummary(cur, prev, period, s.topN), nil
}

func (s *Service) search(ctx context.Context, period aggregate.Period) (models.SearchSummary, error) {
	src := s.sources.Search
	cur, prev, err := fetchPair(ctx, period, func(ctx context.Context, p aggregate.Period) (*models.SearchReport, error) {
		return src.Query(ctx, p.Start, p.LastDay())
	})
	if err != nil {
		return models.SearchSummary{}, fmt.Errorf("%s: %w", src.Name(), err)
	}
	return aggregate.SearchSummary(cur, prev, period, s.topN), nil
}

func (s *Service) seo(ctx context.Context) (models.SEOSummary, error) {
	src := s.sources.SEO
	report, err := src.Report(ctx)
	if err != nil {
		return models.SEOSummary{}, fmt.Errorf("%s: %w", src.Name(), err)
	}
	return aggregate.SEOSummary(report, s.topN), nil
}

type visitPage struct {
	rows      []models.AIVisit
	truncated bool
}

func (s *Service) aiVisits(ctx context.Context, period aggregate.Period) (models.AIVisitSummary, error) {
	cur, prev, err := fetchPair(ctx, period, func(ctx context.Context, p aggregate.Period) (visitPage, error) {
		rows, truncated, err := visits.ListAll(ctx, s.visits, models.VisitFilter{Start: p.Start, End: p.End}, s.maxVisits)
		return visitPage{rows: rows, truncated: truncated}, err
	})
	if err != nil {
		return models.AIVisitSummary{}, fmt.Errorf("visit store: %w", err)
	}
	summary := aggregate.AIVisitSummary(cur.rows, prev.rows, period, s.topN)
	if cur.truncated || prev.truncated {
		summary.Truncated = true
		s.log.Warn().Int("max_rows", s.maxVisits).Str("start", period.Start.Format(aggregate.DateLayout)).
			Msg("AI visit counts truncated at the row bound")
	}
	return summary, nil
}
