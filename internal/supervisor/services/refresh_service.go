// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/aeopulse/internal/models"
)

// StatsRefresher rebuilds a dashboard range.
type StatsRefresher interface {
	Refresh(ctx context.Context, rangeName string) (*models.Stats, error)
}

// RefreshService keeps the dashboard cache and last-known-good snapshots
// warm by rebuilding every range on an interval.
type RefreshService struct {
	dashboard StatsRefresher
	ranges    []string
	interval  time.Duration
	logger    zerolog.Logger
	name      string
}

// NewRefreshService creates the service. A non-positive interval uses 5m.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewRefreshService(dashboard StatsRefresher, ranges []string, interval time.Duration, logger zerolog.Logger) *RefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshService{
		dashboard: dashboard,
		ranges:    ranges,
		interval:  interval,
		logger:    logger.With().Str("service", "dashboard-refresh").Logger(),
		name:      "dashboard-refresh",
	}
}

// Serve implements suture.Service. The first refresh runs immediately.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Strs("ranges", s.ranges).Dur("interval", s.interval).Msg("dashboard refresh starting")

	s.RefreshAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

// RefreshAll rebuilds each range in turn and returns how many succeeded.
func (s *RefreshService) RefreshAll(ctx context.Context) int {
	ok := 0
	for _, name := range s.ranges {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		stats, err := s.dashboard.Refresh(ctx, name)
		if err != nil {
			s.logger.Warn().Err(err).Str("range", name).Msg("dashboard refresh failed")
			continue
		}
		ok++
		s.logger.Debug().
			Str("range", name).
			Strs("degraded", stats.Degraded).
			Dur("duration", time.Since(start)).
			Msg("dashboard refreshed")
	}
	return ok
}

// String names the service in supervisor logs.
func (s *RefreshService) String() string {
	return s.name
}
