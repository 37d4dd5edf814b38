// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/aeopulse/internal/metrics"
)

// purgeTimeout bounds one DeleteBefore call.
const purgeTimeout = 5 * time.Minute

// VisitPurger deletes old visits.
type VisitPurger interface {
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
	Backend() string
}

// RetentionConfig controls how long visits are kept.
type RetentionConfig struct {
	// RetentionDays is the age after which visits are deleted.
	RetentionDays int
	// Interval is how often the purge runs. Default: 24h
	Interval time.Duration
}

// RetentionService purges visits older than the retention window, once at
// startup and then on every interval.
type RetentionService struct {
	store  VisitPurger
	config RetentionConfig
	logger zerolog.Logger
	now    func() time.Time
	name   string
}

// NewRetentionService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewRetentionService(store VisitPurger, cfg RetentionConfig, logger zerolog.Logger) *RetentionService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &RetentionService{
		store:  store,
		config: cfg,
		logger: logger.With().Str("service", "visit-retention").Logger(),
		now:    time.Now,
		name:   "visit-retention",
	}
}

// Serve implements suture.Service. Purge failures are logged and retried
// on the next tick rather than restarting the service.
func (s *RetentionService) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("retention_days", s.config.RetentionDays).
		Dur("interval", s.config.Interval).
		Str("backend", s.store.Backend()).
		Msg("visit retention starting")

	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("visit retention shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *RetentionService) runOnce(ctx context.Context) {
	if _, err := s.Purge(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("visit purge failed")
	}
}

// Purge deletes visits older than the retention window and returns the
// count removed.
func (s *RetentionService) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.config.RetentionDays)

	purgeCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := s.store.DeleteBefore(purgeCtx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete visits before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.VisitsPurged.Add(float64(n))
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("old visits purged")
	}
	return n, nil
}

// String names the service in supervisor logs.
func (s *RetentionService) String() string {
	return s.name
}
