// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/aeopulse/internal/models"
)

// MemoryStore is an in-process Store. Visits are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	visits []models.AIVisit
	limit  int
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(queryLimit int) *MemoryStore {
	return &MemoryStore{limit: queryLimit}
}

// Backend returns "memory".
func (s *MemoryStore) Backend() string { return "memory" }

// Insert stores a copy of v.
func (s *MemoryStore) Insert(_ context.Context, v *models.AIVisit) error {
	if err := prepare(v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.visits = append(s.visits, *v)
	return nil
}

// List returns matching visits newest first.
func (s *MemoryStore) List(_ context.Context, f models.VisitFilter) ([]models.AIVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]models.AIVisit, 0)
	for i := range s.visits {
		if f.Matches(&s.visits[i]) {
			out = append(out, s.visits[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VisitedAt.After(out[j].VisitedAt)
	})
	if f.Offset > 0 {
		out = out[min(f.Offset, len(out)):]
	}
	if n := effectiveLimit(f.Limit, s.limit); n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// UpdateEngagement sets the session metrics of the visit with id.
func (s *MemoryStore) UpdateEngagement(_ context.Context, id string, timeOnPage, scrollDepth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i := range s.visits {
		if s.visits[i].ID == id {
			s.visits[i].TimeOnPageSeconds, s.visits[i].ScrollDepth = models.ClampEngagement(timeOnPage, scrollDepth)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteBefore drops visits older than t.
func (s *MemoryStore) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	kept := s.visits[:0]
	var removed int64
	for _, v := range s.visits {
		if v.VisitedAt.Before(t) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	s.visits = kept
	return removed, nil
}

// Ping reports ErrClosed after Close.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close releases the stored visits.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.visits = nil
	return nil
}
