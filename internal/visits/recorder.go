// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"context"
	"fmt"

	"github.com/tomtom215/aeopulse/internal/detection"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
)

// Hit is one page view to classify and possibly store.
type Hit struct {
	PagePath    string
	UserAgent   string
	Referrer    string
	LandingURL  string
	SessionID   string
	TimeOnPage  int
	ScrollDepth int
}

// Outcome reports what Track did with a hit.
type Outcome struct {
	Tracked   bool
	ID        string
	Detection detection.Detection
}

// Recorder classifies hits and stores the AI ones. Organic hits are
// stored only when storeOrganic is set.
type Recorder struct {
	store        Store
	storeOrganic bool
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store Store, storeOrganic bool) *Recorder {
	return &Recorder{store: store, storeOrganic: storeOrganic}
}

// Track classifies h and stores it when it qualifies. The Outcome is
// valid even when err is non-nil: classification always succeeds.
func (r *Recorder) Track(ctx context.Context, h Hit) (Outcome, error) {
	d := detection.ClassifyRequest(h.UserAgent, h.Referrer, h.LandingURL)
	out := Outcome{Detection: d}

	if !d.IsAI() && !r.storeOrganic {
		metrics.RecordVisit(d.Engine, string(d.SourceType), false)
		return out, nil
	}

	v := &models.AIVisit{
		Engine:            d.Engine,
		SourceType:        d.SourceType,
		UserAgent:         h.UserAgent,
		Referrer:          h.Referrer,
		PagePath:          h.PagePath,
		SessionID:         h.SessionID,
		TimeOnPageSeconds: h.TimeOnPage,
		ScrollDepth:       h.ScrollDepth,
	}
	if err := r.store.Insert(ctx, v); err != nil {
		metrics.RecordVisit(d.Engine, string(d.SourceType), false)
		return out, fmt.Errorf("store visit: %w", err)
	}

	metrics.RecordVisit(d.Engine, string(d.SourceType), true)
	out.Tracked = true
	out.ID = v.ID
	return out, nil
}

// Engage attaches the beacon's session metrics to the visit the server
// already stored as id. h is classified for the response only. When no
// visit has that id the error wraps ErrNotFound so the caller can fall
// back to Track.
func (r *Recorder) Engage(ctx context.Context, id string, h Hit) (Outcome, error) {
	out := Outcome{Detection: detection.ClassifyRequest(h.UserAgent, h.Referrer, h.LandingURL)}
	if err := r.store.UpdateEngagement(ctx, id, h.TimeOnPage, h.ScrollDepth); err != nil {
		return out, fmt.Errorf("update visit engagement: %w", err)
	}
	out.Tracked = true
	out.ID = id
	return out, nil
}
