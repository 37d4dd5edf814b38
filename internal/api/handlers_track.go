// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/aeopulse/internal/models"
	"github.com/tomtom215/aeopulse/internal/visits"
)

// TrackRequest is the body of POST /api/track. UserAgent falls back to
// the request header. VisitID is set by pages whose visit the server
// already recorded; the report then updates that visit's engagement.
type TrackRequest struct {
	VisitID     string `json:"visit_id,omitempty" validate:"omitempty,uuid"`
	PagePath    string `json:"page_path" validate:"required,pagepath,max=1024"`
	UserAgent   string `json:"user_agent,omitempty" validate:"max=1024"`
	Referrer    string `json:"referrer,omitempty" validate:"max=2048"`
	LandingURL  string `json:"landing_url,omitempty" validate:"max=2048"`
	SessionID   string `json:"session_id,omitempty" validate:"max=128"`
	TimeOnPage  int    `json:"time_on_page,omitempty" validate:"gte=0,lte=86400"`
	ScrollDepth int    `json:"scroll_depth,omitempty" validate:"gte=0,lte=100"`
}

// Track classifies a visit reported by the page beacon and stores it when
// it is an AI visit. Organic visits are acknowledged with tracked=false.
// A report carrying a known visit_id updates that visit instead of adding
// a second row.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	hit := visits.Hit{
		PagePath:    req.PagePath,
		UserAgent:   req.UserAgent,
		Referrer:    req.Referrer,
		LandingURL:  req.LandingURL,
		SessionID:   req.SessionID,
		TimeOnPage:  req.TimeOnPage,
		ScrollDepth: req.ScrollDepth,
	}

	var (
		out visits.Outcome
		err error
	)
	if req.VisitID != "" {
		out, err = h.Tracker.Engage(r.Context(), req.VisitID, hit)
		if errors.Is(err, visits.ErrNotFound) {
			// Purged or never stored: record the report as a fresh hit.
			out, err = h.Tracker.Track(r.Context(), hit)
		}
	} else {
		out, err = h.Tracker.Track(r.Context(), hit)
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record visit", err)
		return
	}

	respondSuccess(w, models.TrackVisitResponse{
		Tracked:    out.Tracked,
		ID:         out.ID,
		Engine:     out.Detection.Engine,
		SourceType: out.Detection.SourceType,
	}, start)
}
