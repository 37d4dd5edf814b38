// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aeopulse/internal/aggregate"
	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/content"
	"github.com/tomtom215/aeopulse/internal/models"
	"github.com/tomtom215/aeopulse/internal/validation"
)

// StatsRequest holds the dashboard query parameters.
type StatsRequest struct {
	Range string `json:"range" validate:"oneof=7d 28d 90d"`
}

type adminPageData struct {
	Stats       *models.Stats
	Ranges      []string
	GeneratedAt string
}

// Stats returns the dashboard JSON for ?range= (default from config).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := StatsRequest{Range: r.URL.Query().Get("range")}
	if req.Range == "" {
		req.Range = h.defaultRange()
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	stats, err := h.Dashboard.Stats(r.Context(), req.Range)
	if err != nil {
		respondValidation(w, validation.NewRequestError("range", "oneof", err.Error(), req.Range))
		return
	}
	respondSuccess(w, stats, start)
}

// AdminPage renders the dashboard tables. An unknown range falls back to
// the default instead of failing the page.
func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	rangeName := r.URL.Query().Get("range")
	if _, ok := aggregate.Ranges[rangeName]; !ok {
		rangeName = h.defaultRange()
	}

	stats, err := h.Dashboard.Stats(r.Context(), rangeName)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load dashboard", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.Renderer.Render(w, http.StatusOK, content.PageAdmin, content.PageData{
		Title:   "AEO dashboard",
		Nonce:   auth.NonceFromContext(r.Context()),
		NoIndex: true,
		Data: adminPageData{
			Stats:       stats,
			Ranges:      aggregate.RangeNames(),
			GeneratedAt: stats.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
		},
	})
}
