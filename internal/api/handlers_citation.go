// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/aeopulse/internal/citation"
	"github.com/tomtom215/aeopulse/internal/validation"
)

// CitationTest asks every configured answer engine the query and reports
// whether each answer cites the brand. Brand and domains default to the
// site configuration.
func (h *Handler) CitationTest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.Citation == nil || !anyConfigured(h.Citation.Configured()) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"No answer engine API keys are configured", nil)
		return
	}

	var req citation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	req.Brand = strings.TrimSpace(req.Brand)
	if req.Brand == "" {
		req.Brand = h.Config.Site.Brand
	}
	if len(req.Domains) == 0 {
		req.Domains = append([]string(nil), h.Config.Site.Domains...)
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	result, err := h.Citation.Run(r.Context(), req)
	switch {
	case errors.Is(err, citation.ErrInvalidRequest):
		respondValidation(w, validation.NewRequestError("query", "required", "query and brand are required", nil))
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Citation test failed", err)
		return
	}
	respondSuccess(w, result, start)
}

func anyConfigured(m map[string]bool) bool {
	for _, ok := range m {
		if ok {
			return true
		}
	}
	return false
}
