// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health reports liveness, the visit store state and which connectors
// and answer engines are configured. A failing store marks the service
// degraded but still answers 200; the content site keeps serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:     "healthy",
		Version:    h.Version,
		Connectors: make(map[string]bool, len(h.Connectors)+3),
		Uptime:     time.Since(h.startTime).Seconds(),
	}
	for name, ok := range h.Connectors {
		status.Connectors[name] = ok
	}
	if h.Citation != nil {
		for name, ok := range h.Citation.Configured() {
			status.Connectors["citation_"+name] = ok
		}
	}

	if h.Store != nil {
		status.VisitBackend = h.Store.Backend()
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		err := h.Store.Ping(ctx)
		cancel()
		status.StoreHealthy = err == nil
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("backend", status.VisitBackend).Msg("Visit store health check failed")
		}
	}
	if !status.StoreHealthy {
		status.Status = "degraded"
	}

	respondSuccess(w, status, time.Time{})
}
