// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package models

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status       string          `json:"status"`
	Version      string          `json:"version"`
	VisitBackend string          `json:"visit_backend"`
	StoreHealthy bool            `json:"store_healthy"`
	Connectors   map[string]bool `json:"connectors"`
	Uptime       float64         `json:"uptime_seconds"`
}

// TrackVisitResponse is returned by the tracking endpoint.
type TrackVisitResponse struct {
	Tracked    bool       `json:"tracked"`
	ID         string     `json:"id,omitempty"`
	Engine     string     `json:"engine,omitempty"`
	SourceType SourceType `json:"source_type"`
}

// LoginResponse is returned after a successful admin login.
type LoginResponse struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}
