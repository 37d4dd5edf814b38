// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package models

import (
	"time"
	"unicode/utf8"
)

// SourceType classifies where a visit came from.
type SourceType string

const (
	// SourceCrawler is an AI crawler or agent fetching a page itself.
	SourceCrawler SourceType = "crawler"
	// SourceReferral is a human arriving from an AI chat answer.
	SourceReferral SourceType = "referral"
	// SourceOrganic is everything else.
	SourceOrganic SourceType = "organic"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceCrawler, SourceReferral, SourceOrganic:
		return true
	}
	return false
}

// Field length limits applied before a visit is stored.
const (
	MaxUserAgentLength = 512
	MaxReferrerLength  = 1024
	MaxPagePathLength  = 1024
)

// AIVisit is a single tracked visit.
type AIVisit struct {
	ID                string     `json:"id"`
	Engine            string     `json:"engine"`
	SourceType        SourceType `json:"source_type"`
	UserAgent         string     `json:"user_agent"`
	Referrer          string     `json:"referrer"`
	PagePath          string     `json:"page_path"`
	SessionID         string     `json:"session_id,omitempty"`
	TimeOnPageSeconds int        `json:"time_on_page"`
	ScrollDepth       int        `json:"scroll_depth"`
	VisitedAt         time.Time  `json:"visited_at"`
}

// Normalize truncates oversized fields, clamps session metrics and sets
// VisitedAt to now (UTC) when it is zero.
func (v *AIVisit) Normalize(now time.Time) {
	v.UserAgent = truncate(v.UserAgent, MaxUserAgentLength)
	v.Referrer = truncate(v.Referrer, MaxReferrerLength)
	v.PagePath = truncate(v.PagePath, MaxPagePathLength)
	v.TimeOnPageSeconds, v.ScrollDepth = ClampEngagement(v.TimeOnPageSeconds, v.ScrollDepth)
	if v.VisitedAt.IsZero() {
		v.VisitedAt = now
	}
	v.VisitedAt = v.VisitedAt.UTC()
}

// ClampEngagement bounds time on page at zero and scroll depth to 0..100.
func ClampEngagement(timeOnPage, scrollDepth int) (int, int) {
	return max(timeOnPage, 0), min(max(scrollDepth, 0), 100)
}

// VisitFilter narrows a visit query. Zero values mean "no constraint".
// Start is inclusive and End exclusive. Offset skips that many rows of the
// newest-first ordering so large ranges can be read page by page.
type VisitFilter struct {
	Start      time.Time
	End        time.Time
	Engine     string
	SourceType SourceType
	Limit      int
	Offset     int
}

// Matches reports whether v satisfies the filter (Limit and Offset are
// ignored).
func (f VisitFilter) Matches(v *AIVisit) bool {
	if !f.Start.IsZero() && v.VisitedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !v.VisitedAt.Before(f.End) {
		return false
	}
	if f.Engine != "" && v.Engine != f.Engine {
		return false
	}
	if f.SourceType != "" && v.SourceType != f.SourceType {
		return false
	}
	return true
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
