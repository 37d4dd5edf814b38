// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestAIVisitNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	v := AIVisit{
		UserAgent:         strings.Repeat("a", MaxUserAgentLength+10),
		Referrer:          strings.Repeat("r", MaxReferrerLength+1),
		PagePath:          "/guides/install",
		TimeOnPageSeconds: -5,
		ScrollDepth:       140,
	}
	v.Normalize(now)

	if len(v.UserAgent) != MaxUserAgentLength {
		t.Errorf("UserAgent length = %d, want %d", len(v.UserAgent), MaxUserAgentLength)
	}
	if len(v.Referrer) != MaxReferrerLength {
		t.Errorf("Referrer length = %d, want %d", len(v.Referrer), MaxReferrerLength)
	}
	if v.TimeOnPageSeconds != 0 {
		t.Errorf("TimeOnPageSeconds = %d, want 0", v.TimeOnPageSeconds)
	}
	if v.ScrollDepth != 100 {
		t.Errorf("ScrollDepth = %d, want 100", v.ScrollDepth)
	}
	if !v.VisitedAt.Equal(now) {
		t.Errorf("VisitedAt = %v, want %v", v.VisitedAt, now)
	}
}

func TestAIVisitNormalize_ConvertsToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	v := AIVisit{VisitedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, loc)}
	v.Normalize(time.Now())

	if v.VisitedAt.Location() != time.UTC || v.VisitedAt.Hour() != 12 {
		t.Errorf("VisitedAt = %v, want 12:00 UTC", v.VisitedAt)
	}
}

func TestAIVisitNormalize_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ua      string
		wantLen int
	}{
		{"two-byte rune across the limit", strings.Repeat("a", MaxUserAgentLength-1) + "é" + "tail", MaxUserAgentLength - 1},
		{"three-byte rune across the limit", strings.Repeat("a", MaxUserAgentLength-2) + "€" + "tail", MaxUserAgentLength - 2},
		{"rune ending on the limit", strings.Repeat("a", MaxUserAgentLength-2) + "é" + "tail", MaxUserAgentLength},
		{"ascii", strings.Repeat("a", MaxUserAgentLength+3), MaxUserAgentLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := AIVisit{UserAgent: tt.ua}
			v.Normalize(time.Now())
			if !utf8.ValidString(v.UserAgent) {
				t.Errorf("UserAgent is not valid UTF-8: %q", v.UserAgent[len(v.UserAgent)-4:])
			}
			if len(v.UserAgent) != tt.wantLen {
				t.Errorf("UserAgent length = %d, want %d", len(v.UserAgent), tt.wantLen)
			}
		})
	}
}

func TestClampEngagement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		secs, depth         int
		wantSecs, wantDepth int
	}{
		{30, 50, 30, 50},
		{-1, -1, 0, 0},
		{86400, 101, 86400, 100},
	}
	for _, tt := range tests {
		secs, depth := ClampEngagement(tt.secs, tt.depth)
		if secs != tt.wantSecs || depth != tt.wantDepth {
			t.Errorf("ClampEngagement(%d, %d) = %d, %d; want %d, %d",
				tt.secs, tt.depth, secs, depth, tt.wantSecs, tt.wantDepth)
		}
	}
}

func TestVisitFilterMatches(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	visit := &AIVisit{Engine: "ChatGPT", SourceType: SourceReferral, VisitedAt: day.Add(time.Hour)}

	tests := []struct {
		name   string
		filter VisitFilter
		want   bool
	}{
		{"empty filter", VisitFilter{}, true},
		{"inside range", VisitFilter{Start: day, End: day.Add(24 * time.Hour)}, true},
		{"start inclusive", VisitFilter{Start: day.Add(time.Hour)}, true},
		{"end exclusive", VisitFilter{End: day.Add(time.Hour)}, false},
		{"before range", VisitFilter{Start: day.Add(2 * time.Hour)}, false},
		{"engine match", VisitFilter{Engine: "ChatGPT"}, true},
		{"engine mismatch", VisitFilter{Engine: "Claude"}, false},
		{"source mismatch", VisitFilter{SourceType: SourceCrawler}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.filter.Matches(visit); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceTypeValid(t *testing.T) {
	t.Parallel()

	for _, s := range []SourceType{SourceCrawler, SourceReferral, SourceOrganic} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if SourceType("bot").Valid() {
		t.Error("unknown source type should be invalid")
	}
}
