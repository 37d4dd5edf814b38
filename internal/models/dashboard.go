// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package models

import "time"

// SectionStatus reports how a dashboard section was produced.
type SectionStatus string

const (
	// SectionOK means the section holds live data.
	SectionOK SectionStatus = "ok"
	// SectionStale means the live fetch failed and the last good copy was used.
	SectionStale SectionStatus = "stale"
	// SectionDegraded means the live fetch failed and a placeholder was used.
	SectionDegraded SectionStatus = "degraded"
	// SectionUnavailable means the connector is not configured.
	SectionUnavailable SectionStatus = "unavailable"
)

// Dashboard section names.
const (
	SectionTraffic  = "traffic"
	SectionSearch   = "search"
	SectionSEO      = "seo"
	SectionAIVisits = "ai_visits"
)

// DailyPoint is one value in a zero-filled daily series.
type DailyPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// TrafficSummary is the GA4 section of the dashboard.
type TrafficSummary struct {
	Available          bool           `json:"available"`
	Sessions           int64          `json:"sessions"`
	Users              int64          `json:"users"`
	PageViews          int64          `json:"page_views"`
	AIReferralSessions int64          `json:"ai_referral_sessions"`
	EngagementRate     float64        `json:"engagement_rate"`
	AvgSessionDuration float64        `json:"avg_session_duration"`
	SessionsChange     float64        `json:"sessions_change"`
	UsersChange        float64        `json:"users_change"`
	PageViewsChange    float64        `json:"page_views_change"`
	TopPages           []GA4PageRow   `json:"top_pages"`
	TopSources         []GA4SourceRow `json:"top_sources"`
	Daily              []DailyPoint   `json:"daily"`
}

// QueryStat is an aggregated Search Console key (query or page).
type QueryStat struct {
	Key         string  `json:"key"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// SearchSummary is the Search Console section of the dashboard.
type SearchSummary struct {
	Available         bool         `json:"available"`
	Clicks            int64        `json:"clicks"`
	Impressions       int64        `json:"impressions"`
	CTR               float64      `json:"ctr"`
	AvgPosition       float64      `json:"avg_position"`
	ClicksChange      float64      `json:"clicks_change"`
	ImpressionsChange float64      `json:"impressions_change"`
	CTRChange         float64      `json:"ctr_change"`
	PositionChange    float64      `json:"position_change"`
	TopQueries        []QueryStat  `json:"top_queries"`
	TopPages          []QueryStat  `json:"top_pages"`
	Daily             []DailyPoint `json:"daily"`
}

// PositionBucket counts keywords ranking within a position band.
type PositionBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SEOSummary is the SEMrush section of the dashboard.
type SEOSummary struct {
	Available       bool             `json:"available"`
	Domain          string           `json:"domain"`
	Rank            int64            `json:"rank"`
	OrganicKeywords int64            `json:"organic_keywords"`
	OrganicTraffic  int64            `json:"organic_traffic"`
	OrganicCost     int64            `json:"organic_cost"`
	PositionBuckets []PositionBucket `json:"position_buckets"`
	VisibilityScore int              `json:"visibility_score"`
	TopKeywords     []SEMrushKeyword `json:"top_keywords"`
}

// EngineStat is per-engine AI visit volume.
type EngineStat struct {
	Engine   string  `json:"engine"`
	Crawler  int64   `json:"crawler"`
	Referral int64   `json:"referral"`
	Total    int64   `json:"total"`
	Share    float64 `json:"share"`
}

// PageStat is visit volume for one page.
type PageStat struct {
	Path   string `json:"path"`
	Visits int64  `json:"visits"`
}

// DailyAIPoint is one day of AI visits split by source.
type DailyAIPoint struct {
	Date     string `json:"date"`
	Crawler  int64  `json:"crawler"`
	Referral int64  `json:"referral"`
}

// AIVisitSummary is the AI engine visit section of the dashboard.
type AIVisitSummary struct {
	Available        bool           `json:"available"`
	Total            int64          `json:"total"`
	Crawler          int64          `json:"crawler"`
	Referral         int64          `json:"referral"`
	Organic          int64          `json:"organic"`
	TotalChange      float64        `json:"total_change"`
	CrawlerChange    float64        `json:"crawler_change"`
	ReferralChange   float64        `json:"referral_change"`
	DistinctCrawlers int            `json:"distinct_crawlers"`
	AvgTimeOnPage    float64        `json:"avg_time_on_page"`
	AvgScrollDepth   float64        `json:"avg_scroll_depth"`
	Engines          []EngineStat   `json:"engines"`
	TopPages         []PageStat     `json:"top_pages"`
	Daily            []DailyAIPoint `json:"daily"`
	// Truncated is set when a period held more visits than the dashboard
	// reads, so the counts are lower bounds.
	Truncated bool `json:"truncated,omitempty"`
}

// ScoreComponent is one weighted input of the AEO score.
type ScoreComponent struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
}

// AEOScore is the 0-100 answer engine optimization heuristic.
type AEOScore struct {
	Score      int              `json:"score"`
	Grade      string           `json:"grade"`
	Components []ScoreComponent `json:"components"`
}

// Stats is the full dashboard view model served by /api/stats.
type Stats struct {
	Range       string                   `json:"range"`
	Start       time.Time                `json:"start"`
	End         time.Time                `json:"end"`
	Traffic     TrafficSummary           `json:"traffic"`
	Search      SearchSummary            `json:"search"`
	SEO         SEOSummary               `json:"seo"`
	AIVisits    AIVisitSummary           `json:"ai_visits"`
	AEO         AEOScore                 `json:"aeo"`
	Sections    map[string]SectionStatus `json:"sections"`
	Degraded    []string                 `json:"degraded"`
	GeneratedAt time.Time                `json:"generated_at"`
}
