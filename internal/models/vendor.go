// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package models

import "time"

// GA4DailyRow is one day of Google Analytics 4 traffic.
type GA4DailyRow struct {
	Date                   time.Time `json:"date"`
	Sessions               int64     `json:"sessions"`
	TotalUsers             int64     `json:"total_users"`
	PageViews              int64     `json:"page_views"`
	EngagementRate         float64   `json:"engagement_rate"`
	AverageSessionDuration float64   `json:"average_session_duration"`
}

// GA4PageRow is page-level traffic for a date range.
type GA4PageRow struct {
	PagePath  string `json:"page_path"`
	PageViews int64  `json:"page_views"`
}

// GA4SourceRow is sessions by traffic source for a date range.
type GA4SourceRow struct {
	Source   string `json:"source"`
	Sessions int64  `json:"sessions"`
}

// GA4Report bundles the GA4 rows fetched for one date range.
type GA4Report struct {
	Daily   []GA4DailyRow  `json:"daily"`
	Pages   []GA4PageRow   `json:"pages"`
	Sources []GA4SourceRow `json:"sources"`
}

// SearchRow is one Search Console row. Keys holds the dimension values in
// request order.
type SearchRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

// SearchReport bundles the Search Console rows fetched for one date range.
type SearchReport struct {
	Daily   []SearchRow `json:"daily"`
	Queries []SearchRow `json:"queries"`
	Pages   []SearchRow `json:"pages"`
}

// SEMrushOverview is the domain_ranks report for one domain.
type SEMrushOverview struct {
	Domain          string `json:"domain"`
	Rank            int64  `json:"rank"`
	OrganicKeywords int64  `json:"organic_keywords"`
	OrganicTraffic  int64  `json:"organic_traffic"`
	OrganicCost     int64  `json:"organic_cost"`
	AdwordsKeywords int64  `json:"adwords_keywords"`
}

// SEMrushKeyword is one domain_organic row.
type SEMrushKeyword struct {
	Keyword      string  `json:"keyword"`
	Position     int     `json:"position"`
	SearchVolume int64   `json:"search_volume"`
	TrafficShare float64 `json:"traffic_share"`
	URL          string  `json:"url"`
}

// SEMrushReport bundles the SEMrush data for the configured domain.
type SEMrushReport struct {
	Overview SEMrushOverview  `json:"overview"`
	Keywords []SEMrushKeyword `json:"keywords"`
}
