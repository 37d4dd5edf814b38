// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"sort"

	"github.com/tomtom215/aeopulse/internal/detection"
	"github.com/tomtom215/aeopulse/internal/models"
)

// DefaultTopN bounds the top-N tables on the dashboard.
const DefaultTopN = 10

type trafficTotals struct {
	sessions, users, pageViews int64
}

func sumTraffic(rows []models.GA4DailyRow) trafficTotals {
	var t trafficTotals
	for _, r := range rows {
		t.sessions += r.Sessions
		t.users += r.TotalUsers
		t.pageViews += r.PageViews
	}
	return t
}

// TrafficSummary aggregates a GA4 report against the previous period.
// A nil current report yields the placeholder summary. GA4 reports
// engagement rate as a 0..1 fraction; the summary holds a percentage.
func TrafficSummary(current, previous *models.GA4Report, period Period, topN int) models.TrafficSummary {
	if current == nil {
		return models.TrafficSummary{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	cur := sumTraffic(current.Daily)
	var prev trafficTotals
	if previous != nil {
		prev = sumTraffic(previous.Daily)
	}

	rates := make([]float64, 0, len(current.Daily))
	durations := make([]float64, 0, len(current.Daily))
	weights := make([]float64, 0, len(current.Daily))
	for _, r := range current.Daily {
		rates = append(rates, r.EngagementRate*100)
		durations = append(durations, r.AverageSessionDuration)
		weights = append(weights, float64(r.Sessions))
	}

	summary := models.TrafficSummary{
		Available:          true,
		Sessions:           cur.sessions,
		Users:              cur.users,
		PageViews:          cur.pageViews,
		EngagementRate:     Round1(WeightedAverage(rates, weights)),
		AvgSessionDuration: Round1(WeightedAverage(durations, weights)),
		SessionsChange:     PercentChange(float64(prev.sessions), float64(cur.sessions)),
		UsersChange:        PercentChange(float64(prev.users), float64(cur.users)),
		PageViewsChange:    PercentChange(float64(prev.pageViews), float64(cur.pageViews)),
		TopPages:           topPages(current.Pages, topN),
		TopSources:         topSources(current.Sources, topN),
		Daily:              dailySessions(current.Daily, period),
	}
	for _, s := range current.Sources {
		if _, ok := detection.EngineForSource(s.Source); ok {
			summary.AIReferralSessions += s.Sessions
		}
	}
	return summary
}

func topPages(rows []models.GA4PageRow, n int) []models.GA4PageRow {
	merged := make(map[string]int64, len(rows))
	for _, r := range rows {
		merged[r.PagePath] += r.PageViews
	}
	out := make([]models.GA4PageRow, 0, len(merged))
	for path, views := range merged {
		out = append(out, models.GA4PageRow{PagePath: path, PageViews: views})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PageViews != out[j].PageViews {
			return out[i].PageViews > out[j].PageViews
		}
		return out[i].PagePath < out[j].PagePath
	})
	return truncateSlice(out, n)
}

func topSources(rows []models.GA4SourceRow, n int) []models.GA4SourceRow {
	merged := make(map[string]int64, len(rows))
	for _, r := range rows {
		merged[r.Source] += r.Sessions
	}
	out := make([]models.GA4SourceRow, 0, len(merged))
	for source, sessions := range merged {
		out = append(out, models.GA4SourceRow{Source: source, Sessions: sessions})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].Source < out[j].Source
	})
	return truncateSlice(out, n)
}

func dailySessions(rows []models.GA4DailyRow, period Period) []models.DailyPoint {
	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Date.UTC().Format(DateLayout)] += r.Sessions
	}
	return fillSeries(byDay, period)
}

// fillSeries returns one point per day in period, zero where byDay has no value.
func fillSeries(byDay map[string]int64, period Period) []models.DailyPoint {
	keys := period.DayKeys()
	out := make([]models.DailyPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.DailyPoint{Date: k, Value: byDay[k]})
	}
	return out
}

func truncateSlice[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
