// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"sort"

	"github.com/tomtom215/aeopulse/internal/models"
)

type searchTotals struct {
	clicks, impressions float64
	ctr, position       float64
}

// sumSearch totals clicks and impressions and derives the overall CTR
// (percent) and impression-weighted average position.
func sumSearch(rows []models.SearchRow) searchTotals {
	var t searchTotals
	positions := make([]float64, 0, len(rows))
	weights := make([]float64, 0, len(rows))
	for _, r := range rows {
		t.clicks += r.Clicks
		t.impressions += r.Impressions
		positions = append(positions, r.Position)
		weights = append(weights, r.Impressions)
	}
	if t.impressions > 0 {
		t.ctr = t.clicks / t.impressions * 100
	}
	t.position = WeightedAverage(positions, weights)
	return t
}

// SearchSummary aggregates a Search Console report against the previous
// period. PositionChange is previous minus current average position, so a
// positive value means the site moved up.
func SearchSummary(current, previous *models.SearchReport, period Period, topN int) models.SearchSummary {
	if current == nil {
		return models.SearchSummary{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	cur := sumSearch(current.Daily)
	var prev searchTotals
	if previous != nil {
		prev = sumSearch(previous.Daily)
	}

	summary := models.SearchSummary{
		Available:         true,
		Clicks:            int64(cur.clicks),
		Impressions:       int64(cur.impressions),
		CTR:               Round2(cur.ctr),
		AvgPosition:       Round1(cur.position),
		ClicksChange:      PercentChange(prev.clicks, cur.clicks),
		ImpressionsChange: PercentChange(prev.impressions, cur.impressions),
		CTRChange:         PercentChange(prev.ctr, cur.ctr),
		TopQueries:        topKeys(current.Queries, topN),
		TopPages:          topKeys(current.Pages, topN),
	}
	if prev.position > 0 && cur.position > 0 {
		summary.PositionChange = Round1(prev.position - cur.position)
	}

	byDay := make(map[string]int64, len(current.Daily))
	for _, r := range current.Daily {
		if len(r.Keys) > 0 {
			byDay[r.Keys[0]] += int64(r.Clicks)
		}
	}
	summary.Daily = fillSeries(byDay, period)
	return summary
}

// topKeys merges rows sharing their first key and ranks them by clicks,
// then impressions.
func topKeys(rows []models.SearchRow, n int) []models.QueryStat {
	type acc struct {
		clicks, impressions, weightedPos float64
	}
	merged := make(map[string]*acc, len(rows))
	for _, r := range rows {
		if len(r.Keys) == 0 {
			continue
		}
		a, ok := merged[r.Keys[0]]
		if !ok {
			a = &acc{}
			merged[r.Keys[0]] = a
		}
		a.clicks += r.Clicks
		a.impressions += r.Impressions
		a.weightedPos += r.Position * r.Impressions
	}

	out := make([]models.QueryStat, 0, len(merged))
	for key, a := range merged {
		stat := models.QueryStat{Key: key, Clicks: int64(a.clicks), Impressions: int64(a.impressions)}
		if a.impressions > 0 {
			stat.CTR = Round2(a.clicks / a.impressions * 100)
			stat.Position = Round1(a.weightedPos / a.impressions)
		}
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		if out[i].Impressions != out[j].Impressions {
			return out[i].Impressions > out[j].Impressions
		}
		return out[i].Key < out[j].Key
	})
	return truncateSlice(out, n)
}
