// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"math"
	"sort"

	"github.com/tomtom215/aeopulse/internal/models"
)

// positionBands are the keyword ranking bands shown on the dashboard.
var positionBands = []struct {
	label    string
	from, to int
}{
	{"1-3", 1, 3},
	{"4-10", 4, 10},
	{"11-20", 11, 20},
	{"21-100", 21, 100},
}

// positionWeight approximates the click share a ranking position earns.
func positionWeight(pos int) float64 {
	switch {
	case pos <= 0:
		return 0
	case pos == 1:
		return 1
	case pos == 2:
		return 0.85
	case pos == 3:
		return 0.7
	case pos <= 10:
		return 0.5 - float64(pos-4)*0.05
	case pos <= 20:
		return 0.1
	case pos <= 100:
		return 0.02
	default:
		return 0
	}
}

// SEOSummary aggregates a SEMrush report. VisibilityScore is the
// volume-weighted position weight of all ranking keywords scaled to 0..100;
// without volume data every keyword counts equally.
func SEOSummary(report *models.SEMrushReport, topN int) models.SEOSummary {
	if report == nil {
		return models.SEOSummary{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	summary := models.SEOSummary{
		Available:       true,
		Domain:          report.Overview.Domain,
		Rank:            report.Overview.Rank,
		OrganicKeywords: report.Overview.OrganicKeywords,
		OrganicTraffic:  report.Overview.OrganicTraffic,
		OrganicCost:     report.Overview.OrganicCost,
		PositionBuckets: make([]models.PositionBucket, len(positionBands)),
	}
	for i, b := range positionBands {
		summary.PositionBuckets[i].Label = b.label
	}

	weights := make([]float64, 0, len(report.Keywords))
	volumes := make([]float64, 0, len(report.Keywords))
	var totalVolume int64
	for _, kw := range report.Keywords {
		for i, b := range positionBands {
			if kw.Position >= b.from && kw.Position <= b.to {
				summary.PositionBuckets[i].Count++
				break
			}
		}
		weights = append(weights, positionWeight(kw.Position))
		volumes = append(volumes, float64(kw.SearchVolume))
		totalVolume += kw.SearchVolume
	}
	if totalVolume > 0 {
		summary.VisibilityScore = ClampScore(WeightedAverage(weights, volumes) * 100)
	} else {
		summary.VisibilityScore = ClampScore(Average(weights) * 100)
	}

	keywords := make([]models.SEMrushKeyword, len(report.Keywords))
	copy(keywords, report.Keywords)
	sort.SliceStable(keywords, func(i, j int) bool {
		pi, pj := rankOrder(keywords[i].Position), rankOrder(keywords[j].Position)
		if pi != pj {
			return pi < pj
		}
		return keywords[i].SearchVolume > keywords[j].SearchVolume
	})
	summary.TopKeywords = truncateSlice(keywords, topN)
	return summary
}

// rankOrder sorts unranked keywords (position 0) last.
func rankOrder(pos int) int {
	if pos <= 0 {
		return math.MaxInt
	}
	return pos
}
