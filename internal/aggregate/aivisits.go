// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"sort"

	"github.com/tomtom215/aeopulse/internal/models"
)

type visitTotals struct {
	crawler, referral, organic int64
}

func (t visitTotals) ai() int64 { return t.crawler + t.referral }

func countVisits(visits []models.AIVisit) visitTotals {
	var t visitTotals
	for i := range visits {
		switch visits[i].SourceType {
		case models.SourceCrawler:
			t.crawler++
		case models.SourceReferral:
			t.referral++
		default:
			t.organic++
		}
	}
	return t
}

// AIVisitSummary aggregates stored visits for period against the previous
// period. Total counts AI visits only (crawler plus referral); organic rows,
// when stored, are reported separately. Session metrics are averaged over
// referral visits whose page beacon reported engagement; crawlers and
// readers who left before the beacon fired carry zeros.
func AIVisitSummary(current, previous []models.AIVisit, period Period, topN int) models.AIVisitSummary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	cur := countVisits(current)
	prev := countVisits(previous)

	summary := models.AIVisitSummary{
		Available:      true,
		Total:          cur.ai(),
		Crawler:        cur.crawler,
		Referral:       cur.referral,
		Organic:        cur.organic,
		TotalChange:    PercentChange(float64(prev.ai()), float64(cur.ai())),
		CrawlerChange:  PercentChange(float64(prev.crawler), float64(cur.crawler)),
		ReferralChange: PercentChange(float64(prev.referral), float64(cur.referral)),
	}

	engines := make(map[string]*models.EngineStat)
	pages := make(map[string]int64)
	daily := make(map[string]*models.DailyAIPoint)
	var timeOnPage, scroll []int

	for i := range current {
		v := &current[i]
		if v.SourceType != models.SourceCrawler && v.SourceType != models.SourceReferral {
			continue
		}

		name := v.Engine
		if name == "" {
			name = "Unknown"
		}
		es, ok := engines[name]
		if !ok {
			es = &models.EngineStat{Engine: name}
			engines[name] = es
		}
		es.Total++

		day := v.VisitedAt.UTC().Format(DateLayout)
		dp, ok := daily[day]
		if !ok {
			dp = &models.DailyAIPoint{Date: day}
			daily[day] = dp
		}

		if v.SourceType == models.SourceCrawler {
			es.Crawler++
			dp.Crawler++
		} else {
			es.Referral++
			dp.Referral++
			if v.TimeOnPageSeconds > 0 || v.ScrollDepth > 0 {
				timeOnPage = append(timeOnPage, v.TimeOnPageSeconds)
				scroll = append(scroll, v.ScrollDepth)
			}
		}
		pages[v.PagePath]++
	}

	summary.Engines = make([]models.EngineStat, 0, len(engines))
	for _, es := range engines {
		es.Share = Share(es.Total, summary.Total)
		if es.Crawler > 0 {
			summary.DistinctCrawlers++
		}
		summary.Engines = append(summary.Engines, *es)
	}
	sort.Slice(summary.Engines, func(i, j int) bool {
		if summary.Engines[i].Total != summary.Engines[j].Total {
			return summary.Engines[i].Total > summary.Engines[j].Total
		}
		return summary.Engines[i].Engine < summary.Engines[j].Engine
	})

	summary.TopPages = make([]models.PageStat, 0, len(pages))
	for path, n := range pages {
		summary.TopPages = append(summary.TopPages, models.PageStat{Path: path, Visits: n})
	}
	sort.Slice(summary.TopPages, func(i, j int) bool {
		if summary.TopPages[i].Visits != summary.TopPages[j].Visits {
			return summary.TopPages[i].Visits > summary.TopPages[j].Visits
		}
		return summary.TopPages[i].Path < summary.TopPages[j].Path
	})
	summary.TopPages = truncateSlice(summary.TopPages, topN)

	summary.AvgTimeOnPage = Round1(Average(timeOnPage))
	summary.AvgScrollDepth = Round1(Average(scroll))

	keys := period.DayKeys()
	summary.Daily = make([]models.DailyAIPoint, 0, len(keys))
	for _, k := range keys {
		if dp, ok := daily[k]; ok {
			summary.Daily = append(summary.Daily, *dp)
		} else {
			summary.Daily = append(summary.Daily, models.DailyAIPoint{Date: k})
		}
	}
	return summary
}
