// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"testing"
	"time"

	"github.com/tomtom215/aeopulse/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestTrafficSummary_Nil(t *testing.T) {
	t.Parallel()

	got := TrafficSummary(nil, nil, LastDays(7, testNow), 5)
	if got.Available {
		t.Error("nil report should produce an unavailable placeholder")
	}
	if got.Sessions != 0 || got.Daily != nil {
		t.Errorf("placeholder should be zero-valued, got %+v", got)
	}
}

func TestTrafficSummary(t *testing.T) {
	t.Parallel()

	period := LastDays(7, testNow)
	current := &models.GA4Report{
		Daily: []models.GA4DailyRow{
			{Date: day(9), Sessions: 100, TotalUsers: 80, PageViews: 300, EngagementRate: 0.5, AverageSessionDuration: 60},
			{Date: day(10), Sessions: 300, TotalUsers: 200, PageViews: 700, EngagementRate: 0.7, AverageSessionDuration: 100},
		},
		Pages: []models.GA4PageRow{
			{PagePath: "/guides/install", PageViews: 50},
			{PagePath: "/", PageViews: 500},
			{PagePath: "/guides/install", PageViews: 25},
		},
		Sources: []models.GA4SourceRow{
			{Source: "google", Sessions: 250},
			{Source: "chatgpt.com", Sessions: 30},
			{Source: "perplexity", Sessions: 10},
			{Source: "(direct)", Sessions: 110},
		},
	}
	previous := &models.GA4Report{
		Daily: []models.GA4DailyRow{{Date: day(2), Sessions: 200, TotalUsers: 140, PageViews: 1000}},
	}

	got := TrafficSummary(current, previous, period, 2)

	if !got.Available {
		t.Fatal("expected available summary")
	}
	if got.Sessions != 400 || got.Users != 280 || got.PageViews != 1000 {
		t.Errorf("totals = %d/%d/%d, want 400/280/1000", got.Sessions, got.Users, got.PageViews)
	}
	// (50*100 + 70*300) / 400
	if got.EngagementRate != 65 {
		t.Errorf("EngagementRate = %v, want 65", got.EngagementRate)
	}
	// (60*100 + 100*300) / 400
	if got.AvgSessionDuration != 90 {
		t.Errorf("AvgSessionDuration = %v, want 90", got.AvgSessionDuration)
	}
	if got.SessionsChange != 100 || got.UsersChange != 100 || got.PageViewsChange != 0 {
		t.Errorf("changes = %v/%v/%v, want 100/100/0", got.SessionsChange, got.UsersChange, got.PageViewsChange)
	}
	if got.AIReferralSessions != 40 {
		t.Errorf("AIReferralSessions = %d, want 40", got.AIReferralSessions)
	}
	if len(got.TopPages) != 2 || got.TopPages[0].PagePath != "/" || got.TopPages[1].PageViews != 75 {
		t.Errorf("TopPages = %+v", got.TopPages)
	}
	if len(got.TopSources) != 2 || got.TopSources[0].Source != "google" || got.TopSources[1].Source != "(direct)" {
		t.Errorf("TopSources = %+v", got.TopSources)
	}
	if len(got.Daily) != 7 {
		t.Fatalf("Daily has %d points, want 7", len(got.Daily))
	}
	if got.Daily[0].Value != 0 || got.Daily[5].Value != 100 || got.Daily[6].Value != 300 {
		t.Errorf("Daily = %+v", got.Daily)
	}
}

func TestSearchSummary(t *testing.T) {
	t.Parallel()

	period := LastDays(7, testNow)
	current := &models.SearchReport{
		Daily: []models.SearchRow{
			{Keys: []string{"2026-03-09"}, Clicks: 10, Impressions: 100, Position: 10},
			{Keys: []string{"2026-03-10"}, Clicks: 30, Impressions: 300, Position: 6},
		},
		Queries: []models.SearchRow{
			{Keys: []string{"install cli"}, Clicks: 5, Impressions: 50, Position: 3},
			{Keys: []string{"cli error 42"}, Clicks: 20, Impressions: 100, Position: 2},
			{Keys: []string{"install cli"}, Clicks: 5, Impressions: 150, Position: 7},
			{Keys: nil, Clicks: 99},
		},
	}
	previous := &models.SearchReport{
		Daily: []models.SearchRow{{Keys: []string{"2026-03-02"}, Clicks: 20, Impressions: 400, Position: 9}},
	}

	got := SearchSummary(current, previous, period, 10)

	if got.Clicks != 40 || got.Impressions != 400 {
		t.Errorf("clicks/impressions = %d/%d, want 40/400", got.Clicks, got.Impressions)
	}
	if got.CTR != 10 {
		t.Errorf("CTR = %v, want 10", got.CTR)
	}
	// (10*100 + 6*300) / 400 = 7
	if got.AvgPosition != 7 {
		t.Errorf("AvgPosition = %v, want 7", got.AvgPosition)
	}
	if got.PositionChange != 2 {
		t.Errorf("PositionChange = %v, want 2 (moved up)", got.PositionChange)
	}
	if got.ClicksChange != 100 || got.ImpressionsChange != 0 {
		t.Errorf("changes = %v/%v, want 100/0", got.ClicksChange, got.ImpressionsChange)
	}
	// previous CTR 5%, current 10%
	if got.CTRChange != 100 {
		t.Errorf("CTRChange = %v, want 100", got.CTRChange)
	}

	if len(got.TopQueries) != 2 {
		t.Fatalf("TopQueries = %+v", got.TopQueries)
	}
	first, second := got.TopQueries[0], got.TopQueries[1]
	if first.Key != "cli error 42" || first.Clicks != 20 || first.CTR != 20 {
		t.Errorf("first query = %+v", first)
	}
	// merged: 10 clicks, 200 impressions, position (3*50+7*150)/200 = 6
	if second.Key != "install cli" || second.Clicks != 10 || second.Impressions != 200 || second.Position != 6 {
		t.Errorf("second query = %+v", second)
	}

	if len(got.Daily) != 7 || got.Daily[6].Value != 30 {
		t.Errorf("Daily = %+v", got.Daily)
	}
}

func TestSearchSummary_NoPrevious(t *testing.T) {
	t.Parallel()

	current := &models.SearchReport{Daily: []models.SearchRow{{Keys: []string{"2026-03-10"}, Clicks: 1, Impressions: 10, Position: 4}}}
	got := SearchSummary(current, nil, LastDays(7, testNow), 0)

	if got.ClicksChange != 100 {
		t.Errorf("ClicksChange = %v, want 100", got.ClicksChange)
	}
	if got.PositionChange != 0 {
		t.Errorf("PositionChange = %v, want 0 without a previous period", got.PositionChange)
	}
}

func TestSEOSummary(t *testing.T) {
	t.Parallel()

	report := &models.SEMrushReport{
		Overview: models.SEMrushOverview{Domain: "acme.dev", Rank: 120000, OrganicKeywords: 4, OrganicTraffic: 900},
		Keywords: []models.SEMrushKeyword{
			{Keyword: "acme cli", Position: 1, SearchVolume: 100},
			{Keyword: "acme install", Position: 15, SearchVolume: 100},
			{Keyword: "cli tools", Position: 40, SearchVolume: 0},
			{Keyword: "acme docs", Position: 4, SearchVolume: 0},
			{Keyword: "unranked", Position: 0, SearchVolume: 500},
		},
	}

	got := SEOSummary(report, 3)

	if !got.Available || got.Domain != "acme.dev" || got.Rank != 120000 {
		t.Errorf("overview = %+v", got)
	}
	wantBuckets := map[string]int{"1-3": 1, "4-10": 1, "11-20": 1, "21-100": 1}
	for _, b := range got.PositionBuckets {
		if b.Count != wantBuckets[b.Label] {
			t.Errorf("bucket %s = %d, want %d", b.Label, b.Count, wantBuckets[b.Label])
		}
	}
	// (1*100 + 0.1*100 + 0*500) / 700 * 100 = 15.7
	if got.VisibilityScore != 16 {
		t.Errorf("VisibilityScore = %d, want 16", got.VisibilityScore)
	}
	if len(got.TopKeywords) != 3 || got.TopKeywords[0].Keyword != "acme cli" || got.TopKeywords[1].Keyword != "acme docs" {
		t.Errorf("TopKeywords = %+v", got.TopKeywords)
	}
	if report.Keywords[0].Keyword != "acme cli" || report.Keywords[4].Keyword != "unranked" {
		t.Error("SEOSummary must not reorder the input")
	}
}

func TestSEOSummary_NoVolume(t *testing.T) {
	t.Parallel()

	report := &models.SEMrushReport{Keywords: []models.SEMrushKeyword{{Position: 1}, {Position: 3}}}
	// (1 + 0.7) / 2 * 100
	if got := SEOSummary(report, 0).VisibilityScore; got != 85 {
		t.Errorf("VisibilityScore = %d, want 85", got)
	}
	if got := SEOSummary(nil, 0); got.Available {
		t.Error("nil report should be unavailable")
	}
}

func visitAt(d int, engine string, src models.SourceType, path string) models.AIVisit {
	return models.AIVisit{Engine: engine, SourceType: src, PagePath: path, VisitedAt: day(d).Add(3 * time.Hour)}
}

func TestAIVisitSummary(t *testing.T) {
	t.Parallel()

	period := LastDays(7, testNow)
	referral := visitAt(10, "ChatGPT", models.SourceReferral, "/guides/install")
	referral.TimeOnPageSeconds = 120
	referral.ScrollDepth = 80
	referral2 := visitAt(9, "Perplexity", models.SourceReferral, "/")
	referral2.TimeOnPageSeconds = 60
	referral2.ScrollDepth = 40

	current := []models.AIVisit{
		visitAt(10, "ChatGPT", models.SourceCrawler, "/guides/install"),
		visitAt(10, "ChatGPT", models.SourceCrawler, "/"),
		visitAt(8, "Claude", models.SourceCrawler, "/guides/install"),
		referral,
		referral2,
		// No beacon report: counted, but left out of the session averages.
		visitAt(9, "Gemini", models.SourceReferral, "/guides/install"),
		visitAt(9, "", models.SourceOrganic, "/"),
	}
	previous := []models.AIVisit{
		visitAt(2, "ChatGPT", models.SourceCrawler, "/"),
		visitAt(2, "ChatGPT", models.SourceReferral, "/"),
	}

	got := AIVisitSummary(current, previous, period, 10)

	if got.Total != 6 || got.Crawler != 3 || got.Referral != 3 || got.Organic != 1 {
		t.Errorf("totals = %d/%d/%d/%d, want 6/3/3/1", got.Total, got.Crawler, got.Referral, got.Organic)
	}
	if got.TotalChange != 200 || got.CrawlerChange != 200 || got.ReferralChange != 200 {
		t.Errorf("changes = %v/%v/%v", got.TotalChange, got.CrawlerChange, got.ReferralChange)
	}
	if got.DistinctCrawlers != 2 {
		t.Errorf("DistinctCrawlers = %d, want 2", got.DistinctCrawlers)
	}
	if got.AvgTimeOnPage != 90 || got.AvgScrollDepth != 60 {
		t.Errorf("session metrics = %v/%v, want 90/60", got.AvgTimeOnPage, got.AvgScrollDepth)
	}

	if len(got.Engines) != 4 {
		t.Fatalf("Engines = %+v", got.Engines)
	}
	chatgpt := got.Engines[0]
	if chatgpt.Engine != "ChatGPT" || chatgpt.Total != 3 || chatgpt.Crawler != 2 || chatgpt.Referral != 1 || chatgpt.Share != 50 {
		t.Errorf("ChatGPT stat = %+v", chatgpt)
	}
	if got.Engines[1].Engine != "Claude" || got.Engines[2].Engine != "Gemini" || got.Engines[3].Engine != "Perplexity" {
		t.Errorf("engine order = %+v", got.Engines)
	}

	if len(got.TopPages) != 2 || got.TopPages[0].Path != "/guides/install" || got.TopPages[0].Visits != 4 {
		t.Errorf("TopPages = %+v", got.TopPages)
	}

	if len(got.Daily) != 7 {
		t.Fatalf("Daily has %d points", len(got.Daily))
	}
	last := got.Daily[6]
	if last.Date != "2026-03-10" || last.Crawler != 2 || last.Referral != 1 {
		t.Errorf("last day = %+v", last)
	}
	if got.Daily[0].Crawler != 0 || got.Daily[0].Referral != 0 {
		t.Errorf("first day should be zero-filled, got %+v", got.Daily[0])
	}
}

func TestAIVisitSummary_Empty(t *testing.T) {
	t.Parallel()

	got := AIVisitSummary(nil, nil, LastDays(7, testNow), 0)
	if !got.Available || got.Total != 0 || got.TotalChange != 0 {
		t.Errorf("empty summary = %+v", got)
	}
	if len(got.Engines) != 0 || len(got.Daily) != 7 {
		t.Errorf("empty summary shape = %d engines, %d days", len(got.Engines), len(got.Daily))
	}
}

func TestAEOScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ai        models.AIVisitSummary
		search    models.SearchSummary
		traffic   models.TrafficSummary
		wantScore int
		wantGrade string
	}{
		{
			name:      "everything missing",
			wantScore: 0,
			wantGrade: "F",
		},
		{
			name:      "full marks",
			ai:        models.AIVisitSummary{Available: true, Referral: 50, DistinctCrawlers: 6},
			search:    models.SearchSummary{Available: true, CTR: 8, AvgPosition: 1},
			traffic:   models.TrafficSummary{Available: true, Sessions: 1000},
			wantScore: 100,
			wantGrade: "A",
		},
		{
			// referral 2.5% of sessions -> 20, 2 crawlers -> 12, CTR 2.5 -> 7.5, position 25.5 -> 7.5
			name:      "partial",
			ai:        models.AIVisitSummary{Available: true, Referral: 25, DistinctCrawlers: 2},
			search:    models.SearchSummary{Available: true, CTR: 2.5, AvgPosition: 25.5},
			traffic:   models.TrafficSummary{Available: true, Sessions: 1000},
			wantScore: 47,
			wantGrade: "C",
		},
		{
			name:      "GA4 AI sessions count when higher",
			ai:        models.AIVisitSummary{Available: true, Referral: 1},
			traffic:   models.TrafficSummary{Available: true, Sessions: 100, AIReferralSessions: 5},
			wantScore: 40,
			wantGrade: "C",
		},
		{
			name:      "unavailable search ignored",
			ai:        models.AIVisitSummary{Available: true, DistinctCrawlers: 5},
			search:    models.SearchSummary{Available: false, CTR: 50, AvgPosition: 1},
			wantScore: 30,
			wantGrade: "D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AEOScore(tt.ai, tt.search, tt.traffic)
			if got.Score != tt.wantScore || got.Grade != tt.wantGrade {
				t.Errorf("AEOScore = %d (%s), want %d (%s); components %+v", got.Score, got.Grade, tt.wantScore, tt.wantGrade, got.Components)
			}
			if len(got.Components) != 4 {
				t.Errorf("expected 4 components, got %d", len(got.Components))
			}
		})
	}
}
