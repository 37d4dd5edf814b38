// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"github.com/tomtom215/aeopulse/internal/models"
)

// AEO score weights and the targets that earn full marks.
const (
	weightReferralShare   = 40.0
	weightCrawlerCoverage = 30.0
	weightSearchCTR       = 15.0
	weightSearchPosition  = 15.0

	targetReferralShare = 5.0  // percent of sessions arriving from AI answers
	targetCrawlers      = 5.0  // distinct AI engines crawling the site
	targetCTR           = 5.0  // percent
	worstPosition       = 50.0 // average position that earns nothing
)

// AEOScore blends AI referral share, crawler coverage and search
// performance into a 0..100 score. Inputs from unavailable sections
// contribute zero points.
func AEOScore(ai models.AIVisitSummary, search models.SearchSummary, traffic models.TrafficSummary) models.AEOScore {
	var referralPts float64
	if traffic.Available && traffic.Sessions > 0 {
		referrals := max(ai.Referral, traffic.AIReferralSessions)
		share := float64(referrals) / float64(traffic.Sessions) * 100
		referralPts = ratio(share, targetReferralShare) * weightReferralShare
	}

	var crawlerPts float64
	if ai.Available {
		crawlerPts = ratio(float64(ai.DistinctCrawlers), targetCrawlers) * weightCrawlerCoverage
	}

	var ctrPts, positionPts float64
	if search.Available {
		ctrPts = ratio(search.CTR, targetCTR) * weightSearchCTR
		if search.AvgPosition > 0 {
			positionPts = ratio(worstPosition-search.AvgPosition, worstPosition-1) * weightSearchPosition
		}
	}

	components := []models.ScoreComponent{
		{Name: "AI referral share", Points: Round1(referralPts), Max: weightReferralShare},
		{Name: "AI crawler coverage", Points: Round1(crawlerPts), Max: weightCrawlerCoverage},
		{Name: "Search CTR", Points: Round1(ctrPts), Max: weightSearchCTR},
		{Name: "Search position", Points: Round1(positionPts), Max: weightSearchPosition},
	}
	score := ClampScore(referralPts + crawlerPts + ctrPts + positionPts)
	return models.AEOScore{Score: score, Grade: Grade(score), Components: components}
}

// Grade maps a 0..100 score to a letter.
func Grade(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}

// ratio returns v/target clamped into 0..1.
func ratio(v, target float64) float64 {
	if target <= 0 || v <= 0 {
		return 0
	}
	if v >= target {
		return 1
	}
	return v / target
}
