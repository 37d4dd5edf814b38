// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package detection classifies visits as AI crawler hits, AI chat referrals
// or organic traffic by matching the User-Agent and Referer against known
// AI engine signatures.
//
// Classification is stateless and safe for concurrent use. A crawler match
// on the user agent wins over a referral match on the referrer.
package detection

import (
	"net/url"
	"strings"

	"github.com/tomtom215/aeopulse/internal/models"
)

// Detection is the result of classifying a visit.
type Detection struct {
	Engine     string            `json:"engine,omitempty"`
	SourceType models.SourceType `json:"source_type"`
	// Matched is the text that triggered the match (crawler token, referrer
	// host or utm_source value).
	Matched string `json:"matched,omitempty"`
}

// IsAI reports whether the visit came from an AI engine.
func (d Detection) IsAI() bool {
	return d.SourceType == models.SourceCrawler || d.SourceType == models.SourceReferral
}

var organic = Detection{SourceType: models.SourceOrganic}

// Classify tags a visit from its User-Agent and Referer.
func Classify(userAgent, referrer string) Detection {
	if d, ok := matchCrawler(userAgent); ok {
		return d
	}
	if d, ok := matchReferrer(referrer); ok {
		return d
	}
	return organic
}

// ClassifyRequest extends Classify with utm_source tagging: a referrer or
// landing URL carrying utm_source=chatgpt.com (or a known alias) classifies
// as a referral even when the Referer header was stripped.
func ClassifyRequest(userAgent, referrer, landingURL string) Detection {
	d := Classify(userAgent, referrer)
	if d.SourceType != models.SourceOrganic {
		return d
	}
	for _, raw := range []string{referrer, landingURL} {
		if d, ok := matchUTM(raw); ok {
			return d
		}
	}
	return organic
}

// EngineForSource maps a traffic source label, such as a GA4 sessionSource
// value ("chatgpt.com", "perplexity"), to an AI engine.
func EngineForSource(source string) (string, bool) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" || source == "(direct)" {
		return "", false
	}
	if d, ok := matchHostPath(strings.TrimPrefix(source, "www.")); ok {
		return d.Engine, true
	}
	if engine, ok := utmAliases[source]; ok {
		return engine, true
	}
	return "", false
}

func matchCrawler(userAgent string) (Detection, bool) {
	if userAgent == "" {
		return Detection{}, false
	}
	for _, sig := range crawlerSignatures {
		if m := sig.Pattern.FindString(userAgent); m != "" {
			return Detection{Engine: sig.Engine, SourceType: models.SourceCrawler, Matched: m}, true
		}
	}
	return Detection{}, false
}

func matchReferrer(referrer string) (Detection, bool) {
	hostPath := referrerHostPath(referrer)
	if hostPath == "" {
		return Detection{}, false
	}
	return matchHostPath(hostPath)
}

func matchHostPath(hostPath string) (Detection, bool) {
	for _, sig := range referralSignatures {
		if sig.Pattern.MatchString(hostPath) {
			host, _, _ := strings.Cut(hostPath, "/")
			return Detection{Engine: sig.Engine, SourceType: models.SourceReferral, Matched: host}, true
		}
	}
	return Detection{}, false
}

func matchUTM(raw string) (Detection, bool) {
	u := parseLoose(raw)
	if u == nil {
		return Detection{}, false
	}
	source := strings.ToLower(strings.TrimSpace(u.Query().Get("utm_source")))
	if source == "" {
		return Detection{}, false
	}
	if engine, ok := EngineForSource(source); ok {
		return Detection{Engine: engine, SourceType: models.SourceReferral, Matched: "utm_source=" + source}, true
	}
	return Detection{}, false
}

// referrerHostPath returns the lower-cased "host/path" of a referrer with
// the port and any leading "www." removed.
func referrerHostPath(referrer string) string {
	u := parseLoose(referrer)
	if u == nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return ""
	}
	return host + strings.ToLower(u.EscapedPath())
}

// parseLoose parses absolute URLs and bare "host/path" strings.
func parseLoose(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "/") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
