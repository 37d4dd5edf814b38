// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package citation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// SnippetLength is the maximum snippet size in characters.
const SnippetLength = 240

// Match is the outcome of scanning one answer for citations.
type Match struct {
	Terms    []string
	Mentions int
	Snippet  string
}

// Cited reports whether any term matched.
func (m Match) Cited() bool { return len(m.Terms) > 0 }

// FindCitations scans answer case-insensitively for brand and each domain.
// Terms lists the matched inputs in the order given. Mentions counts
// matched spans of the answer, so a brand inside a matched domain
// ("acme" in "acme.com") counts once. Snippet is up to SnippetLength
// characters centered on the earliest mention.
func FindCitations(answer, brand string, domains []string) Match {
	terms := make([]string, 0, 1+len(domains))
	if b := strings.TrimSpace(brand); b != "" {
		terms = append(terms, b)
	}
	for _, d := range domains {
		if d = normalizeDomain(d); d != "" {
			terms = append(terms, d)
		}
	}

	var (
		m     Match
		spans [][]int
	)
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true

		found := regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)).FindAllStringIndex(answer, -1)
		if len(found) == 0 {
			continue
		}
		m.Terms = append(m.Terms, term)
		spans = append(spans, found...)
	}
	if len(spans) == 0 {
		return m
	}

	merged := mergeSpans(spans)
	m.Mentions = len(merged)
	m.Snippet = snippet(answer, merged[0][0], merged[0][1]-merged[0][0])
	return m
}

// mergeSpans sorts byte ranges by start and joins overlapping ones.
func mergeSpans(spans [][]int) [][]int {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i][0] != spans[j][0] {
			return spans[i][0] < spans[j][0]
		}
		return spans[i][1] > spans[j][1]
	})
	out := [][]int{{spans[0][0], spans[0][1]}}
	for _, sp := range spans[1:] {
		last := out[len(out)-1]
		if sp[0] < last[1] {
			last[1] = max(last[1], sp[1])
			continue
		}
		out = append(out, []int{sp[0], sp[1]})
	}
	return out
}

// normalizeDomain strips scheme, "www." and any path so "https://www.example.com/x"
// matches plain "example.com" mentions.
func normalizeDomain(d string) string {
	d = strings.TrimSpace(strings.ToLower(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

// snippet returns a window of at most SnippetLength runes around the byte
// range [start, start+n) of s.
func snippet(s string, start, n int) string {
	runes := []rune(s)
	rs := utf8.RuneCountInString(s[:start])
	rn := utf8.RuneCountInString(s[start : start+n])

	if len(runes) <= SnippetLength {
		return strings.TrimSpace(s)
	}
	lead := (SnippetLength - rn) / 2
	lo := max(rs-lead, 0)
	hi := min(lo+SnippetLength, len(runes))
	lo = max(hi-SnippetLength, 0)

	return strings.TrimSpace(string(runes[lo:hi]))
}
