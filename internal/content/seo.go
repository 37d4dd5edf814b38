// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package content

import (
	"encoding/xml"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// AICrawlers are explicitly welcomed in robots.txt.
var AICrawlers = []string{
	"GPTBot", "ChatGPT-User", "OAI-SearchBot",
	"PerplexityBot", "Perplexity-User",
	"ClaudeBot", "Claude-User", "Claude-SearchBot",
	"Google-Extended", "Applebot-Extended", "CCBot",
}

// RobotsTxt allows every crawler, names the AI crawlers explicitly, keeps
// bots out of the admin area and points at the sitemap.
func RobotsTxt(baseURL string) string {
	var b strings.Builder
	for _, bot := range AICrawlers {
		fmt.Fprintf(&b, "User-agent: %s\n", bot)
	}
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api/\n\n")
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", strings.TrimRight(baseURL, "/"))
	return b.String()
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap renders sitemap.xml for the index pages and every article.
func Sitemap(baseURL string, lib *Library) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	var newest time.Time
	for _, a := range lib.All() {
		if a.LastModified().After(newest) {
			newest = a.LastModified()
		}
	}
	lastMod := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	}

	for _, p := range []string{"/", "/" + CategoryGuides, "/" + CategoryTroubleshooting} {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + p, LastMod: lastMod(newest)})
	}
	for _, a := range lib.All() {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + a.Path(), LastMod: lastMod(a.LastModified())})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// LLMsTxt renders /llms.txt: a markdown index of the site for language models.
func LLMsTxt(siteName, baseURL string, lib *Library) string {
	base := strings.TrimRight(baseURL, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", siteName)
	b.WriteString("> Guides and troubleshooting for answer engine optimization (AEO).\n")

	sections := []struct{ title, category string }{
		{"Guides", CategoryGuides},
		{"Troubleshooting", CategoryTroubleshooting},
	}
	for _, s := range sections {
		articles := lib.Category(s.category)
		if len(articles) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", s.title)
		for _, a := range articles {
			fmt.Fprintf(&b, "- [%s](%s%s)", a.Title, base, a.Path())
			if a.Description != "" {
				fmt.Fprintf(&b, ": %s", a.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// articleJSONLD builds schema.org Article structured data.
func articleJSONLD(a *Article, siteName, baseURL string) template.JS {
	doc := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "Article",
		"headline":      a.Title,
		"description":   a.Description,
		"datePublished": a.Published.Format(dateLayout),
		"dateModified":  a.LastModified().Format(dateLayout),
		"url":           strings.TrimRight(baseURL, "/") + a.Path(),
		"keywords":      strings.Join(a.Tags, ", "),
		"publisher":     map[string]any{"@type": "Organization", "name": siteName},
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	// json.Marshal escapes <, > and & so the output cannot close the script tag.
	return template.JS(out) //nolint:gosec // HTML-escaped JSON
}
