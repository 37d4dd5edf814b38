// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package content serves the public AEO content site: articles embedded as
// YAML documents, rendered with html/template, plus robots.txt, sitemap.xml
// and llms.txt.
//
// Page requests are classified inline. AI crawler and AI referral hits are
// stored through the visit Tracker within a short deadline; a slow or
// failing store is logged and never delays the page past that deadline.
// HTML pages embed a small beacon that reports time on page and scroll
// depth to /api/track. When the server stored the visit the beacon carries
// its ID, so the report updates that visit instead of adding another.
package content

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/visits"
)

// DefaultTrackTimeout bounds how long a page waits on server-side tracking.
const DefaultTrackTimeout = 2 * time.Second

// Tracker records page hits.
type Tracker interface {
	Track(ctx context.Context, h visits.Hit) (visits.Outcome, error)
}

// Site serves the public pages.
type Site struct {
	lib      *Library
	renderer *Renderer
	tracker  Tracker
	baseURL  string
	sitemap  []byte
	robots   string
	llms     string

	trackTimeout time.Duration
}

// NewSite builds the site. A nil tracker disables server-side tracking.
func NewSite(lib *Library, renderer *Renderer, tracker Tracker) (*Site, error) {
	site := renderer.Site()
	baseURL := strings.TrimRight(site.BaseURL, "/")

	sitemap, err := Sitemap(baseURL, lib)
	if err != nil {
		return nil, err
	}
	return &Site{
		lib:      lib,
		renderer: renderer,
		tracker:  tracker,
		baseURL:  baseURL,
		sitemap:  sitemap,
		robots:   RobotsTxt(baseURL),
		llms:     LLMsTxt(site.Name, baseURL, lib),

		trackTimeout: DefaultTrackTimeout,
	}, nil
}

// Routes registers the public routes on r.
func (s *Site) Routes(r chi.Router) {
	r.Get("/", s.handleIndex)
	for _, category := range []string{CategoryGuides, CategoryTroubleshooting} {
		r.Get("/"+category, s.handleList(category))
		r.Get("/"+category+"/{slug}", s.handleArticle(category))
	}
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/llms.txt", s.handleLLMs)
}

// NotFound renders the 404 page.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.renderer.Render(w, http.StatusNotFound, PageNotFound, PageData{
		Title:   "Page not found",
		Nonce:   auth.NonceFromContext(r.Context()),
		NoIndex: true,
	})
}

type indexData struct {
	Guides          []*Article
	Troubleshooting []*Article
}

func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	visitID := s.track(r)
	s.renderer.Render(w, http.StatusOK, PageIndex, PageData{
		Description: "Guides and fixes for getting your content cited by AI answer engines.",
		Canonical:   s.baseURL + "/",
		Nonce:       auth.NonceFromContext(r.Context()),
		Track:       true,
		VisitID:     visitID,
		Data: indexData{
			Guides:          s.lib.Category(CategoryGuides),
			Troubleshooting: s.lib.Category(CategoryTroubleshooting),
		},
	})
}

var categoryTitles = map[string]struct{ title, description string }{
	CategoryGuides:          {"Guides", "Step-by-step guides to answer engine optimization."},
	CategoryTroubleshooting: {"Troubleshooting", "Fixes for common AI visibility problems."},
}

func (s *Site) handleList(category string) http.HandlerFunc {
	meta := categoryTitles[category]
	return func(w http.ResponseWriter, r *http.Request) {
		visitID := s.track(r)
		s.renderer.Render(w, http.StatusOK, PageList, PageData{
			Title:       meta.title,
			Description: meta.description,
			Canonical:   s.baseURL + "/" + category,
			Nonce:       auth.NonceFromContext(r.Context()),
			Track:       true,
			VisitID:     visitID,
			Data:        s.lib.Category(category),
		})
	}
}

func (s *Site) handleArticle(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.lib.Get(category, chi.URLParam(r, "slug"))
		if !ok {
			s.NotFound(w, r)
			return
		}
		visitID := s.track(r)
		s.renderer.Render(w, http.StatusOK, PageArticle, PageData{
			Title:       a.Title,
			Description: a.Description,
			Canonical:   s.baseURL + a.Path(),
			Nonce:       auth.NonceFromContext(r.Context()),
			Track:       true,
			VisitID:     visitID,
			JSONLD:      articleJSONLD(a, s.renderer.Site().Name, s.baseURL),
			Data:        a,
		})
	}
}

func (s *Site) handleRobots(w http.ResponseWriter, r *http.Request) {
	s.track(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.robots))
}

func (s *Site) handleSitemap(w http.ResponseWriter, r *http.Request) {
	s.track(r)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(s.sitemap)
}

func (s *Site) handleLLMs(w http.ResponseWriter, r *http.Request) {
	s.track(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.llms))
}

// track records r through the tracker and returns the stored visit ID, or
// "" when nothing was stored. Errors are logged only.
func (s *Site) track(r *http.Request) string {
	if s.tracker == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.trackTimeout)
	defer cancel()

	out, err := s.tracker.Track(ctx, visits.Hit{
		PagePath:   r.URL.Path,
		UserAgent:  r.UserAgent(),
		Referrer:   r.Referer(),
		LandingURL: r.URL.RequestURI(),
	})
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("engine", out.Detection.Engine).
			Str("path", r.URL.Path).
			Msg("Failed to record page visit")
		return ""
	}
	if !out.Tracked {
		return ""
	}
	return out.ID
}
