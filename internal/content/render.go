// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package content

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/aeopulse/internal/aggregate"
	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/logging"
)

// Page template names.
const (
	PageIndex    = "index"
	PageList     = "list"
	PageArticle  = "article"
	PageNotFound = "notfound"
	PageLogin    = "login"
	PageAdmin    = "admin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{PageIndex, PageList, PageArticle, PageNotFound, PageLogin, PageAdmin}

// PageData is passed to every template.
type PageData struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Canonical   string
	Nonce       string
	Year        int
	// NoIndex asks crawlers to skip the page (admin pages).
	NoIndex bool
	// Track embeds the client-side visit beacon.
	Track bool
	// VisitID is the visit the server recorded for this request; the beacon
	// reports engagement against it.
	VisitID string
	// JSONLD is structured data emitted in the head.
	JSONLD template.JS
	Data   any
}

// Renderer executes the embedded page templates.
type Renderer struct {
	site  config.SiteConfig
	pages map[string]*template.Template
	bufs  sync.Pool
}

var templateFuncs = template.FuncMap{
	"date":     func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"count":    aggregate.FormatCount,
	"pct":      aggregate.FormatPercent,
	"change":   aggregate.FormatChange,
	"decimal":  aggregate.FormatDecimal,
	"duration": aggregate.FormatDuration,
}

// NewRenderer parses every page against the shared layout and partials.
func NewRenderer(site config.SiteConfig) (*Renderer, error) {
	r := &Renderer{
		site:  site,
		pages: make(map[string]*template.Template, len(pageNames)),
		bufs:  sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Site returns the site settings the renderer was built with.
func (r *Renderer) Site() config.SiteConfig { return r.site }

// Render writes page with status. Site and Year are filled in. The page is
// rendered to a buffer first so a template error never sends half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := r.pages[page]
	if !ok {
		logging.Error().Str("page", page).Msg("Unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data.Site = r.site
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	buf := r.bufs.Get().(*bytes.Buffer)
	buf.Reset()
	defer r.bufs.Put(buf)

	if err := t.ExecuteTemplate(buf, "layout", data); err != nil {
		logging.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
