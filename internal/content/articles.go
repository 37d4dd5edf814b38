// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Article categories.
const (
	CategoryGuides          = "guides"
	CategoryTroubleshooting = "troubleshooting"
)

const dateLayout = "2006-01-02"

//go:embed articles/*.yaml
var embeddedArticles embed.FS

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Article is one published page.
type Article struct {
	Slug        string
	Title       string
	Description string
	Category    string
	Published   time.Time
	Updated     time.Time
	Tags        []string
	// Body is trusted HTML shipped with the binary.
	Body template.HTML
}

// Path returns the article's site path.
func (a *Article) Path() string {
	return "/" + a.Category + "/" + a.Slug
}

// LastModified returns Updated, or Published when it was never updated.
func (a *Article) LastModified() time.Time {
	if a.Updated.After(a.Published) {
		return a.Updated
	}
	return a.Published
}

type articleDoc struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Published   string   `yaml:"published"`
	Updated     string   `yaml:"updated"`
	Tags        []string `yaml:"tags"`
	Body        string   `yaml:"body"`
}

// Library holds the articles, newest first within each category.
type Library struct {
	all        []*Article
	byCategory map[string][]*Article
	byKey      map[string]*Article
}

// DefaultLibrary loads the articles compiled into the binary.
func DefaultLibrary() (*Library, error) {
	sub, err := fs.Sub(embeddedArticles, "articles")
	if err != nil {
		return nil, err
	}
	return LoadLibrary(sub)
}

// LoadLibrary parses every .yaml file at the root of fsys.
func LoadLibrary(fsys fs.FS) (*Library, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}

	lib := &Library{
		byCategory: make(map[string][]*Article),
		byKey:      make(map[string]*Article),
	}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		a, err := parseArticle(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		key := path.Join(a.Category, a.Slug)
		if _, dup := lib.byKey[key]; dup {
			return nil, fmt.Errorf("%s: duplicate article %s", name, key)
		}
		lib.byKey[key] = a
		lib.all = append(lib.all, a)
		lib.byCategory[a.Category] = append(lib.byCategory[a.Category], a)
	}

	newestFirst := func(s []*Article) {
		sort.SliceStable(s, func(i, j int) bool {
			if !s[i].Published.Equal(s[j].Published) {
				return s[i].Published.After(s[j].Published)
			}
			return s[i].Slug < s[j].Slug
		})
	}
	newestFirst(lib.all)
	for _, list := range lib.byCategory {
		newestFirst(list)
	}
	return lib, nil
}

func parseArticle(raw []byte) (*Article, error) {
	var doc articleDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	switch {
	case !slugPattern.MatchString(doc.Slug):
		return nil, fmt.Errorf("invalid slug %q", doc.Slug)
	case strings.TrimSpace(doc.Title) == "":
		return nil, errors.New("title is required")
	case doc.Category != CategoryGuides && doc.Category != CategoryTroubleshooting:
		return nil, fmt.Errorf("unknown category %q", doc.Category)
	case strings.TrimSpace(doc.Body) == "":
		return nil, errors.New("body is required")
	}

	published, err := time.Parse(dateLayout, doc.Published)
	if err != nil {
		return nil, fmt.Errorf("published: %w", err)
	}
	updated := published
	if doc.Updated != "" {
		if updated, err = time.Parse(dateLayout, doc.Updated); err != nil {
			return nil, fmt.Errorf("updated: %w", err)
		}
	}

	return &Article{
		Slug:        doc.Slug,
		Title:       strings.TrimSpace(doc.Title),
		Description: strings.TrimSpace(doc.Description),
		Category:    doc.Category,
		Published:   published,
		Updated:     updated,
		Tags:        doc.Tags,
		Body:        template.HTML(doc.Body), //nolint:gosec // embedded, author-controlled content
	}, nil
}

// All returns every article, newest first.
func (l *Library) All() []*Article { return l.all }

// Category returns the articles of one category, newest first.
func (l *Library) Category(category string) []*Article { return l.byCategory[category] }

// Get looks up an article by category and slug.
func (l *Library) Get(category, slug string) (*Article, bool) {
	a, ok := l.byKey[path.Join(category, slug)]
	return a, ok
}
