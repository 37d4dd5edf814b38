// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package citation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFindCitations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		answer       string
		brand        string
		domains      []string
		wantTerms    []string
		wantMentions int
	}{
		{
			name:         "brand case insensitive",
			answer:       "Tools like acme analytics and ACME help here.",
			brand:        "Acme",
			wantTerms:    []string{"Acme"},
			wantMentions: 2,
		},
		{
			name:         "domain normalized",
			answer:       "See example.com/guides for details.",
			brand:        "Nobody",
			domains:      []string{"https://www.Example.com/"},
			wantTerms:    []string{"example.com"},
			wantMentions: 1,
		},
		{
			name:         "brand and domain",
			answer:       "Acme (acme.io) is popular.",
			brand:        "Acme",
			domains:      []string{"acme.io"},
			wantTerms:    []string{"Acme", "acme.io"},
			wantMentions: 2,
		},
		{
			name:         "brand inside domain counted once",
			answer:       "Visit acme.com today.",
			brand:        "acme",
			domains:      []string{"acme.com"},
			wantTerms:    []string{"acme", "acme.com"},
			wantMentions: 1,
		},
		{
			name:      "no mention",
			answer:    "Try a different vendor.",
			brand:     "Acme",
			domains:   []string{"acme.io"},
			wantTerms: nil,
		},
		{
			name:         "duplicate terms counted once",
			answer:       "acme acme",
			brand:        "acme",
			domains:      []string{"ACME"},
			wantTerms:    []string{"acme"},
			wantMentions: 2,
		},
		{
			name:      "empty inputs ignored",
			answer:    "anything",
			brand:     "  ",
			domains:   []string{"", "https://"},
			wantTerms: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := FindCitations(tt.answer, tt.brand, tt.domains)
			if strings.Join(m.Terms, ",") != strings.Join(tt.wantTerms, ",") {
				t.Errorf("Terms = %v, want %v", m.Terms, tt.wantTerms)
			}
			if m.Mentions != tt.wantMentions {
				t.Errorf("Mentions = %d, want %d", m.Mentions, tt.wantMentions)
			}
			if m.Cited() != (len(tt.wantTerms) > 0) {
				t.Errorf("Cited() = %v", m.Cited())
			}
			if m.Cited() && m.Snippet == "" {
				t.Error("cited answer should have a snippet")
			}
			if !m.Cited() && m.Snippet != "" {
				t.Errorf("uncited answer has snippet %q", m.Snippet)
			}
		})
	}
}

func TestFindCitations_SnippetWindow(t *testing.T) {
	t.Parallel()

	answer := strings.Repeat("lorem ipsum ", 60) + "Acme is mentioned here. " + strings.Repeat("dolor sit ", 60)
	m := FindCitations(answer, "acme", nil)

	if n := utf8.RuneCountInString(m.Snippet); n > SnippetLength {
		t.Errorf("snippet length = %d, want <= %d", n, SnippetLength)
	}
	if !strings.Contains(m.Snippet, "Acme is mentioned here.") {
		t.Errorf("snippet %q should contain the mention", m.Snippet)
	}
	if !strings.Contains(m.Snippet, "lorem") || !strings.Contains(m.Snippet, "dolor") {
		t.Errorf("snippet %q should be centered on the mention", m.Snippet)
	}
}

func TestFindCitations_ShortAnswerKeptWhole(t *testing.T) {
	t.Parallel()

	m := FindCitations("  Ask Acme.  ", "acme", nil)
	if m.Snippet != "Ask Acme." {
		t.Errorf("Snippet = %q, want whole trimmed answer", m.Snippet)
	}
}

func TestFindCitations_MultibyteAnswer(t *testing.T) {
	t.Parallel()

	answer := strings.Repeat("日本語のテキスト", 40) + "Acme" + strings.Repeat("テキスト", 40)
	m := FindCitations(answer, "acme", nil)
	if !utf8.ValidString(m.Snippet) {
		t.Error("snippet is not valid UTF-8")
	}
	if !strings.Contains(m.Snippet, "Acme") {
		t.Errorf("snippet %q should contain the mention", m.Snippet)
	}
}

func TestFindCitations_SnippetOffsetsFollowOriginalText(t *testing.T) {
	t.Parallel()

	// "İ" is two bytes but lowercases to three, which shifts offsets taken
	// from a lowercased copy of the answer.
	answer := strings.Repeat("İ", 400) + " Acme mentioned " + strings.Repeat("x", 400)
	m := FindCitations(answer, "acme", nil)

	if m.Mentions != 1 {
		t.Fatalf("Mentions = %d, want 1", m.Mentions)
	}
	if !strings.Contains(m.Snippet, "Acme mentioned") {
		t.Errorf("snippet %q should contain the mention", m.Snippet)
	}
	if !strings.Contains(m.Snippet, "İ") || !strings.Contains(m.Snippet, "x") {
		t.Errorf("snippet %q should be centered on the mention", m.Snippet)
	}
}
