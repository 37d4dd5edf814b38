// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package detection

import (
	"regexp"
	"sort"
)

// Engine names reported by the classifier.
const (
	EngineChatGPT     = "ChatGPT"
	EngineClaude      = "Claude"
	EnginePerplexity  = "Perplexity"
	EngineGemini      = "Gemini"
	EngineCopilot     = "Copilot"
	EngineCommonCrawl = "Common Crawl"
	EngineDoubao      = "Doubao"
	EngineAmazon      = "Amazon"
	EngineApple       = "Apple"
	EngineMetaAI      = "Meta AI"
	EngineCohere      = "Cohere"
	EngineYou         = "You.com"
	EngineDuckAssist  = "DuckAssist"
	EngineMistral     = "Mistral"
	EnginePhind       = "Phind"
	EnginePoe         = "Poe"
	EngineDeepSeek    = "DeepSeek"
	EngineGrok        = "Grok"
)

// Signature maps a regular expression to an AI engine.
type Signature struct {
	Engine  string
	Pattern *regexp.Regexp
}

type patternDef struct {
	engine  string
	pattern string
}

// crawlerPatterns are matched against the User-Agent header, case-insensitively.
var crawlerPatterns = []patternDef{
	{EngineChatGPT, `\b(GPTBot|ChatGPT-User|OAI-SearchBot)\b`},
	{EngineClaude, `\b(ClaudeBot|Claude-Web|Claude-User|Claude-SearchBot|anthropic-ai)\b`},
	{EnginePerplexity, `\b(PerplexityBot|Perplexity-User)\b`},
	{EngineGemini, `\b(Google-Extended|GoogleOther)\b`},
	{EngineCopilot, `\bBingPreview\b`},
	{EngineCommonCrawl, `\bCCBot\b`},
	{EngineDoubao, `\bBytespider\b`},
	{EngineAmazon, `\bAmazonbot\b`},
	{EngineApple, `\bApplebot-Extended\b`},
	{EngineMetaAI, `\b(meta-externalagent|meta-externalfetcher|FacebookBot)\b`},
	{EngineCohere, `\bcohere-(ai|training-data-crawler)\b`},
	{EngineYou, `\bYouBot\b`},
	{EngineDuckAssist, `\bDuckAssistBot\b`},
	{EngineMistral, `\bMistralAI-User\b`},
}

// referralPatterns are matched against "host/path" of the Referer URL,
// lower-cased with any leading "www." removed.
var referralPatterns = []patternDef{
	{EngineChatGPT, `^(chat\.openai\.com|chatgpt\.com)(/|$)`},
	{EnginePerplexity, `^([a-z0-9-]+\.)?perplexity\.ai(/|$)`},
	{EngineClaude, `^claude\.ai(/|$)`},
	{EngineGemini, `^(gemini|bard)\.google\.com(/|$)`},
	{EngineCopilot, `^(copilot\.microsoft\.com(/|$)|bing\.com/chat)`},
	{EngineYou, `^you\.com(/|$)`},
	{EnginePhind, `^phind\.com(/|$)`},
	{EnginePoe, `^poe\.com(/|$)`},
	{EngineMetaAI, `^meta\.ai(/|$)`},
	{EngineMistral, `^chat\.mistral\.ai(/|$)`},
	{EngineDeepSeek, `^chat\.deepseek\.com(/|$)`},
	{EngineGrok, `^(grok\.com|x\.ai)(/|$)`},
}

// utmAliases maps utm_source values that are not host names to engines.
var utmAliases = map[string]string{
	"chatgpt":    EngineChatGPT,
	"openai":     EngineChatGPT,
	"perplexity": EnginePerplexity,
	"claude":     EngineClaude,
	"anthropic":  EngineClaude,
	"gemini":     EngineGemini,
	"bard":       EngineGemini,
	"copilot":    EngineCopilot,
	"phind":      EnginePhind,
	"poe":        EnginePoe,
	"meta-ai":    EngineMetaAI,
	"mistral":    EngineMistral,
	"deepseek":   EngineDeepSeek,
	"grok":       EngineGrok,
}

var (
	crawlerSignatures  = compile(crawlerPatterns, "(?i)")
	referralSignatures = compile(referralPatterns, "")
	engineNames        = collectEngines()
)

func compile(defs []patternDef, flags string) []Signature {
	sigs := make([]Signature, 0, len(defs))
	for _, d := range defs {
		sigs = append(sigs, Signature{Engine: d.engine, Pattern: regexp.MustCompile(flags + d.pattern)})
	}
	return sigs
}

func collectEngines() []string {
	seen := make(map[string]struct{})
	for _, s := range crawlerSignatures {
		seen[s.Engine] = struct{}{}
	}
	for _, s := range referralSignatures {
		seen[s.Engine] = struct{}{}
	}
	for _, e := range utmAliases {
		seen[e] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engines returns the sorted list of engine names the classifier can report.
func Engines() []string {
	out := make([]string, len(engineNames))
	copy(out, engineNames)
	return out
}

// IsEngine reports whether name is a known engine.
func IsEngine(name string) bool {
	i := sort.SearchStrings(engineNames, name)
	return i < len(engineNames) && engineNames[i] == name
}

// CrawlerSignatures returns the compiled crawler signatures in match order.
func CrawlerSignatures() []Signature {
	out := make([]Signature, len(crawlerSignatures))
	copy(out, crawlerSignatures)
	return out
}
