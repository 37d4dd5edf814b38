// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package citation runs the AEO citation test: ask several answer engines
// the same question and check whether their answers mention the brand or
// its domains.
package citation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/metrics"
)

// Vendor names.
const (
	VendorOpenAI     = "openai"
	VendorPerplexity = "perplexity"
	VendorAnthropic  = "anthropic"
)

// OpenAI-compatible chat completion endpoints.
const (
	PerplexityBaseURL = "https://api.perplexity.ai"
	AnthropicBaseURL  = "https://api.anthropic.com/v1"
)

// Result statuses.
const (
	StatusCited    = "cited"
	StatusNotCited = "not_cited"
	StatusError    = "error"
	StatusSkipped  = "skipped"
)

const (
	defaultTimeout = 45 * time.Second
	maxTokens      = 1024
	systemPrompt   = "You are a helpful assistant. Answer the question thoroughly and cite the websites, products and companies you rely on by name."
)

// ErrInvalidRequest is returned when the query or brand is empty.
var ErrInvalidRequest = errors.New("citation: query and brand are required")

// Answerer asks one answer engine a question.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Vendor is one answer engine in the test. A nil Answerer marks the vendor
// as not configured.
type Vendor struct {
	Name     string
	Model    string
	Answerer Answerer
}

// Request is one citation test.
type Request struct {
	Query   string   `json:"query" validate:"required,min=3,max=500"`
	Brand   string   `json:"brand" validate:"required,max=100"`
	Domains []string `json:"domains" validate:"max=10,dive,required,max=253"`
}

// VendorResult is one vendor's answer, scored.
type VendorResult struct {
	Vendor    string   `json:"vendor"`
	Model     string   `json:"model,omitempty"`
	Status    string   `json:"status"`
	Cited     bool     `json:"cited"`
	Matches   []string `json:"matches"`
	Mentions  int      `json:"mentions"`
	Snippet   string   `json:"snippet,omitempty"`
	Error     string   `json:"error,omitempty"`
	LatencyMS int64    `json:"latency_ms"`
}

// Result is the outcome of a citation test.
type Result struct {
	Query        string         `json:"query"`
	Brand        string         `json:"brand"`
	Domains      []string       `json:"domains"`
	Vendors      []VendorResult `json:"vendors"`
	Answered     int            `json:"answered"`
	Cited        int            `json:"cited"`
	CitationRate float64        `json:"citation_rate"`
	TestedAt     time.Time      `json:"tested_at"`
}

// Tester fans a query out to every vendor.
type Tester struct {
	vendors []Vendor
	timeout time.Duration
}

// NewTester creates a tester. A non-positive timeout uses 45s per vendor.
func NewTester(timeout time.Duration, vendors ...Vendor) *Tester {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Tester{vendors: vendors, timeout: timeout}
}

// New builds the OpenAI, Perplexity and Anthropic vendors from cfg.
// Vendors without an API key are included but skipped.
func New(cfg config.CitationConfig, httpClient *http.Client) *Tester {
	return NewTester(cfg.Timeout,
		newVendor(VendorOpenAI, cfg.OpenAIKey, cfg.OpenAIModel, "", httpClient),
		newVendor(VendorPerplexity, cfg.PerplexityKey, cfg.PerplexityModel, PerplexityBaseURL, httpClient),
		newVendor(VendorAnthropic, cfg.AnthropicKey, cfg.AnthropicModel, AnthropicBaseURL, httpClient),
	)
}

func newVendor(name, apiKey, model, baseURL string, httpClient *http.Client) Vendor {
	v := Vendor{Name: name, Model: model}
	if apiKey != "" {
		v.Answerer = NewChatClient(apiKey, model, baseURL, httpClient)
	}
	return v
}

// Configured reports which vendors have credentials.
func (t *Tester) Configured() map[string]bool {
	out := make(map[string]bool, len(t.vendors))
	for _, v := range t.vendors {
		out[v.Name] = v.Answerer != nil
	}
	return out
}

// Run asks every configured vendor concurrently. A vendor failure is
// reported in its own result; Run fails only on an invalid request.
func (t *Tester) Run(ctx context.Context, req Request) (*Result, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.Brand = strings.TrimSpace(req.Brand)
	if req.Query == "" || req.Brand == "" {
		return nil, ErrInvalidRequest
	}
	if req.Domains == nil {
		req.Domains = []string{}
	}

	results := make([]VendorResult, len(t.vendors))
	// Every goroutine returns nil so one vendor cannot cancel the others.
	var g errgroup.Group
	for i, v := range t.vendors {
		g.Go(func() error {
			results[i] = t.ask(ctx, v, req)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{
		Query:    req.Query,
		Brand:    req.Brand,
		Domains:  req.Domains,
		Vendors:  results,
		TestedAt: time.Now().UTC(),
	}
	for _, r := range results {
		switch r.Status {
		case StatusCited:
			res.Answered++
			res.Cited++
		case StatusNotCited:
			res.Answered++
		}
	}
	if res.Answered > 0 {
		res.CitationRate = float64(res.Cited) / float64(res.Answered) * 100
	}
	return res, nil
}

func (t *Tester) ask(ctx context.Context, v Vendor, req Request) VendorResult {
	r := VendorResult{Vendor: v.Name, Model: v.Model, Matches: []string{}}
	if v.Answerer == nil {
		r.Status = StatusSkipped
		return r
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	answer, err := v.Answerer.Answer(ctx, req.Query)
	r.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		logging.Warn().Err(err).Str("vendor", v.Name).Msg("Citation query failed")
		metrics.RecordCitation(v.Name, false, err)
		r.Status = StatusError
		r.Error = err.Error()
		return r
	}

	m := FindCitations(answer, req.Brand, req.Domains)
	metrics.RecordCitation(v.Name, m.Cited(), nil)
	r.Cited = m.Cited()
	r.Mentions = m.Mentions
	r.Snippet = m.Snippet
	if m.Cited() {
		r.Matches = m.Terms
		r.Status = StatusCited
	} else {
		r.Status = StatusNotCited
	}
	return r
}

// ChatClient answers through an OpenAI-compatible chat completions API.
type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient creates a client for apiKey. An empty baseURL targets OpenAI.
func NewChatClient(apiKey, model, baseURL string, httpClient *http.Client) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &ChatClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Answer sends query as a single user turn and returns the first choice.
func (c *ChatClient) Answer(ctx context.Context, query string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	}
	// Reasoning models reject max_tokens.
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
