// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package visits

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/metrics"
	"github.com/tomtom215/aeopulse/internal/models"
)

const (
	supabaseTimeout     = 15 * time.Second
	maxSupabaseBodySize = 10 << 20
	maxErrorBodySize    = 64 * 1024
)

// SupabaseStore stores visits through the Supabase PostgREST API.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	table      string
	limit      int
	client     *http.Client
}

// NewSupabaseStore creates a PostgREST-backed store. A nil client uses a
// default client with a 15s timeout.
func NewSupabaseStore(cfg config.SupabaseConfig, table string, queryLimit int, client *http.Client) *SupabaseStore {
	if client == nil {
		client = &http.Client{Timeout: supabaseTimeout}
	}
	return &SupabaseStore{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		table:      table,
		limit:      queryLimit,
		client:     client,
	}
}

// Backend returns "supabase".
func (s *SupabaseStore) Backend() string { return "supabase" }

func (s *SupabaseStore) endpoint(params url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, url.PathEscape(s.table))
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do sends a PostgREST request with the service role headers.
func (s *SupabaseStore) do(ctx context.Context, method, rawURL string, body []byte, prefer string) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("supabase: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// Insert stores v.
func (s *SupabaseStore) Insert(ctx context.Context, v *models.AIVisit) error {
	if err := prepare(v); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("supabase: encode visit: %w", err)
	}

	start := time.Now()
	resp, err := s.do(ctx, http.MethodPost, s.endpoint(nil), body, "return=minimal")
	metrics.RecordStoreQuery(s.Backend(), "insert", time.Since(start), err)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// filterParams renders f as PostgREST query parameters.
func filterParams(f models.VisitFilter, limit int) url.Values {
	params := url.Values{}
	params.Set("select", "*")
	if !f.Start.IsZero() {
		params.Add("visited_at", "gte."+f.Start.UTC().Format(time.RFC3339Nano))
	}
	if !f.End.IsZero() {
		params.Add("visited_at", "lt."+f.End.UTC().Format(time.RFC3339Nano))
	}
	if f.Engine != "" {
		params.Set("engine", "eq."+f.Engine)
	}
	if f.SourceType != "" {
		params.Set("source_type", "eq."+string(f.SourceType))
	}
	params.Set("order", "visited_at.desc,id.desc")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if f.Offset > 0 {
		params.Set("offset", strconv.Itoa(f.Offset))
	}
	return params
}

// List returns matching visits newest first.
func (s *SupabaseStore) List(ctx context.Context, f models.VisitFilter) ([]models.AIVisit, error) {
	start := time.Now()
	resp, err := s.do(ctx, http.MethodGet, s.endpoint(filterParams(f, effectiveLimit(f.Limit, s.limit))), nil, "")
	if err != nil {
		metrics.RecordStoreQuery(s.Backend(), "list", time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	var out []models.AIVisit
	err = json.NewDecoder(io.LimitReader(resp.Body, maxSupabaseBodySize)).Decode(&out)
	metrics.RecordStoreQuery(s.Backend(), "list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("supabase: decode visits: %w", err)
	}
	for i := range out {
		out[i].VisitedAt = out[i].VisitedAt.UTC()
	}
	if out == nil {
		out = []models.AIVisit{}
	}
	return out, nil
}

// UpdateEngagement patches the session metrics of the visit with id. The
// updated ids are returned so a missing row is detected without relying
// on Content-Range.
func (s *SupabaseStore) UpdateEngagement(ctx context.Context, id string, timeOnPage, scrollDepth int) error {
	timeOnPage, scrollDepth = models.ClampEngagement(timeOnPage, scrollDepth)
	body, err := json.Marshal(map[string]int{"time_on_page": timeOnPage, "scroll_depth": scrollDepth})
	if err != nil {
		return fmt.Errorf("supabase: encode engagement: %w", err)
	}
	params := url.Values{}
	params.Set("id", "eq."+id)
	params.Set("select", "id")

	start := time.Now()
	resp, err := s.do(ctx, http.MethodPatch, s.endpoint(params), body, "return=representation")
	if err != nil {
		metrics.RecordStoreQuery(s.Backend(), "update", time.Since(start), err)
		return err
	}
	defer resp.Body.Close()

	var updated []struct {
		ID string `json:"id"`
	}
	err = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&updated)
	metrics.RecordStoreQuery(s.Backend(), "update", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("supabase: decode update: %w", err)
	}
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore removes visits older than t. The count comes from the
// Content-Range header PostgREST returns with Prefer: count=exact.
func (s *SupabaseStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	params := url.Values{}
	params.Set("visited_at", "lt."+t.UTC().Format(time.RFC3339Nano))

	start := time.Now()
	resp, err := s.do(ctx, http.MethodDelete, s.endpoint(params), nil, "return=minimal,count=exact")
	metrics.RecordStoreQuery(s.Backend(), "delete", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return parseContentRangeTotal(resp.Header.Get("Content-Range")), nil
}

// parseContentRangeTotal extracts N from "*/N" or "0-9/N"; unknown is 0.
func parseContentRangeTotal(v string) int64 {
	_, total, ok := strings.Cut(v, "/")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Ping selects a single id to confirm the table is reachable.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("select", "id")
	params.Set("limit", "1")
	resp, err := s.do(ctx, http.MethodGet, s.endpoint(params), nil, "")
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Close releases idle connections.
func (s *SupabaseStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
