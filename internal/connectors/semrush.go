// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/models"
)

// semrushNothingFound is the body SEMrush returns for an empty report.
const semrushNothingFound = "ERROR 50 :: NOTHING FOUND"

// SEMrushClient reads domain reports from the SEMrush Analytics API.
type SEMrushClient struct {
	api          *apiClient
	baseURL      string
	apiKey       string
	domain       string
	database     string
	keywordLimit int
}

// NewSEMrushClient creates a SEMrush client. A nil httpClient uses a
// default client with the connector timeout.
func NewSEMrushClient(cfg config.SEMrushConfig, conn config.ConnectorsConfig, httpClient *http.Client) *SEMrushClient {
	return &SEMrushClient{
		api:          newAPIClient("semrush", httpClient, conn),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		domain:       cfg.Domain,
		database:     cfg.Database,
		keywordLimit: cfg.KeywordLimit,
	}
}

// Name identifies the connector in logs and health output.
func (c *SEMrushClient) Name() string { return "semrush" }

// fetch runs one report and returns its data rows without the header.
func (c *SEMrushClient) fetch(ctx context.Context, params url.Values) ([][]string, error) {
	params.Set("key", c.apiKey)
	params.Set("database", c.database)

	body, err := c.api.do(ctx, request{
		method: http.MethodGet,
		url:    c.baseURL + "/?" + params.Encode(),
	})
	if err != nil {
		return nil, err
	}
	return parseSEMrushCSV(body)
}

// parseSEMrushCSV parses a semicolon separated report. SEMrush signals
// errors with a 200 response whose body starts with "ERROR".
func parseSEMrushCSV(body []byte) ([][]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == semrushNothingFound {
		return nil, nil
	}
	if bytes.HasPrefix(trimmed, []byte("ERROR")) {
		return nil, fmt.Errorf("semrush: %s", trimmed)
	}

	r := csv.NewReader(bytes.NewReader(trimmed))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("semrush: parse csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func fieldInt(rec []string, i int) int64 {
	n, err := strconv.ParseInt(field(rec, i), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func fieldFloat(rec []string, i int) float64 {
	f, err := strconv.ParseFloat(field(rec, i), 64)
	if err != nil {
		return 0
	}
	return f
}

// DomainOverview returns the domain_ranks report. A domain SEMrush knows
// nothing about yields a zero overview, not an error.
func (c *SEMrushClient) DomainOverview(ctx context.Context) (*models.SEMrushOverview, error) {
	params := url.Values{}
	params.Set("type", "domain_ranks")
	params.Set("domain", c.domain)
	params.Set("export_columns", "Dn,Rk,Or,Ot,Oc,Ad")

	rows, err := c.fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("semrush domain_ranks: %w", err)
	}
	overview := &models.SEMrushOverview{Domain: c.domain}
	if len(rows) == 0 {
		return overview, nil
	}
	rec := rows[0]
	if d := field(rec, 0); d != "" {
		overview.Domain = d
	}
	overview.Rank = fieldInt(rec, 1)
	overview.OrganicKeywords = fieldInt(rec, 2)
	overview.OrganicTraffic = fieldInt(rec, 3)
	overview.OrganicCost = fieldInt(rec, 4)
	overview.AdwordsKeywords = fieldInt(rec, 5)
	return overview, nil
}

// OrganicKeywords returns the domain_organic report sorted by traffic share.
func (c *SEMrushClient) OrganicKeywords(ctx context.Context) ([]models.SEMrushKeyword, error) {
	params := url.Values{}
	params.Set("type", "domain_organic")
	params.Set("domain", c.domain)
	params.Set("export_columns", "Ph,Po,Nq,Tr,Ur")
	params.Set("display_sort", "tr_desc")
	if c.keywordLimit > 0 {
		params.Set("display_limit", strconv.Itoa(c.keywordLimit))
	}

	rows, err := c.fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("semrush domain_organic: %w", err)
	}
	keywords := make([]models.SEMrushKeyword, 0, len(rows))
	for _, rec := range rows {
		keywords = append(keywords, models.SEMrushKeyword{
			Keyword:      field(rec, 0),
			Position:     int(fieldInt(rec, 1)),
			SearchVolume: fieldInt(rec, 2),
			TrafficShare: fieldFloat(rec, 3),
			URL:          field(rec, 4),
		})
	}
	return keywords, nil
}

// Report fetches the overview and keyword reports.
func (c *SEMrushClient) Report(ctx context.Context) (*models.SEMrushReport, error) {
	overview, err := c.DomainOverview(ctx)
	if err != nil {
		return nil, err
	}
	keywords, err := c.OrganicKeywords(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SEMrushReport{Overview: *overview, Keywords: keywords}, nil
}
