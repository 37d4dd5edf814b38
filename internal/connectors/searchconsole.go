// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/models"
)

// Search Console dimensions.
const (
	DimensionDate  = "date"
	DimensionQuery = "query"
	DimensionPage  = "page"
)

// SearchConsoleClient reads Search Analytics data for one property.
type SearchConsoleClient struct {
	api      *apiClient
	baseURL  string
	siteURL  string
	rowLimit int
}

// NewSearchConsoleClient creates a Search Console client. httpClient must
// attach Google credentials.
func NewSearchConsoleClient(cfg config.SearchConsoleConfig, conn config.ConnectorsConfig, httpClient *http.Client) *SearchConsoleClient {
	return &SearchConsoleClient{
		api:      newAPIClient("search_console", httpClient, conn),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		siteURL:  cfg.SiteURL,
		rowLimit: cfg.RowLimit,
	}
}

// Name identifies the connector in logs and health output.
func (c *SearchConsoleClient) Name() string { return "search_console" }

type searchQueryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit,omitempty"`
	DataState  string   `json:"dataState,omitempty"`
}

type searchQueryResponse struct {
	Rows []models.SearchRow `json:"rows"`
}

// QueryDimension runs one searchAnalytics/query call grouped by dimension
// over the inclusive date range [start, end].
func (c *SearchConsoleClient) QueryDimension(ctx context.Context, dimension string, start, end time.Time) ([]models.SearchRow, error) {
	limit := c.rowLimit
	if dimension == DimensionDate {
		// One row per day; never truncate the series.
		limit = 0
	}
	var resp searchQueryResponse
	err := c.api.doJSON(ctx, request{
		method: http.MethodPost,
		url:    fmt.Sprintf("%s/webmasters/v3/sites/%s/searchAnalytics/query", c.baseURL, url.PathEscape(c.siteURL)),
		body: searchQueryRequest{
			StartDate:  start.UTC().Format(ga4RequestLayout),
			EndDate:    end.UTC().Format(ga4RequestLayout),
			Dimensions: []string{dimension},
			RowLimit:   limit,
			DataState:  "all",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search console %s query: %w", dimension, err)
	}
	return resp.Rows, nil
}

// Query fetches rows by date, query and page for the inclusive range.
func (c *SearchConsoleClient) Query(ctx context.Context, start, end time.Time) (*models.SearchReport, error) {
	daily, err := c.QueryDimension(ctx, DimensionDate, start, end)
	if err != nil {
		return nil, err
	}
	queries, err := c.QueryDimension(ctx, DimensionQuery, start, end)
	if err != nil {
		return nil, err
	}
	pages, err := c.QueryDimension(ctx, DimensionPage, start, end)
	if err != nil {
		return nil, err
	}
	return &models.SearchReport{Daily: daily, Queries: queries, Pages: pages}, nil
}
