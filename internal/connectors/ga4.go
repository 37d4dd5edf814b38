// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/models"
)

const (
	ga4DateLayout    = "20060102"
	ga4RequestLayout = "2006-01-02"
	ga4PageLimit     = 50
	ga4SourceLimit   = 50
)

// GA4Client reads traffic reports from the Google Analytics Data API.
type GA4Client struct {
	api        *apiClient
	baseURL    string
	propertyID string
}

// NewGA4Client creates a GA4 client. httpClient must attach Google
// credentials; see GoogleTokenSource.
func NewGA4Client(cfg config.GA4Config, conn config.ConnectorsConfig, httpClient *http.Client) *GA4Client {
	return &GA4Client{
		api:        newAPIClient("ga4", httpClient, conn),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		propertyID: strings.TrimPrefix(cfg.PropertyID, "properties/"),
	}
}

// Name identifies the connector in logs and health output.
func (c *GA4Client) Name() string { return "ga4" }

type ga4DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ga4Name struct {
	Name string `json:"name"`
}

type ga4OrderBy struct {
	Metric    *ga4MetricOrder    `json:"metric,omitempty"`
	Dimension *ga4DimensionOrder `json:"dimension,omitempty"`
	Desc      bool               `json:"desc,omitempty"`
}

type ga4MetricOrder struct {
	MetricName string `json:"metricName"`
}

type ga4DimensionOrder struct {
	DimensionName string `json:"dimensionName"`
}

type ga4ReportRequest struct {
	DateRanges []ga4DateRange `json:"dateRanges"`
	Dimensions []ga4Name      `json:"dimensions"`
	Metrics    []ga4Name      `json:"metrics"`
	OrderBys   []ga4OrderBy   `json:"orderBys,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

type ga4Value struct {
	Value string `json:"value"`
}

type ga4Row struct {
	DimensionValues []ga4Value `json:"dimensionValues"`
	MetricValues    []ga4Value `json:"metricValues"`
}

type ga4ReportResponse struct {
	DimensionHeaders []ga4Name `json:"dimensionHeaders"`
	MetricHeaders    []ga4Name `json:"metricHeaders"`
	Rows             []ga4Row  `json:"rows"`
	RowCount         int       `json:"rowCount"`
}

// ga4Table gives name-based access to a report's cells.
type ga4Table struct {
	dims    map[string]int
	metrics map[string]int
	rows    []ga4Row
}

func newGA4Table(resp *ga4ReportResponse) *ga4Table {
	t := &ga4Table{
		dims:    make(map[string]int, len(resp.DimensionHeaders)),
		metrics: make(map[string]int, len(resp.MetricHeaders)),
		rows:    resp.Rows,
	}
	for i, h := range resp.DimensionHeaders {
		t.dims[h.Name] = i
	}
	for i, h := range resp.MetricHeaders {
		t.metrics[h.Name] = i
	}
	return t
}

func (t *ga4Table) dim(row ga4Row, name string) string {
	i, ok := t.dims[name]
	if !ok || i >= len(row.DimensionValues) {
		return ""
	}
	return row.DimensionValues[i].Value
}

func (t *ga4Table) int(row ga4Row, name string) int64 {
	i, ok := t.metrics[name]
	if !ok || i >= len(row.MetricValues) {
		return 0
	}
	n, err := strconv.ParseInt(row.MetricValues[i].Value, 10, 64)
	if err != nil {
		// Some metrics arrive as "12.0".
		f, ferr := strconv.ParseFloat(row.MetricValues[i].Value, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}

func (t *ga4Table) float(row ga4Row, name string) float64 {
	i, ok := t.metrics[name]
	if !ok || i >= len(row.MetricValues) {
		return 0
	}
	f, err := strconv.ParseFloat(row.MetricValues[i].Value, 64)
	if err != nil {
		return 0
	}
	return f
}

func (c *GA4Client) runReport(ctx context.Context, body ga4ReportRequest) (*ga4Table, error) {
	var resp ga4ReportResponse
	err := c.api.doJSON(ctx, request{
		method: http.MethodPost,
		url:    fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.baseURL, c.propertyID),
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return newGA4Table(&resp), nil
}

// RunReport fetches daily totals, top pages and sessions by source for the
// inclusive date range [start, end].
func (c *GA4Client) RunReport(ctx context.Context, start, end time.Time) (*models.GA4Report, error) {
	dates := []ga4DateRange{{
		StartDate: start.UTC().Format(ga4RequestLayout),
		EndDate:   end.UTC().Format(ga4RequestLayout),
	}}

	daily, err := c.runReport(ctx, ga4ReportRequest{
		DateRanges: dates,
		Dimensions: []ga4Name{{Name: "date"}},
		Metrics: []ga4Name{
			{Name: "sessions"},
			{Name: "totalUsers"},
			{Name: "screenPageViews"},
			{Name: "engagementRate"},
			{Name: "averageSessionDuration"},
		},
		OrderBys: []ga4OrderBy{{Dimension: &ga4DimensionOrder{DimensionName: "date"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("ga4 daily report: %w", err)
	}

	pages, err := c.runReport(ctx, ga4ReportRequest{
		DateRanges: dates,
		Dimensions: []ga4Name{{Name: "pagePath"}},
		Metrics:    []ga4Name{{Name: "screenPageViews"}},
		OrderBys:   []ga4OrderBy{{Metric: &ga4MetricOrder{MetricName: "screenPageViews"}, Desc: true}},
		Limit:      ga4PageLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("ga4 pages report: %w", err)
	}

	sources, err := c.runReport(ctx, ga4ReportRequest{
		DateRanges: dates,
		Dimensions: []ga4Name{{Name: "sessionSource"}},
		Metrics:    []ga4Name{{Name: "sessions"}},
		OrderBys:   []ga4OrderBy{{Metric: &ga4MetricOrder{MetricName: "sessions"}, Desc: true}},
		Limit:      ga4SourceLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("ga4 sources report: %w", err)
	}

	report := &models.GA4Report{
		Daily:   make([]models.GA4DailyRow, 0, len(daily.rows)),
		Pages:   make([]models.GA4PageRow, 0, len(pages.rows)),
		Sources: make([]models.GA4SourceRow, 0, len(sources.rows)),
	}
	for _, row := range daily.rows {
		date, err := time.Parse(ga4DateLayout, daily.dim(row, "date"))
		if err != nil {
			continue
		}
		report.Daily = append(report.Daily, models.GA4DailyRow{
			Date:                   date,
			Sessions:               daily.int(row, "sessions"),
			TotalUsers:             daily.int(row, "totalUsers"),
			PageViews:              daily.int(row, "screenPageViews"),
			EngagementRate:         daily.float(row, "engagementRate"),
			AverageSessionDuration: daily.float(row, "averageSessionDuration"),
		})
	}
	for _, row := range pages.rows {
		report.Pages = append(report.Pages, models.GA4PageRow{
			PagePath:  pages.dim(row, "pagePath"),
			PageViews: pages.int(row, "screenPageViews"),
		})
	}
	for _, row := range sources.rows {
		report.Sources = append(report.Sources, models.GA4SourceRow{
			Source:   sources.dim(row, "sessionSource"),
			Sessions: sources.int(row, "sessions"),
		})
	}
	return report, nil
}
