// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum HS256 secret length accepted.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateSite,
		c.validateVisits,
		c.validateGoogle,
		c.validateSEMrush,
		c.validateConnectors,
		c.validateCitation,
		c.validateDashboard,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production", "test":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, production, test; got %q", c.Server.Environment)
	}
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if !strings.Contains(c.Security.AdminEmail, "@") {
		return fmt.Errorf("ADMIN_EMAIL must be an email address")
	}
	if c.Security.AdminPasswordHash == "" && c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required")
	}
	if c.Server.IsProduction() && c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ENVIRONMENT=production")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSite() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("SITE_BASE_URL is required")
	}
	return validateHTTPURL(c.Site.BaseURL, "SITE_BASE_URL")
}

func (c *Config) validateVisits() error {
	switch c.Visits.Backend {
	case VisitBackendSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required when VISITS_BACKEND=supabase")
		}
		if err := validateHTTPURL(c.Supabase.URL, "SUPABASE_URL"); err != nil {
			return err
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required when VISITS_BACKEND=supabase")
		}
	case VisitBackendPostgres:
		if c.Visits.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required when VISITS_BACKEND=postgres")
		}
	case VisitBackendDuckDB:
		if c.Visits.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required when VISITS_BACKEND=duckdb")
		}
	case VisitBackendMemory:
	default:
		return fmt.Errorf("VISITS_BACKEND must be one of supabase, postgres, duckdb, memory; got %q", c.Visits.Backend)
	}
	if c.Visits.Table == "" || !isIdentifier(c.Visits.Table) {
		return fmt.Errorf("VISITS_TABLE must be a plain SQL identifier, got %q", c.Visits.Table)
	}
	if c.Visits.RetentionDays < 0 {
		return fmt.Errorf("VISITS_RETENTION_DAYS must not be negative")
	}
	if c.Visits.RetentionDays > 0 && c.Visits.RetentionInterval <= 0 {
		return fmt.Errorf("VISITS_RETENTION_INTERVAL must be positive when retention is enabled")
	}
	if c.Visits.QueryLimit <= 0 {
		return fmt.Errorf("VISITS_QUERY_LIMIT must be positive")
	}
	return nil
}

func (c *Config) validateGoogle() error {
	if c.GA4.PropertyID != "" && !c.Google.HasCredentials() {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS, GOOGLE_CREDENTIALS_JSON or GOOGLE_ACCESS_TOKEN is required when GA4_PROPERTY_ID is set")
	}
	if c.SearchConsole.SiteURL != "" && !c.Google.HasCredentials() {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS, GOOGLE_CREDENTIALS_JSON or GOOGLE_ACCESS_TOKEN is required when GSC_SITE_URL is set")
	}
	if c.SearchConsole.RowLimit < 1 || c.SearchConsole.RowLimit > 25000 {
		return fmt.Errorf("GSC_ROW_LIMIT must be between 1 and 25000")
	}
	return nil
}

func (c *Config) validateSEMrush() error {
	if c.SEMrush.APIKey != "" && c.SEMrush.Domain == "" {
		return fmt.Errorf("SEMRUSH_DOMAIN is required when SEMRUSH_API_KEY is set")
	}
	if c.SEMrush.KeywordLimit <= 0 {
		return fmt.Errorf("SEMRUSH_KEYWORD_LIMIT must be positive")
	}
	return nil
}

func (c *Config) validateConnectors() error {
	if c.Connectors.Timeout <= 0 {
		return fmt.Errorf("CONNECTOR_TIMEOUT must be positive")
	}
	if c.Connectors.MaxRetries < 0 {
		return fmt.Errorf("CONNECTOR_MAX_RETRIES must not be negative")
	}
	if c.Connectors.RequestsPerSecond <= 0 {
		return fmt.Errorf("CONNECTOR_REQUESTS_PER_SECOND must be positive")
	}
	return nil
}

func (c *Config) validateCitation() error {
	if c.Citation.Timeout <= 0 {
		return fmt.Errorf("CITATION_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	switch c.Dashboard.DefaultRange {
	case "7d", "28d", "90d":
	default:
		return fmt.Errorf("DASHBOARD_DEFAULT_RANGE must be one of 7d, 28d, 90d; got %q", c.Dashboard.DefaultRange)
	}
	if c.Dashboard.CacheTTL < 0 {
		return fmt.Errorf("DASHBOARD_CACHE_TTL must not be negative")
	}
	if c.Dashboard.RefreshInterval < 0 {
		return fmt.Errorf("DASHBOARD_REFRESH_INTERVAL must not be negative")
	}
	if c.Dashboard.MaxVisitRows < 0 {
		return fmt.Errorf("DASHBOARD_MAX_VISIT_ROWS must not be negative")
	}
	return nil
}

// isIdentifier reports whether s is safe to interpolate as a table name.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
