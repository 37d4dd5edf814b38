// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package config loads AEOPulse configuration.
//
// Configuration is layered with Koanf v2:
//  1. Defaults: built-in values for every optional setting
//  2. Config file: optional YAML file (CONFIG_PATH or ./config.yaml)
//  3. Environment variables: override any mapped setting
//
// A .env file in the working directory is loaded into the process
// environment before layer 3 so local development needs no exports.
//
// Connectors are enabled by presence of their credentials: GA4 needs a
// property ID plus Google credentials, SEMrush needs an API key, and so on.
// A connector without credentials is reported as unavailable on the
// dashboard rather than as a failure.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Security      SecurityConfig      `koanf:"security"`
	Logging       LoggingConfig       `koanf:"logging"`
	Site          SiteConfig          `koanf:"site"`
	Visits        VisitsConfig        `koanf:"visits"`
	Supabase      SupabaseConfig      `koanf:"supabase"`
	Google        GoogleConfig        `koanf:"google"`
	GA4           GA4Config           `koanf:"ga4"`
	SearchConsole SearchConsoleConfig `koanf:"search_console"`
	SEMrush       SEMrushConfig       `koanf:"semrush"`
	Connectors    ConnectorsConfig    `koanf:"connectors"`
	Citation      CitationConfig      `koanf:"citation"`
	Dashboard     DashboardConfig     `koanf:"dashboard"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs with production checks.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// SecurityConfig holds admin authentication and request limiting settings.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	CookieName     string        `koanf:"cookie_name"`

	// AdminEmail is the single admin identity.
	AdminEmail string `koanf:"admin_email"`

	// AdminPasswordHash is a bcrypt hash (see `aeoctl hash-password`).
	// AdminPassword is accepted as plaintext for development only.
	AdminPasswordHash string `koanf:"admin_password_hash"`
	AdminPassword     string `koanf:"admin_password"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SiteConfig describes the content site and the brand the citation test
// looks for in AI answers.
type SiteConfig struct {
	Name    string   `koanf:"name"`
	BaseURL string   `koanf:"base_url"`
	Brand   string   `koanf:"brand"`
	Domains []string `koanf:"domains"`
}

// Visit store backends.
const (
	VisitBackendSupabase = "supabase"
	VisitBackendPostgres = "postgres"
	VisitBackendDuckDB   = "duckdb"
	VisitBackendMemory   = "memory"
)

// VisitsConfig selects and tunes the AI-visit store.
type VisitsConfig struct {
	Backend           string        `koanf:"backend"`
	Table             string        `koanf:"table"`
	DuckDBPath        string        `koanf:"duckdb_path"`
	PostgresURL       string        `koanf:"postgres_url"`
	StoreOrganic      bool          `koanf:"store_organic"`
	RetentionDays     int           `koanf:"retention_days"`
	RetentionInterval time.Duration `koanf:"retention_interval"`
	QueryLimit        int           `koanf:"query_limit"`
}

// SupabaseConfig holds the hosted PostgREST endpoint and service key.
type SupabaseConfig struct {
	URL        string `koanf:"url"`
	ServiceKey string `koanf:"service_key"`
}

// GoogleConfig holds credentials shared by the GA4 and Search Console connectors.
// CredentialsFile and CredentialsJSON hold a service-account key; AccessToken
// is a static bearer token for local development.
type GoogleConfig struct {
	CredentialsFile string `koanf:"credentials_file"`
	CredentialsJSON string `koanf:"credentials_json"`
	AccessToken     string `koanf:"access_token"`
}

// HasCredentials reports whether any Google credential source is configured.
func (g GoogleConfig) HasCredentials() bool {
	return g.CredentialsFile != "" || g.CredentialsJSON != "" || g.AccessToken != ""
}

// GA4Config holds the Google Analytics 4 property.
type GA4Config struct {
	PropertyID string `koanf:"property_id"`
	BaseURL    string `koanf:"base_url"`
}

// SearchConsoleConfig holds the Search Console property.
type SearchConsoleConfig struct {
	SiteURL  string `koanf:"site_url"`
	BaseURL  string `koanf:"base_url"`
	RowLimit int    `koanf:"row_limit"`
}

// SEMrushConfig holds SEMrush API settings.
type SEMrushConfig struct {
	APIKey       string `koanf:"api_key"`
	Domain       string `koanf:"domain"`
	Database     string `koanf:"database"`
	KeywordLimit int    `koanf:"keyword_limit"`
	BaseURL      string `koanf:"base_url"`
}

// ConnectorsConfig tunes outbound vendor requests.
type ConnectorsConfig struct {
	Timeout           time.Duration `koanf:"timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// CitationConfig holds LLM vendor credentials for the AEO citation test.
type CitationConfig struct {
	OpenAIKey       string        `koanf:"openai_api_key"`
	OpenAIModel     string        `koanf:"openai_model"`
	PerplexityKey   string        `koanf:"perplexity_api_key"`
	PerplexityModel string        `koanf:"perplexity_model"`
	AnthropicKey    string        `koanf:"anthropic_api_key"`
	AnthropicModel  string        `koanf:"anthropic_model"`
	Timeout         time.Duration `koanf:"timeout"`
}

// DashboardConfig tunes stats assembly.
type DashboardConfig struct {
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	DefaultRange string        `koanf:"default_range"`
	SnapshotPath string        `koanf:"snapshot_path"`
	// RefreshInterval rebuilds every range in the background so admin
	// requests hit a warm cache. Zero disables it.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	// MaxVisitRows bounds the visits read per period; beyond it the AI
	// visit counts are flagged as truncated.
	MaxVisitRows int `koanf:"max_visit_rows"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
