// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aeopulse/config.yaml",
	"/etc/aeopulse/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			SessionTimeout:    24 * time.Hour,
			CookieName:        "aeo_session",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
			TrustedProxies:    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Site: SiteConfig{
			Name:    "AEOPulse",
			BaseURL: "http://localhost:3000",
			Domains: []string{},
		},
		Visits: VisitsConfig{
			Backend:           VisitBackendMemory,
			Table:             "ai_visits",
			DuckDBPath:        "/data/aeopulse.duckdb",
			StoreOrganic:      false,
			RetentionDays:     0,
			RetentionInterval: 24 * time.Hour,
			QueryLimit:        10000,
		},
		GA4: GA4Config{
			BaseURL: "https://analyticsdata.googleapis.com",
		},
		SearchConsole: SearchConsoleConfig{
			BaseURL:  "https://www.googleapis.com",
			RowLimit: 250,
		},
		SEMrush: SEMrushConfig{
			Database:     "us",
			KeywordLimit: 100,
			BaseURL:      "https://api.semrush.com",
		},
		Connectors: ConnectorsConfig{
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 5,
		},
		Citation: CitationConfig{
			OpenAIModel:     "gpt-4o-mini",
			PerplexityModel: "sonar",
			AnthropicModel:  "claude-3-5-haiku-latest",
			Timeout:         45 * time.Second,
		},
		Dashboard: DashboardConfig{
			CacheTTL:        5 * time.Minute,
			DefaultRange:    "28d",
			SnapshotPath:    "",
			RefreshInterval: 0,
			MaxVisitRows:    200000,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables, after loading an optional .env file
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads KEY=VALUE pairs from .env (or DOTENV_PATH) into the process
// environment. Variables already set in the environment win.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"site.domains",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":       "server.port",
	"http_host":       "server.host",
	"http_timeout":    "server.timeout",
	"environment":     "server.environment",
	"app_environment": "server.environment",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"session_cookie_name": "security.cookie_name",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",
	"admin_password_hash": "security.admin_password_hash",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Site
	"site_name":     "site.name",
	"site_base_url": "site.base_url",
	"site_brand":    "site.brand",
	"site_domains":  "site.domains",

	// Visit store
	"visits_backend":            "visits.backend",
	"visits_table":              "visits.table",
	"duckdb_path":               "visits.duckdb_path",
	"database_url":              "visits.postgres_url",
	"visits_store_organic":      "visits.store_organic",
	"visits_retention_days":     "visits.retention_days",
	"visits_retention_interval": "visits.retention_interval",
	"visits_query_limit":        "visits.query_limit",

	// Supabase
	"supabase_url":              "supabase.url",
	"supabase_service_role_key": "supabase.service_key",
	"supabase_service_key":      "supabase.service_key",

	// Google
	"google_application_credentials": "google.credentials_file",
	"google_credentials_json":        "google.credentials_json",
	"google_access_token":            "google.access_token",
	"ga4_property_id":                "ga4.property_id",
	"ga4_base_url":                   "ga4.base_url",
	"gsc_site_url":                   "search_console.site_url",
	"gsc_base_url":                   "search_console.base_url",
	"gsc_row_limit":                  "search_console.row_limit",

	// SEMrush
	"semrush_api_key":       "semrush.api_key",
	"semrush_domain":        "semrush.domain",
	"semrush_database":      "semrush.database",
	"semrush_keyword_limit": "semrush.keyword_limit",
	"semrush_base_url":      "semrush.base_url",

	// Outbound connector tuning
	"connector_timeout":             "connectors.timeout",
	"connector_max_retries":         "connectors.max_retries",
	"connector_retry_base_delay":    "connectors.retry_base_delay",
	"connector_requests_per_second": "connectors.requests_per_second",

	// Citation test
	"openai_api_key":     "citation.openai_api_key",
	"openai_model":       "citation.openai_model",
	"perplexity_api_key": "citation.perplexity_api_key",
	"perplexity_model":   "citation.perplexity_model",
	"anthropic_api_key":  "citation.anthropic_api_key",
	"anthropic_model":    "citation.anthropic_model",
	"citation_timeout":   "citation.timeout",

	// Dashboard
	"dashboard_cache_ttl":        "dashboard.cache_ttl",
	"dashboard_default_range":    "dashboard.default_range",
	"dashboard_snapshot_path":    "dashboard.snapshot_path",
	"dashboard_refresh_interval": "dashboard.refresh_interval",
	"dashboard_max_visit_rows":   "dashboard.max_visit_rows",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" so they are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
