// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package connectors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/tomtom215/aeopulse/internal/config"
)

// OAuth scopes for the Google APIs used by the dashboard.
const (
	ScopeAnalyticsReadonly  = "https://www.googleapis.com/auth/analytics.readonly"
	ScopeWebmastersReadonly = "https://www.googleapis.com/auth/webmasters.readonly"

	defaultGoogleTokenURL = "https://oauth2.googleapis.com/token"
)

// ErrNoGoogleCredentials is returned when no Google credential is configured.
var ErrNoGoogleCredentials = errors.New("google credentials not configured")

// serviceAccountKey is the subset of a service account JSON key we need.
type serviceAccountKey struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// GoogleTokenSource builds a token source from the configured credentials.
// A static access token takes precedence over a service account key, which
// is read from CredentialsJSON or else CredentialsFile.
func GoogleTokenSource(ctx context.Context, cfg config.GoogleConfig, scopes ...string) (oauth2.TokenSource, error) {
	if cfg.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}), nil
	}

	var raw []byte
	switch {
	case cfg.CredentialsJSON != "":
		raw = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		raw = b
	default:
		return nil, ErrNoGoogleCredentials
	}

	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	if key.Type != "" && key.Type != "service_account" {
		return nil, fmt.Errorf("google credentials: unsupported type %q (want service_account)", key.Type)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, errors.New("google credentials: client_email and private_key are required")
	}
	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = defaultGoogleTokenURL
	}

	jwtCfg := &jwt.Config{
		Email:        key.ClientEmail,
		PrivateKey:   []byte(key.PrivateKey),
		PrivateKeyID: key.PrivateKeyID,
		Scopes:       scopes,
		TokenURL:     tokenURL,
	}
	return jwtCfg.TokenSource(ctx), nil
}

// googleHTTPClient returns an http.Client that authorizes requests with ts.
func googleHTTPClient(ts oauth2.TokenSource, cfg config.ConnectorsConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   http.DefaultTransport,
		},
	}
}
