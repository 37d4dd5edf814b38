// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/aeopulse/internal/config"
)

// BcryptCost is used by HashPassword.
const BcryptCost = 12

// ErrInvalidCredentials is returned for a wrong email or password. The two
// cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNotConfigured is returned when no admin identity is configured.
var ErrNotConfigured = errors.New("admin credentials are not configured")

// dummyHash is compared against when the email does not match so both
// paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("aeopulse-timing-equalizer"), bcrypt.MinCost)

// Authenticator verifies the admin's email and password.
type Authenticator struct {
	email        string
	passwordHash []byte
	// plaintext is a sha256 digest so comparisons are fixed length.
	plaintext []byte
}

// NewAuthenticator builds the authenticator from cfg. The bcrypt hash wins
// when both a hash and a plaintext password are set.
func NewAuthenticator(cfg *config.SecurityConfig) (*Authenticator, error) {
	email := normalizeEmail(cfg.AdminEmail)
	if email == "" {
		return nil, ErrNotConfigured
	}

	a := &Authenticator{email: email}
	switch {
	case cfg.AdminPasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		a.passwordHash = []byte(cfg.AdminPasswordHash)
	case cfg.AdminPassword != "":
		sum := sha256.Sum256([]byte(cfg.AdminPassword))
		a.plaintext = sum[:]
	default:
		return nil, ErrNotConfigured
	}
	return a, nil
}

// Email returns the configured admin email, lowercased.
func (a *Authenticator) Email() string { return a.email }

// Authenticate checks email and password. It returns ErrInvalidCredentials
// on any mismatch.
func (a *Authenticator) Authenticate(email, password string) error {
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(a.email)) == 1

	var passwordOK bool
	if a.passwordHash != nil {
		hash := a.passwordHash
		if !emailOK {
			hash = dummyHash
		}
		passwordOK = bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	} else {
		sum := sha256.Sum256([]byte(password))
		passwordOK = subtle.ConstantTimeCompare(sum[:], a.plaintext) == 1
	}

	if !emailOK || !passwordOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
