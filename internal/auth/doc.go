// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

/*
Package auth implements admin authentication for the dashboard.

There is exactly one identity, the admin, configured by email and password:

	ADMIN_EMAIL=owner@example.com
	ADMIN_PASSWORD_HASH=$2a$12$...   # aeoctl hash-password
	ADMIN_PASSWORD=dev-only          # plaintext, development only

A successful login issues an HS256 JWT (github.com/golang-jwt/jwt/v5) that
is stored in an HttpOnly, SameSite=Strict cookie. The cookie is marked
Secure when the request arrived over TLS, directly or through a trusted
proxy that sets X-Forwarded-Proto.

Middleware accepts the cookie or an "Authorization: Bearer" header.
RequireAPI answers 401 with a JSON error envelope; RequirePage redirects
the browser to the login page.

Security headers (CSP with a per-request script nonce, HSTS on TLS, frame
and MIME sniffing protection) are applied by SecurityHeaders.
*/
package auth
