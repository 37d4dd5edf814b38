// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// maxUserAgentLength bounds user agents written to security logs.
const maxUserAgentLength = 200

// SecurityEvent represents an authentication event for audit logging.
type SecurityEvent struct {
	Event     string
	Email     string
	IPAddress string
	UserAgent string
	Success   bool
	Reason    string
}

// SecurityLogger logs authentication events with the admin email masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogEvent writes a security event.
func (l *SecurityLogger) LogEvent(ev *SecurityEvent) {
	var e *zerolog.Event
	if ev.Success {
		e = l.logger.Info()
	} else {
		e = l.logger.Warn()
	}
	e = e.Str("event", ev.Event).Bool("success", ev.Success)
	if ev.Email != "" {
		e = e.Str("email", MaskEmail(ev.Email))
	}
	if ev.IPAddress != "" {
		e = e.Str("ip", ev.IPAddress)
	}
	if ev.UserAgent != "" {
		e = e.Str("user_agent", truncate(ev.UserAgent, maxUserAgentLength))
	}
	if ev.Reason != "" {
		e = e.Str("reason", ev.Reason)
	}
	e.Msg("security event")
}

// LogLoginSuccess logs a successful admin login.
func (l *SecurityLogger) LogLoginSuccess(email, ip, userAgent string) {
	l.LogEvent(&SecurityEvent{Event: "login_success", Email: email, IPAddress: ip, UserAgent: userAgent, Success: true})
}

// LogLoginFailure logs a rejected admin login.
func (l *SecurityLogger) LogLoginFailure(email, ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{Event: "login_failed", Email: email, IPAddress: ip, UserAgent: userAgent, Reason: reason})
}

// LogLogout logs a logout.
func (l *SecurityLogger) LogLogout(email, ip string) {
	l.LogEvent(&SecurityEvent{Event: "logout", Email: email, IPAddress: ip, Success: true})
}

// MaskEmail keeps the first character of the local part and the domain:
// "admin@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
