// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

/*
Command aeoctl is the operator CLI for AEOPulse.

Usage:

	aeoctl [command]

Available Commands:

	classify       Classify a visit from its User-Agent and referrer
	hash-password  Print a bcrypt hash for ADMIN_PASSWORD_HASH
	citation-test  Ask the configured answer engines about a query
	purge          Delete stored AI visits older than the retention window

Examples:

	aeoctl classify --user-agent "Mozilla/5.0 (compatible; GPTBot/1.2)"
	aeoctl classify --referrer https://chatgpt.com/
	printf '%s' "$PASSWORD" | aeoctl hash-password
	aeoctl citation-test "best answer engine optimization tools" --brand AEOPulse
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aeoctl",
		Short:         "Operator tools for the AEOPulse site and dashboard",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newHashPasswordCmd())
	rootCmd.AddCommand(newCitationTestCmd())
	rootCmd.AddCommand(newPurgeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
