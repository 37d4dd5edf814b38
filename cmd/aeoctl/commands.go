// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/aeopulse/internal/auth"
	"github.com/tomtom215/aeopulse/internal/citation"
	"github.com/tomtom215/aeopulse/internal/config"
	"github.com/tomtom215/aeopulse/internal/detection"
	"github.com/tomtom215/aeopulse/internal/logging"
	"github.com/tomtom215/aeopulse/internal/validation"
	"github.com/tomtom215/aeopulse/internal/visits"
)

func newClassifyCmd() *cobra.Command {
	var userAgent, referrer, landingURL string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a visit from its User-Agent and referrer",
		Example: `  aeoctl classify --user-agent "Mozilla/5.0 (compatible; PerplexityBot/1.0)"
  aeoctl classify --referrer https://www.perplexity.ai/search?q=aeo
  aeoctl classify --landing-url "https://example.com/?utm_source=chatgpt.com" --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userAgent == "" && referrer == "" && landingURL == "" {
				return errors.New("at least one of --user-agent, --referrer or --landing-url is required")
			}
			d := detection.ClassifyRequest(userAgent, referrer, landingURL)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source:  %s\n", d.SourceType)
			if d.IsAI() {
				fmt.Fprintf(out, "Engine:  %s\n", d.Engine)
				fmt.Fprintf(out, "Matched: %s\n", d.Matched)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userAgent, "user-agent", "u", "", "User-Agent header")
	cmd.Flags().StringVarP(&referrer, "referrer", "r", "", "Referer header")
	cmd.Flags().StringVarP(&landingURL, "landing-url", "l", "", "Landing URL (utm_source is checked)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long: `Reads the password from the first line of stdin and prints its bcrypt
hash. Passing the password as an argument would leave it in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newCitationTestCmd() *cobra.Command {
	var brand string
	var domains []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "citation-test <query>",
		Short: "Ask the configured answer engines about a query",
		Long: `Sends the query to every answer engine with an API key and reports
whether each answer mentions the brand or one of its domains. Brand and
domains default to SITE_BRAND and SITE_DOMAINS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			req := citation.Request{Query: args[0], Brand: brand, Domains: domains}
			if req.Brand == "" {
				req.Brand = cfg.Site.Brand
			}
			if len(req.Domains) == 0 {
				req.Domains = cfg.Site.Domains
			}
			if err := validation.ValidateStruct(&req); err != nil {
				return err
			}

			tester := citation.New(cfg.Citation, nil)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Citation.Timeout+5*time.Second)
			defer cancel()

			result, err := tester.Run(ctx, req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printCitationResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&brand, "brand", "b", "", "Brand name to look for")
	cmd.Flags().StringSliceVarP(&domains, "domain", "d", nil, "Domain to look for (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func printCitationResult(out io.Writer, r *citation.Result) {
	fmt.Fprintf(out, "Query: %s\n", r.Query)
	fmt.Fprintf(out, "Brand: %s %v\n\n", r.Brand, r.Domains)
	for _, v := range r.Vendors {
		fmt.Fprintf(out, "  %-11s %-14s", v.Vendor, v.Status)
		switch {
		case v.Error != "":
			fmt.Fprintf(out, " %s", v.Error)
		case v.Cited:
			fmt.Fprintf(out, " %s", strings.Join(v.Matches, ", "))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\nCited by %d of %d answering engines (%.0f%%)\n", r.Cited, r.Answered, r.CitationRate*100)
}

func newPurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stored AI visits older than the retention window",
		Long: `Deletes visits older than --days (default VISITS_RETENTION_DAYS) from
the configured visit store. The server does the same on a schedule when
retention is enabled; this runs it once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.Visits.RetentionDays
			}
			if days <= 0 {
				return errors.New("retention is disabled: pass --days or set VISITS_RETENTION_DAYS")
			}

			store, err := visits.NewStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			return purgeVisits(cmd.Context(), cmd.OutOrStdout(), store, days, time.Now())
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days")
	return cmd
}

// purgeVisits deletes visits older than days before now and reports the count.
func purgeVisits(ctx context.Context, w io.Writer, store visits.Store, days int, now time.Time) error {
	cutoff := now.UTC().AddDate(0, 0, -days)
	n, err := store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge visits: %w", err)
	}
	fmt.Fprintf(w, "Deleted %d visits older than %s from %s\n", n, cutoff.Format(time.RFC3339), store.Backend())
	return nil
}

// loadConfig reads the server configuration and keeps logs quiet so command
// output stays readable.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{Level: "warn", Format: "console"})
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
