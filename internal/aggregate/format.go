// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is displayed in place of values from a missing section.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators.
func FormatCount(v int64, available bool) string {
	if !available {
		return NotAvailable
	}
	return printer.Sprintf("%d", v)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(v float64, available bool) string {
	if !available {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", v)
}

// FormatChange renders a signed percentage change.
func FormatChange(v float64, available bool) string {
	if !available {
		return NotAvailable
	}
	if v > 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

// FormatDecimal renders a value with one decimal, such as an average position.
func FormatDecimal(v float64, available bool) string {
	if !available || v == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", v)
}

// FormatDuration renders seconds as "1m 05s" or "42s".
func FormatDuration(seconds float64, available bool) string {
	if !available {
		return NotAvailable
	}
	total := int64(math.Round(seconds))
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	return fmt.Sprintf("%dm %02ds", total/60, total%60)
}
