// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the day format used in series and vendor requests.
const DateLayout = "2006-01-02"

// Ranges lists the supported dashboard ranges and their length in days.
var Ranges = map[string]int{
	"7d":  7,
	"28d": 28,
	"90d": 90,
}

// RangeNames returns the supported range names, shortest first.
func RangeNames() []string {
	names := make([]string, 0, len(Ranges))
	for name := range Ranges {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return Ranges[names[i]] < Ranges[names[j]] })
	return names
}

// Period is a whole-day UTC window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// ParseRange returns the period of the given range ending with the day
// that contains now.
func ParseRange(name string, now time.Time) (Period, error) {
	days, ok := Ranges[name]
	if !ok {
		return Period{}, fmt.Errorf("unknown range %q (want 7d, 28d or 90d)", name)
	}
	return LastDays(days, now), nil
}

// LastDays returns the n-day period ending with the day that contains now.
func LastDays(n int, now time.Time) Period {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return Period{Start: end.AddDate(0, 0, -n), End: end}
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours() / 24)
}

// Previous returns the period of equal length immediately before p.
func (p Period) Previous() Period {
	return Period{Start: p.Start.AddDate(0, 0, -p.Days()), End: p.Start}
}

// LastDay returns the final day in the period, for APIs with inclusive end dates.
func (p Period) LastDay() time.Time {
	return p.End.AddDate(0, 0, -1)
}

// DayKeys returns every day in the period formatted with DateLayout.
func (p Period) DayKeys() []string {
	keys := make([]string, 0, p.Days())
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DateLayout))
	}
	return keys
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
