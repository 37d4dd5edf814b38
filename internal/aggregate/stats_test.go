// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package aggregate

import (
	"math"
	"testing"
	"time"
)

func TestSumAndAverage(t *testing.T) {
	t.Parallel()

	if got := Sum([]int64{1, 2, 3}); got != 6 {
		t.Errorf("Sum = %d, want 6", got)
	}
	if got := Sum([]float64{}); got != 0 {
		t.Errorf("Sum(empty) = %v, want 0", got)
	}
	if got := Average([]int{2, 4, 9}); got != 5 {
		t.Errorf("Average = %v, want 5", got)
	}
	if got := Average([]int{}); got != 0 {
		t.Errorf("Average(empty) = %v, want 0", got)
	}
}

func TestWeightedAverage(t *testing.T) {
	t.Parallel()

	got := WeightedAverage([]float64{10, 20}, []float64{1, 3})
	if got != 17.5 {
		t.Errorf("WeightedAverage = %v, want 17.5", got)
	}
	if got := WeightedAverage([]float64{10}, []float64{0}); got != 0 {
		t.Errorf("WeightedAverage zero weights = %v, want 0", got)
	}
	if got := WeightedAverage([]float64{10, 99}, []float64{2}); got != 10 {
		t.Errorf("WeightedAverage mismatched = %v, want 10", got)
	}
}

func TestPercentChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prev, cur float64
		want      float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 0, 42, 100},
		{"to negative from zero", 0, -3, -100},
		{"doubled", 50, 100, 100},
		{"halved", 100, 50, -50},
		{"rounded", 3, 4, 33.3},
		{"unchanged", 7, 7, 0},
		{"negative base", -10, -5, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PercentChange(tt.prev, tt.cur); got != tt.want {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := map[float64]int{
		-5:         0,
		0:          0,
		49.5:       50,
		49.4:       49,
		100:        100,
		250:        100,
		math.NaN(): 0,
	}
	for in, want := range tests {
		if got := ClampScore(in); got != want {
			t.Errorf("ClampScore(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestShare(t *testing.T) {
	t.Parallel()

	if got := Share(1, 3); got != 33.3 {
		t.Errorf("Share(1,3) = %v, want 33.3", got)
	}
	if got := Share(5, 0); got != 0 {
		t.Errorf("Share(5,0) = %v, want 0", got)
	}
}

func TestPeriod(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	p, err := ParseRange("7d", now)
	if err != nil {
		t.Fatalf("ParseRange() error = %v", err)
	}

	wantStart := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Errorf("period = [%v, %v), want [%v, %v)", p.Start, p.End, wantStart, wantEnd)
	}
	if p.Days() != 7 {
		t.Errorf("Days() = %d, want 7", p.Days())
	}
	if got := p.LastDay().Format(DateLayout); got != "2026-03-10" {
		t.Errorf("LastDay() = %s, want 2026-03-10", got)
	}

	keys := p.DayKeys()
	if len(keys) != 7 || keys[0] != "2026-03-04" || keys[6] != "2026-03-10" {
		t.Errorf("DayKeys() = %v", keys)
	}

	prev := p.Previous()
	if !prev.End.Equal(p.Start) || prev.Days() != 7 {
		t.Errorf("Previous() = [%v, %v)", prev.Start, prev.End)
	}

	if !p.Contains(now) || p.Contains(wantEnd) || !p.Contains(wantStart) {
		t.Error("Contains() boundaries wrong")
	}

	if _, err := ParseRange("1y", now); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"count", FormatCount(1234567, true), "1,234,567"},
		{"count n/a", FormatCount(5, false), NotAvailable},
		{"percent", FormatPercent(12.345, true), "12.3%"},
		{"change up", FormatChange(4.5, true), "+4.5%"},
		{"change down", FormatChange(-2, true), "-2.0%"},
		{"change flat", FormatChange(0, true), "0.0%"},
		{"change n/a", FormatChange(1, false), NotAvailable},
		{"decimal", FormatDecimal(8.26, true), "8.3"},
		{"decimal zero", FormatDecimal(0, true), NotAvailable},
		{"duration short", FormatDuration(42.4, true), "42s"},
		{"duration long", FormatDuration(65, true), "1m 05s"},
		{"duration n/a", FormatDuration(65, false), NotAvailable},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
