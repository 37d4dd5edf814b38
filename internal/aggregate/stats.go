// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package aggregate turns connector rows into dashboard view models.
//
// Every function here is pure: no I/O, no clocks, no shared state. Missing
// input yields a zero-valued summary with Available=false, which the
// dashboard renders as "N/A".
package aggregate

import (
	"math"
)

// Number is the set of numeric types the helpers accept.
type Number interface {
	~int | ~int64 | ~float64
}

// Sum adds all values.
func Sum[T Number](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

// Average returns the arithmetic mean, or 0 for empty input.
func Average[T Number](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(Sum(values)) / float64(len(values))
}

// WeightedAverage returns sum(values[i]*weights[i]) / sum(weights), or 0
// when the weights sum to zero. Extra entries in the longer slice are ignored.
func WeightedAverage(values, weights []float64) float64 {
	n := min(len(values), len(weights))
	var num, den float64
	for i := 0; i < n; i++ {
		num += values[i] * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// PercentChange returns the change from previous to current in percent,
// rounded to one decimal place. Growth from zero is reported as 100 and
// zero-to-zero as 0.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		if current > 0 {
			return 100
		}
		return -100
	}
	return Round1((current - previous) / math.Abs(previous) * 100)
}

// Share returns part/total in percent rounded to one decimal, or 0 when total is 0.
func Share(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(part) / float64(total) * 100)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampScore rounds v and clamps it into 0..100. NaN scores as 0.
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	switch {
	case v <= 0:
		return 0
	case v >= 100:
		return 100
	}
	return int(math.Round(v))
}
