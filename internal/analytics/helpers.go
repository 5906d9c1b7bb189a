// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"math"
	"sort"
	"time"
)

// round2 rounds to two decimal places. All reported rates and ratios pass
// through it so results are stable across backends and platforms.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toPercentage converts num/den to a rounded percentage. A non-positive
// denominator or a non-finite result yields 0; NaN and Inf never escape.
func toPercentage(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	p := num / den * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return round2(p)
}

// mean returns the arithmetic mean, 0 for an empty series.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddevPop returns the population standard deviation
// (sqrt of the mean squared deviation), 0 for an empty series.
func stddevPop(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// median returns the middle value of the series (mean of the middle pair for
// even lengths), 0 for an empty series. The input is not modified.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile returns the p-th percentile (0..100) using nearest-rank on the
// sorted series, 0 for an empty series. The input is not modified.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p/100*float64(n))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}

// dayKey renders a timestamp as its UTC day.
func dayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// dayStart truncates a timestamp to its UTC midnight.
func dayStart(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
