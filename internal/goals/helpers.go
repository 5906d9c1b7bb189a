// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import "math"

// round2 rounds to two decimal places; every persisted and reported goal
// value goes through it.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// toPercentage returns 100*num/den rounded to two decimals, 0 when the
// denominator is not positive.
func toPercentage(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return round2(num / den * 100)
}
