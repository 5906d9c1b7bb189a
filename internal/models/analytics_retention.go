// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

// RetentionBucket measures return-activity at one fixed day offset from a
// cohort's signup day. Offset 0 is always 100%.
type RetentionBucket struct {
	Offset        int     `json:"offset"`
	Date          string  `json:"date"`
	RetainedUsers int     `json:"retained_users"`
	RetentionRate float64 `json:"retention_rate"`
}

// RetentionCohort is the set of users who signed up on the same UTC day,
// with their retention measured at each tracked offset.
type RetentionCohort struct {
	Cohort  string            `json:"cohort"`
	Size    int               `json:"size"`
	Buckets []RetentionBucket `json:"buckets"`
}

// RetentionAverage is the cross-cohort retention at one offset, aggregated
// as sum(retained)/sum(size) rather than a mean of per-cohort rates.
type RetentionAverage struct {
	Offset        int     `json:"offset"`
	RetentionRate float64 `json:"retention_rate"`
	SampleSize    int     `json:"sample_size"`
}

// RetentionWindow describes the resolved window of a retention query.
type RetentionWindow struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Cohorts int    `json:"cohorts"`
}

// UserRetentionSummary is the result of a retention query. Cohorts are
// ordered most-recent-first.
type UserRetentionSummary struct {
	Window    RetentionWindow    `json:"window"`
	MaxOffset int                `json:"max_offset"`
	Averages  []RetentionAverage `json:"averages"`
	Cohorts   []RetentionCohort  `json:"cohorts"`
}
