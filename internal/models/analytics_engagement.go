// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

// HeatmapCell aggregates the sessions starting in one (day-of-week, hour)
// bucket, UTC.
type HeatmapCell struct {
	Hour          int              `json:"hour"`
	TotalSessions int              `json:"total_sessions"`
	ModeBreakdown map[ChatMode]int `json:"mode_breakdown"`
	UniqueUsers   int              `json:"unique_users"`
}

// HeatmapRow is one day-of-week row of 24 hourly cells. Day 0 is Sunday.
type HeatmapRow struct {
	Day   int           `json:"day"`
	Label string        `json:"label"`
	Hours []HeatmapCell `json:"hours"`
}

// HeatmapPeak identifies the busiest cell of the grid.
type HeatmapPeak struct {
	Day           int `json:"day"`
	Hour          int `json:"hour"`
	TotalSessions int `json:"total_sessions"`
}

// HeatmapTotals aggregates the whole grid.
type HeatmapTotals struct {
	Sessions    int          `json:"sessions"`
	UniqueUsers int          `json:"unique_users"`
	Peak        *HeatmapPeak `json:"peak,omitempty"`
}

// EngagementHeatmapSnapshot is the result of an engagement heatmap query.
type EngagementHeatmapSnapshot struct {
	Window Window        `json:"window"`
	Totals HeatmapTotals `json:"totals"`
	Modes  []ChatMode    `json:"modes"`
	Rows   []HeatmapRow  `json:"rows"`
}

// DurationBin is one fixed bucket of the session-duration distribution.
// MaxSeconds is nil for the open-ended top bucket.
type DurationBin struct {
	Label      string   `json:"label"`
	MinSeconds float64  `json:"min_seconds"`
	MaxSeconds *float64 `json:"max_seconds"`
	Count      int      `json:"count"`
	Share      float64  `json:"share"`
}

// DurationMetrics summarizes completed-session durations over the window.
type DurationMetrics struct {
	MedianSeconds     float64          `json:"median_seconds"`
	AverageSeconds    float64          `json:"average_seconds"`
	P90Seconds        float64          `json:"p90_seconds"`
	CompletedSessions int              `json:"completed_sessions"`
	Distribution      []DurationBin    `json:"distribution"`
	Sparkline         []SparklinePoint `json:"sparkline"`
}

// DepthMetrics summarizes per-user session depth over the window.
type DepthMetrics struct {
	MedianSessionsPerUser  float64          `json:"median_sessions_per_user"`
	AverageSessionsPerUser float64          `json:"average_sessions_per_user"`
	HeavyUserThreshold     int              `json:"heavy_user_threshold"`
	HeavyUserCount         int              `json:"heavy_user_count"`
	HeavyUserShare         float64          `json:"heavy_user_share"`
	PerModeSessions        map[ChatMode]int `json:"per_mode_sessions"`
}

// EngagementCohortType is the segmentation axis of an engagement cohort.
type EngagementCohortType string

const (
	CohortPlatform     EngagementCohortType = "platform"
	CohortSignupSource EngagementCohortType = "signup_source"
	CohortGender       EngagementCohortType = "gender"
	CohortSubscription EngagementCohortType = "subscription"
)

// EngagementCohort is one segment's share of session volume.
type EngagementCohort struct {
	Key         string               `json:"key"`
	Label       string               `json:"label"`
	Type        EngagementCohortType `json:"type"`
	Sessions    int                  `json:"sessions"`
	UniqueUsers int                  `json:"unique_users"`
	Share       float64              `json:"share"`
}

// EngagementTotals aggregates session and user activity over the window.
type EngagementTotals struct {
	Sessions          int     `json:"sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	ActiveSessions    int     `json:"active_sessions"`
	UniqueUsers       int     `json:"unique_users"`
	RepeatUsers       int     `json:"repeat_users"`
	RepeatRate        float64 `json:"repeat_rate"`
	ChurnRate         float64 `json:"churn_rate"`
}

// EngagementSummarySnapshot is the result of an engagement summary query.
type EngagementSummarySnapshot struct {
	Window    Window             `json:"window"`
	Totals    EngagementTotals   `json:"totals"`
	Durations DurationMetrics    `json:"durations"`
	Depth     DepthMetrics       `json:"depth"`
	Cohorts   []EngagementCohort `json:"cohorts"`
}
