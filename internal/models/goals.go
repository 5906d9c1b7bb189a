// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// GoalMetric identifies the value calculator backing a goal.
type GoalMetric string

const (
	// MetricCoins tracks the total coin balance across all users.
	MetricCoins GoalMetric = "coins"

	// MetricProfileCompletion tracks the percentage of verified profiles.
	MetricProfileCompletion GoalMetric = "profile_completion"

	// MetricMatches tracks the count of completed chat sessions.
	MetricMatches GoalMetric = "matches"

	// MetricCustom is a manually recorded metric; calculators cannot
	// synthesize it and carry the last recorded snapshot value forward.
	MetricCustom GoalMetric = "custom"
)

// GoalStatus is the progress classification of a goal against its target.
type GoalStatus string

const (
	GoalCompleted GoalStatus = "completed"
	GoalOnTrack   GoalStatus = "on_track"
	GoalAtRisk    GoalStatus = "at_risk"
	GoalOffTrack  GoalStatus = "off_track"
)

// DefaultAlertThresholdPercent applies when a goal does not specify one.
const DefaultAlertThresholdPercent = 80.0

// GoalDefinition is a named business metric tracked against a numeric target.
//
// The key is derived deterministically from the chosen key or name and is
// unique across goals. Deleting a goal only flips IsActive to false; snapshot
// history is never discarded.
type GoalDefinition struct {
	ID                    string          `json:"id"`
	Key                   string          `json:"key"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	Metric                GoalMetric      `json:"metric"`
	TargetValue           float64         `json:"target_value"`
	Unit                  string          `json:"unit,omitempty"`
	Tags                  []string        `json:"tags"`
	IsActive              bool            `json:"is_active"`
	OwnerEmail            string          `json:"owner_email,omitempty"`
	Color                 string          `json:"color,omitempty"`
	AlertThresholdPercent float64         `json:"alert_threshold_percent"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// GoalInput is the upsert payload for a goal definition. Zero-valued optional
// fields leave the existing definition untouched.
type GoalInput struct {
	ID                    string          `json:"id,omitempty"`
	Key                   string          `json:"key" validate:"omitempty,max=128"`
	Name                  string          `json:"name" validate:"required,max=256"`
	Description           string          `json:"description,omitempty"`
	Metric                GoalMetric      `json:"metric" validate:"required"`
	TargetValue           float64         `json:"target_value" validate:"gte=0"`
	Unit                  string          `json:"unit,omitempty"`
	Tags                  []string        `json:"tags,omitempty"`
	IsActive              *bool           `json:"is_active,omitempty"`
	OwnerEmail            string          `json:"owner_email,omitempty" validate:"omitempty,email"`
	Color                 string          `json:"color,omitempty"`
	AlertThresholdPercent *float64        `json:"alert_threshold_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
}

// GoalSnapshot is one timestamped observation of a goal's value.
// Delta is value minus the previous snapshot's value, or the value itself
// when no previous snapshot exists.
type GoalSnapshot struct {
	GoalKey     string          `json:"goal_key"`
	Timestamp   time.Time       `json:"timestamp"`
	Value       float64         `json:"value"`
	TargetValue float64         `json:"target_value"`
	Delta       float64         `json:"delta"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// GoalSnapshotInput is the payload for recording an externally observed
// snapshot. A nil Delta asks the engine to derive it from the previous
// snapshot; an explicit value, including zero, is stored as-is. A zero
// Timestamp or TargetValue is stamped from the clock and the goal.
type GoalSnapshotInput struct {
	Timestamp   time.Time       `json:"timestamp,omitempty"`
	Value       float64         `json:"value"`
	TargetValue float64         `json:"target_value,omitempty"`
	Delta       *float64        `json:"delta,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// SparklinePoint is one dated value in a compact trend series.
type SparklinePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// GoalSummaryEntry reports one goal's standing within a summary window.
type GoalSummaryEntry struct {
	Goal            GoalDefinition   `json:"goal"`
	LatestValue     float64          `json:"latest_value"`
	TargetValue     float64          `json:"target_value"`
	ProgressPercent float64          `json:"progress_percent"`
	Status          GoalStatus       `json:"status"`
	LastUpdated     string           `json:"last_updated,omitempty"`
	Trend7d         *float64         `json:"trend_7d,omitempty"`
	Trend30d        *float64         `json:"trend_30d,omitempty"`
	Sparkline       []SparklinePoint `json:"sparkline"`
}

// GoalSummaryTotals aggregates goal statuses across a summary.
type GoalSummaryTotals struct {
	Goals     int `json:"goals"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	AtRisk    int `json:"at_risk"`
	OffTrack  int `json:"off_track"`
}

// GoalSummarySnapshot is the result of a goal summary query.
type GoalSummarySnapshot struct {
	Window Window             `json:"window"`
	Totals GoalSummaryTotals  `json:"totals"`
	Goals  []GoalSummaryEntry `json:"goals"`
}

// TimeseriesInterval is the bucketing granularity of a goal timeseries.
type TimeseriesInterval string

const (
	IntervalDay   TimeseriesInterval = "day"
	IntervalWeek  TimeseriesInterval = "week"
	IntervalMonth TimeseriesInterval = "month"

	// IntervalHour is used only for anomaly baselines, never for goal
	// timeseries queries.
	IntervalHour TimeseriesInterval = "hour"
)

// GoalTimeseriesPoint is one bucketed observation in a goal series.
type GoalTimeseriesPoint struct {
	Date        string          `json:"date"`
	Value       float64         `json:"value"`
	TargetValue float64         `json:"target_value,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// GoalTimeseriesSeries is the bucketed history of one goal.
type GoalTimeseriesSeries struct {
	Key    string                `json:"key"`
	Name   string                `json:"name"`
	Unit   string                `json:"unit,omitempty"`
	Points []GoalTimeseriesPoint `json:"points"`
}

// GoalTimeseriesWindow describes the resolved window of a timeseries query.
type GoalTimeseriesWindow struct {
	Start    string             `json:"start"`
	End      string             `json:"end"`
	Interval TimeseriesInterval `json:"interval"`
}

// GoalTimeseriesResponse is the result of a goal timeseries query.
type GoalTimeseriesResponse struct {
	Window GoalTimeseriesWindow   `json:"window"`
	Series []GoalTimeseriesSeries `json:"series"`
}
