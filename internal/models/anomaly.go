// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// AnomalySeverity classifies how far an observation sits from its baseline.
type AnomalySeverity string

const (
	SeverityLow    AnomalySeverity = "low"
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// AnomalyDirection indicates whether the observation sits above or below the
// baseline mean.
type AnomalyDirection string

const (
	DirectionPositive AnomalyDirection = "positive"
	DirectionNegative AnomalyDirection = "negative"
)

// AnomalyBaseline is the rolling mean and standard deviation for a metric
// over a lookback window. One row exists per (metric, period); the scanner
// upserts it on every run and never historizes it.
type AnomalyBaseline struct {
	Metric            string             `json:"metric"`
	Period            TimeseriesInterval `json:"period"`
	Mean              float64            `json:"mean"`
	StandardDeviation float64            `json:"standard_deviation"`
	SampleSize        int                `json:"sample_size"`
	Trend             float64            `json:"trend,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Metadata          json.RawMessage    `json:"metadata,omitempty"`
}

// BaselineInput is the explicit upsert payload for a benchmark baseline.
type BaselineInput struct {
	Metric            string             `json:"metric" validate:"required,max=128"`
	Period            TimeseriesInterval `json:"period" validate:"required,oneof=hour day week month"`
	Mean              float64            `json:"mean"`
	StandardDeviation float64            `json:"standard_deviation" validate:"gte=0"`
	SampleSize        int                `json:"sample_size" validate:"gte=0"`
	Trend             float64            `json:"trend,omitempty"`
	UpdatedAt         *time.Time         `json:"updated_at,omitempty"`
	Metadata          json.RawMessage    `json:"metadata,omitempty"`
}

// AnomalyEvent records one statistically unusual observation of a metric.
// Events are append-only and kept in a capped ring (most recent retained).
type AnomalyEvent struct {
	ID             string           `json:"id"`
	Metric         string           `json:"metric"`
	Timestamp      time.Time        `json:"timestamp"`
	Severity       AnomalySeverity  `json:"severity"`
	Direction      AnomalyDirection `json:"direction"`
	Actual         float64          `json:"actual"`
	Expected       float64          `json:"expected"`
	ZScore         float64          `json:"z_score"`
	BaselineMean   float64          `json:"baseline_mean"`
	BaselineStdDev float64          `json:"baseline_std_dev"`
	Metadata       json.RawMessage  `json:"metadata,omitempty"`
}

// AnomalyEventInput is the explicit recording payload for an anomaly event.
type AnomalyEventInput struct {
	Metric         string           `json:"metric" validate:"required,max=128"`
	Timestamp      time.Time        `json:"timestamp" validate:"required"`
	Severity       AnomalySeverity  `json:"severity" validate:"required,oneof=low medium high"`
	Direction      AnomalyDirection `json:"direction" validate:"required,oneof=positive negative"`
	Actual         float64          `json:"actual"`
	Expected       float64          `json:"expected"`
	ZScore         float64          `json:"z_score"`
	BaselineMean   float64          `json:"baseline_mean"`
	BaselineStdDev float64          `json:"baseline_std_dev" validate:"gte=0"`
	Metadata       json.RawMessage  `json:"metadata,omitempty"`
}

// AnomalyFeedResponse is the result of an anomaly feed query.
type AnomalyFeedResponse struct {
	Window          Window         `json:"window"`
	Events          []AnomalyEvent `json:"events"`
	LatestUpdatedAt string         `json:"latest_updated_at,omitempty"`
}

// BenchmarkSummary is the result of a benchmark baseline query.
type BenchmarkSummary struct {
	Window    Window            `json:"window"`
	Baselines []AnomalyBaseline `json:"baselines"`
}
