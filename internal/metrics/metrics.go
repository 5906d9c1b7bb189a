// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package metrics exposes Prometheus collectors for the engine:
// goal recompute throughput, anomaly scan outcomes, and analytics query
// latency. Collectors register on the default registry via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Goal recompute scheduler.

	RecomputeExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_goal_recomputes_total",
			Help: "Total goal recompute executions by outcome",
		},
		[]string{"outcome"}, // "ok", "skipped", "error"
	)

	RecomputeCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_goal_recomputes_coalesced_total",
			Help: "Recompute requests absorbed by a pending timer for the same goal",
		},
	)

	RecomputePending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_goal_recomputes_pending",
			Help: "Goal recompute timers currently pending",
		},
	)

	SnapshotSeriesLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_goal_snapshot_series_length",
			Help: "Snapshot series length per goal after the latest append",
		},
		[]string{"goal"},
	)

	// Anomaly scanner.

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_anomaly_scan_duration_seconds",
			Help:    "Duration of full anomaly scan runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScanRunsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_anomaly_scan_runs_dropped_total",
			Help: "Scan runs dropped because a previous run was still in flight",
		},
	)

	AnomaliesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_anomaly_events_total",
			Help: "Anomaly events emitted by metric and severity",
		},
		[]string{"metric", "severity"},
	)

	ScanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_anomaly_scan_errors_total",
			Help: "Per-metric scan failures",
		},
		[]string{"metric"},
	)

	// Analytics queries.

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_query_duration_seconds",
			Help:    "Duration of analytics queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_query_errors_total",
			Help: "Analytics query failures by query and class",
		},
		[]string{"query", "class"}, // class: "range", "storage", "internal"
	)
)

// ObserveQuery records one analytics query execution.
func ObserveQuery(query string, start time.Time) {
	QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
