// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

import (
	"context"
	"time"

	"github.com/voxlink/insights/internal/models"
)

// Retention caps for tracked state. Oldest entries are evicted first.
const (
	// SnapshotRetention is the maximum snapshots kept per goal
	// (720 points = 30 days of hourly recomputes).
	SnapshotRetention = 720

	// AnomalyEventRetention is the size of the anomaly event ring.
	AnomalyEventRetention = 250
)

// UserQuery scopes a bulk user read. Nil time bounds are open-ended; the
// Filter must already be normalized.
type UserQuery struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	ActiveFrom  *time.Time
	ActiveTo    *time.Time
	Filter      Filter
}

// SessionQuery scopes a bulk session read by start time.
type SessionQuery struct {
	From time.Time
	To   time.Time
}

// MetricsRepository is the single storage contract behind the metrics,
// goal-tracking, and anomaly-detection engine. Two adapters implement it:
// MemoryStore and DuckDBStore. All computation lives above this interface
// so both backends produce identical results by construction.
//
// Read methods return empty collections (never nil errors wrapping a miss)
// when nothing matches; lookup methods return (nil, nil) on a miss.
type MetricsRepository interface {
	// Raw activity reads, supplied by the surrounding admin backend.
	ListUsers(ctx context.Context, q UserQuery) ([]models.User, error)
	ListSessions(ctx context.Context, q SessionQuery) ([]models.Session, error)

	// Goal definitions.
	ListGoals(ctx context.Context) ([]models.GoalDefinition, error)
	GetGoalByKeyOrID(ctx context.Context, keyOrID string) (*models.GoalDefinition, error)
	SaveGoal(ctx context.Context, goal *models.GoalDefinition) error

	// Goal snapshots: append-only, bounded per-goal series ordered by
	// timestamp. AppendSnapshot trims to SnapshotRetention.
	AppendSnapshot(ctx context.Context, snap models.GoalSnapshot) error
	ListSnapshots(ctx context.Context, goalKey string, from, to time.Time) ([]models.GoalSnapshot, error)
	LatestSnapshot(ctx context.Context, goalKey string) (*models.GoalSnapshot, error)

	// Anomaly baselines: one row per (metric, period), upserted.
	UpsertBaseline(ctx context.Context, baseline models.AnomalyBaseline) error
	ListBaselines(ctx context.Context) ([]models.AnomalyBaseline, error)

	// Anomaly events: append-only ring capped at AnomalyEventRetention.
	AppendAnomalyEvent(ctx context.Context, event models.AnomalyEvent) error
	ListAnomalyEvents(ctx context.Context, from, to time.Time) ([]models.AnomalyEvent, error)

	// Close releases the underlying resources.
	Close() error
}

// RecordSeeder bulk-loads raw activity records into a store. Both adapters
// implement it; the conformance tests and the ingest wiring depend on it
// rather than on a concrete adapter.
type RecordSeeder interface {
	SeedUsers(ctx context.Context, users []models.User) error
	SeedSessions(ctx context.Context, sessions []models.Session) error
}
