// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/voxlink/insights/internal/analytics"
	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
)

// TimeseriesOptions scope a goal timeseries query.
type TimeseriesOptions struct {
	// GoalKeys restricts the series to the named goals. Empty means all
	// active goals.
	GoalKeys []string

	// Interval is the bucketing granularity; defaults to day.
	Interval models.TimeseriesInterval
}

// Timeseries returns the bucketed snapshot history of the requested goals.
// Each bucket carries the last snapshot observed within it. The range is
// validated but not capped; the per-goal retention bound limits depth.
func (r *Registry) Timeseries(ctx context.Context, start, end string, opts TimeseriesOptions) (*models.GoalTimeseriesResponse, error) {
	defer metrics.ObserveQuery("goal_timeseries", time.Now())

	rng, err := analytics.ValidateRange(start, end, 0, r.now)
	if err != nil {
		return nil, err
	}
	interval := opts.Interval
	switch interval {
	case "":
		interval = models.IntervalDay
	case models.IntervalDay, models.IntervalWeek, models.IntervalMonth:
	default:
		return nil, &analytics.RangeError{Field: "interval", Reason: "must be one of day, week, month"}
	}

	goals, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if len(opts.GoalKeys) > 0 {
		wanted = make(map[string]bool, len(opts.GoalKeys))
		for _, key := range opts.GoalKeys {
			if k := NormalizeKey(key); k != "" {
				wanted[k] = true
			}
		}
	}

	resp := &models.GoalTimeseriesResponse{
		Window: models.GoalTimeseriesWindow{
			Start:    rng.StartDay.Format("2006-01-02"),
			End:      rng.EndDay.Format("2006-01-02"),
			Interval: interval,
		},
		Series: []models.GoalTimeseriesSeries{},
	}

	for i := range goals {
		goal := goals[i]
		if wanted != nil && !wanted[goal.Key] {
			continue
		}
		if wanted == nil && !goal.IsActive {
			continue
		}
		snaps, err := r.repo.ListSnapshots(ctx, goal.Key, rng.From(), rng.To())
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshots for %s: %w", goal.Key, err)
		}
		resp.Series = append(resp.Series, models.GoalTimeseriesSeries{
			Key:    goal.Key,
			Name:   goal.Name,
			Unit:   goal.Unit,
			Points: bucketSnapshots(snaps, interval),
		})
	}
	return resp, nil
}

// bucketSnapshots reduces an ordered snapshot series to the last value per
// bucket. Snapshots arrive ordered by timestamp, so a plain overwrite keeps
// the latest one.
func bucketSnapshots(snaps []models.GoalSnapshot, interval models.TimeseriesInterval) []models.GoalTimeseriesPoint {
	byBucket := make(map[string]models.GoalTimeseriesPoint)
	order := make([]string, 0, len(snaps))
	for i := range snaps {
		key := bucketKey(snaps[i].Timestamp.UTC(), interval)
		if _, seen := byBucket[key]; !seen {
			order = append(order, key)
		}
		byBucket[key] = models.GoalTimeseriesPoint{
			Date:        key,
			Value:       round2(snaps[i].Value),
			TargetValue: round2(snaps[i].TargetValue),
			Metadata:    snaps[i].Metadata,
		}
	}
	points := make([]models.GoalTimeseriesPoint, 0, len(order))
	for _, key := range order {
		points = append(points, byBucket[key])
	}
	return points
}

// bucketKey maps a timestamp to its bucket start date. Week buckets start
// on Monday.
func bucketKey(ts time.Time, interval models.TimeseriesInterval) string {
	switch interval {
	case models.IntervalWeek:
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset).Format("2006-01-02")
	case models.IntervalMonth:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	default:
		return ts.Format("2006-01-02")
	}
}

// RecordSnapshot records an externally observed value for a goal, for
// metrics the calculators cannot synthesize. A nil input delta is derived
// from the previous snapshot; an explicit zero is kept. Returns the stored
// snapshot, or (nil, nil) when the goal is unknown.
func (r *Registry) RecordSnapshot(ctx context.Context, goalKey string, input models.GoalSnapshotInput) (*models.GoalSnapshot, error) {
	goal, err := r.GetByKeyOrID(ctx, goalKey)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	snap := models.GoalSnapshot{
		GoalKey:     goal.Key,
		Timestamp:   input.Timestamp,
		Value:       input.Value,
		TargetValue: input.TargetValue,
		Metadata:    input.Metadata,
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = r.now()
	}
	snap.Timestamp = snap.Timestamp.UTC()
	if snap.TargetValue == 0 {
		snap.TargetValue = goal.TargetValue
	}
	if input.Delta != nil {
		snap.Delta = *input.Delta
	} else {
		latest, err := r.repo.LatestSnapshot(ctx, goal.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest snapshot for %s: %w", goal.Key, err)
		}
		snap.Delta = snap.Value
		if latest != nil {
			snap.Delta = snap.Value - latest.Value
		}
	}
	snap.Value = round2(snap.Value)
	snap.TargetValue = round2(snap.TargetValue)
	snap.Delta = round2(snap.Delta)

	if err := r.repo.AppendSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to append snapshot for %s: %w", goal.Key, err)
	}
	return &snap, nil
}
