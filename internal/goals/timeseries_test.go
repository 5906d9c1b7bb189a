// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import (
	"context"
	"testing"
	"time"

	"github.com/voxlink/insights/internal/models"
)

func TestTimeseriesBucketing(t *testing.T) {
	reg, store, _ := newTestRegistry(t, false)
	ctx := context.Background()
	activeGoal(t, store, "total_coins", models.MetricCoins, 1000)

	// Two snapshots on the same day; the later one wins the day bucket.
	appendSnap(t, store, "total_coins", time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC), 100, 1000, 100)
	appendSnap(t, store, "total_coins", time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC), 120, 1000, 20)
	appendSnap(t, store, "total_coins", time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC), 350, 1000, 230)
	appendSnap(t, store, "total_coins", time.Date(2026, 6, 16, 9, 0, 0, 0, time.UTC), 400, 1000, 50)

	tests := []struct {
		name     string
		interval models.TimeseriesInterval
		want     []models.GoalTimeseriesPoint
	}{
		{
			name:     "daily keeps last value per day",
			interval: models.IntervalDay,
			want: []models.GoalTimeseriesPoint{
				{Date: "2026-06-10", Value: 120, TargetValue: 1000},
				{Date: "2026-06-12", Value: 350, TargetValue: 1000},
				{Date: "2026-06-16", Value: 400, TargetValue: 1000},
			},
		},
		{
			name:     "weekly buckets start on Monday",
			interval: models.IntervalWeek,
			want: []models.GoalTimeseriesPoint{
				{Date: "2026-06-08", Value: 350, TargetValue: 1000},
				{Date: "2026-06-15", Value: 400, TargetValue: 1000},
			},
		},
		{
			name:     "monthly buckets start on the first",
			interval: models.IntervalMonth,
			want: []models.GoalTimeseriesPoint{
				{Date: "2026-06-01", Value: 400, TargetValue: 1000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := reg.Timeseries(ctx, "2026-06-01", "2026-06-20", TimeseriesOptions{Interval: tt.interval})
			if err != nil {
				t.Fatalf("Timeseries() error = %v", err)
			}
			if len(resp.Series) != 1 {
				t.Fatalf("got %d series, want 1", len(resp.Series))
			}
			points := resp.Series[0].Points
			if len(points) != len(tt.want) {
				t.Fatalf("got %d points, want %d: %+v", len(points), len(tt.want), points)
			}
			for i, want := range tt.want {
				got := points[i]
				if got.Date != want.Date || got.Value != want.Value || got.TargetValue != want.TargetValue {
					t.Errorf("point %d = %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestTimeseriesRejectsUnknownInterval(t *testing.T) {
	reg, _, _ := newTestRegistry(t, false)

	_, err := reg.Timeseries(context.Background(), "2026-06-01", "2026-06-20", TimeseriesOptions{Interval: "hour"})
	if err == nil {
		t.Fatal("expected an error for an hourly goal timeseries")
	}
}

func TestRecordSnapshot(t *testing.T) {
	reg, store, _ := newTestRegistry(t, false)
	ctx := context.Background()
	activeGoal(t, store, "mrr", models.MetricCustom, 5000)

	// First recording: delta defaults to the value, target stamped from
	// the goal.
	first, err := reg.RecordSnapshot(ctx, "mrr", models.GoalSnapshotInput{
		Timestamp: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		Value:     1200.555,
	})
	if err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}
	if first.Value != 1200.56 {
		t.Errorf("Value = %v, want rounded 1200.56", first.Value)
	}
	if first.TargetValue != 5000 {
		t.Errorf("TargetValue = %v, want stamped 5000", first.TargetValue)
	}
	if first.Delta != 1200.56 {
		t.Errorf("Delta = %v, want the value itself", first.Delta)
	}

	second, err := reg.RecordSnapshot(ctx, "mrr", models.GoalSnapshotInput{
		Timestamp: time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC),
		Value:     1500,
	})
	if err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}
	if second.Delta != 299.44 {
		t.Errorf("Delta = %v, want 299.44 against the previous value", second.Delta)
	}

	// An explicit zero delta is a statement, not an omission.
	zero := 0.0
	third, err := reg.RecordSnapshot(ctx, "mrr", models.GoalSnapshotInput{
		Timestamp: time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		Value:     1500,
		Delta:     &zero,
	})
	if err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}
	if third.Delta != 0 {
		t.Errorf("Delta = %v, want the explicit 0 preserved", third.Delta)
	}

	missing, err := reg.RecordSnapshot(ctx, "no_such_goal", models.GoalSnapshotInput{Value: 1})
	if err != nil {
		t.Fatalf("RecordSnapshot(miss) error = %v", err)
	}
	if missing != nil {
		t.Errorf("unknown goal should record nothing, got %+v", missing)
	}
}
