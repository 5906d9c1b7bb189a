// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package anomaly

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

func scanClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	}
}

func newTestScanner(t *testing.T) (*Scanner, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewScanner(store, Config{}, scanClock()), store
}

func staticSeries(values ...float64) func(*Scanner, context.Context) ([]float64, error) {
	return func(*Scanner, context.Context) ([]float64, error) {
		return values, nil
	}
}

func TestScanMetricEmitsEvent(t *testing.T) {
	s, store := newTestScanner(t)
	ctx := context.Background()

	tm := trackedMetric{
		name:   "test_metric",
		period: models.IntervalDay,
		series: staticSeries(10, 12, 11, 13, 50),
	}
	if err := s.scanMetric(ctx, tm); err != nil {
		t.Fatalf("scanMetric() error = %v", err)
	}

	baselines, err := store.ListBaselines(ctx)
	if err != nil || len(baselines) != 1 {
		t.Fatalf("baselines = %d (%v), want 1", len(baselines), err)
	}
	b := baselines[0]
	if b.Mean != 19.2 {
		t.Errorf("Mean = %v, want 19.2", b.Mean)
	}
	if b.StandardDeviation != 15.43 {
		t.Errorf("StandardDeviation = %v, want 15.43", b.StandardDeviation)
	}
	if b.SampleSize != 5 {
		t.Errorf("SampleSize = %v, want 5", b.SampleSize)
	}
	if b.Trend != 30.8 {
		t.Errorf("Trend = %v, want 30.8", b.Trend)
	}

	events, err := store.ListAnomalyEvents(ctx, time.Time{}, scanClock()().Add(time.Hour))
	if err != nil || len(events) != 1 {
		t.Fatalf("events = %d (%v), want 1", len(events), err)
	}
	e := events[0]
	if e.Metric != "test_metric" {
		t.Errorf("Metric = %q", e.Metric)
	}
	if e.Severity != models.SeverityLow {
		t.Errorf("Severity = %q, want low at |z| just below 2.5", e.Severity)
	}
	if e.Direction != models.DirectionPositive {
		t.Errorf("Direction = %q, want positive", e.Direction)
	}
	if e.ZScore != 2.0 {
		t.Errorf("ZScore = %v, want 2.0", e.ZScore)
	}
	if e.Actual != 50 || e.Expected != 19.2 {
		t.Errorf("Actual/Expected = %v/%v, want 50/19.2", e.Actual, e.Expected)
	}
	if e.ID == "" {
		t.Error("expected a generated event id")
	}
}

func TestScanMetricFlatSeriesRecordsBaselineOnly(t *testing.T) {
	s, store := newTestScanner(t)
	ctx := context.Background()

	tm := trackedMetric{
		name:   "flat_metric",
		period: models.IntervalDay,
		series: staticSeries(7, 7, 7, 7),
	}
	if err := s.scanMetric(ctx, tm); err != nil {
		t.Fatalf("scanMetric() error = %v", err)
	}

	baselines, err := store.ListBaselines(ctx)
	if err != nil || len(baselines) != 1 {
		t.Fatalf("baselines = %d (%v), want 1", len(baselines), err)
	}
	if baselines[0].StandardDeviation != 0 {
		t.Errorf("StandardDeviation = %v, want 0", baselines[0].StandardDeviation)
	}
	events, err := store.ListAnomalyEvents(ctx, time.Time{}, scanClock()().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListAnomalyEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("flat series produced %d events, want 0", len(events))
	}
}

func TestSeverityClassification(t *testing.T) {
	tests := []struct {
		absZ float64
		want models.AnomalySeverity
	}{
		{absZ: 1.6, want: models.SeverityLow},
		{absZ: 2.5, want: models.SeverityMedium},
		{absZ: 3.49, want: models.SeverityMedium},
		{absZ: 3.5, want: models.SeverityHigh},
		{absZ: 8, want: models.SeverityHigh},
	}
	for _, tt := range tests {
		if got := classifySeverity(tt.absZ); got != tt.want {
			t.Errorf("classifySeverity(%v) = %q, want %q", tt.absZ, got, tt.want)
		}
	}
}

func TestRunOnceDetectsSignupSpike(t *testing.T) {
	s, store := newTestScanner(t)
	ctx := context.Background()

	// One signup per day for 29 days, then a 40-signup burst today.
	var users []models.User
	for d := 0; d < 29; d++ {
		users = append(users, models.User{
			ID:        fmt.Sprintf("steady-%d", d),
			CreatedAt: time.Date(2026, 5, 17, 8, 0, 0, 0, time.UTC).AddDate(0, 0, d),
		})
	}
	for i := 0; i < 40; i++ {
		users = append(users, models.User{
			ID:        fmt.Sprintf("burst-%d", i),
			CreatedAt: time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
		})
	}
	if err := store.SeedUsers(ctx, users); err != nil {
		t.Fatalf("SeedUsers() error = %v", err)
	}

	s.RunOnce(ctx)

	events, err := store.ListAnomalyEvents(ctx, time.Time{}, scanClock()().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListAnomalyEvents() error = %v", err)
	}
	var spike *models.AnomalyEvent
	for i := range events {
		if events[i].Metric == "new_users" {
			spike = &events[i]
		}
	}
	if spike == nil {
		t.Fatal("expected a new_users anomaly event")
	}
	if spike.Severity != models.SeverityHigh {
		t.Errorf("Severity = %q, want high for a 40x burst", spike.Severity)
	}
	if spike.Direction != models.DirectionPositive {
		t.Errorf("Direction = %q, want positive", spike.Direction)
	}
	if spike.Actual != 40 {
		t.Errorf("Actual = %v, want 40", spike.Actual)
	}

	// Flat session series still maintain their baselines.
	baselines, err := store.ListBaselines(ctx)
	if err != nil {
		t.Fatalf("ListBaselines() error = %v", err)
	}
	seen := make(map[string]bool)
	for _, b := range baselines {
		seen[b.Metric+"/"+string(b.Period)] = true
	}
	for _, key := range []string{"new_users/day", "sessions/day", "completed_sessions/day", "sessions/hour"} {
		if !seen[key] {
			t.Errorf("missing baseline %s", key)
		}
	}
}

func TestRunOnceDropsOverlappingRun(t *testing.T) {
	s, store := newTestScanner(t)
	ctx := context.Background()

	s.inFlight.Store(true)
	s.RunOnce(ctx)
	s.inFlight.Store(false)

	baselines, err := store.ListBaselines(ctx)
	if err != nil {
		t.Fatalf("ListBaselines() error = %v", err)
	}
	if len(baselines) != 0 {
		t.Errorf("dropped run still recorded %d baselines", len(baselines))
	}
}
