// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voxlink/insights/internal/analytics"
	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/validation"
)

// Feed returns the anomaly events within the window, newest first, along
// with the most recent baseline update time.
func (s *Scanner) Feed(ctx context.Context, start, end string) (*models.AnomalyFeedResponse, error) {
	defer metrics.ObserveQuery("anomaly_feed", time.Now())

	rng, err := analytics.ValidateRange(start, end, analytics.SummaryRangeCapDays, s.now)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListAnomalyEvents(ctx, rng.From(), rng.To())
	if err != nil {
		return nil, fmt.Errorf("failed to list anomaly events: %w", err)
	}
	resp := &models.AnomalyFeedResponse{
		Window: rng.Window(),
		Events: events,
	}
	baselines, err := s.repo.ListBaselines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list baselines: %w", err)
	}
	var latest time.Time
	for i := range baselines {
		if baselines[i].UpdatedAt.After(latest) {
			latest = baselines[i].UpdatedAt
		}
	}
	if !latest.IsZero() {
		resp.LatestUpdatedAt = latest.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// BenchmarkSummary returns all maintained baselines for the window.
func (s *Scanner) BenchmarkSummary(ctx context.Context, start, end string) (*models.BenchmarkSummary, error) {
	defer metrics.ObserveQuery("benchmark_summary", time.Now())

	rng, err := analytics.ValidateRange(start, end, analytics.SummaryRangeCapDays, s.now)
	if err != nil {
		return nil, err
	}
	baselines, err := s.repo.ListBaselines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list baselines: %w", err)
	}
	return &models.BenchmarkSummary{
		Window:    rng.Window(),
		Baselines: baselines,
	}, nil
}

// UpsertBenchmark records an externally supplied baseline, replacing any
// existing one for the same metric and period.
func (s *Scanner) UpsertBenchmark(ctx context.Context, input models.BaselineInput) (*models.AnomalyBaseline, error) {
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	updatedAt := s.now().UTC()
	if input.UpdatedAt != nil {
		updatedAt = input.UpdatedAt.UTC()
	}
	baseline := models.AnomalyBaseline{
		Metric:            input.Metric,
		Period:            input.Period,
		Mean:              round2(input.Mean),
		StandardDeviation: round2(input.StandardDeviation),
		SampleSize:        input.SampleSize,
		Trend:             round2(input.Trend),
		UpdatedAt:         updatedAt,
		Metadata:          input.Metadata,
	}
	if err := s.repo.UpsertBaseline(ctx, baseline); err != nil {
		return nil, fmt.Errorf("failed to upsert benchmark %s/%s: %w", input.Metric, input.Period, err)
	}
	return &baseline, nil
}

// RecordEvent records an externally detected anomaly event.
func (s *Scanner) RecordEvent(ctx context.Context, input models.AnomalyEventInput) (*models.AnomalyEvent, error) {
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	event := models.AnomalyEvent{
		ID:             uuid.NewString(),
		Metric:         input.Metric,
		Timestamp:      input.Timestamp.UTC(),
		Severity:       input.Severity,
		Direction:      input.Direction,
		Actual:         round2(input.Actual),
		Expected:       round2(input.Expected),
		ZScore:         round2(input.ZScore),
		BaselineMean:   round2(input.BaselineMean),
		BaselineStdDev: round2(input.BaselineStdDev),
		Metadata:       input.Metadata,
	}
	if err := s.repo.AppendAnomalyEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record anomaly event for %s: %w", input.Metric, err)
	}
	metrics.AnomaliesEmitted.WithLabelValues(event.Metric, string(event.Severity)).Inc()
	return &event, nil
}
