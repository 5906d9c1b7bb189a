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

// SummaryOptions scope a goal summary query.
type SummaryOptions struct {
	// GoalKeys restricts the summary to the named goals. Empty means all.
	GoalKeys []string

	// IncludeInactive includes deactivated goals in the summary.
	IncludeInactive bool
}

// trendLookbacks are the day offsets reported as trend deltas.
const (
	trendShortDays = 7
	trendLongDays  = 30
)

// statusAtRiskMargin is how far below the alert threshold a goal may fall
// before it is classified off track instead of at risk.
const statusAtRiskMargin = 15.0

// Summary reports each goal's standing within the window: latest value,
// progress against target, status classification, short and long trend
// deltas, and a daily sparkline.
func (r *Registry) Summary(ctx context.Context, start, end string, opts SummaryOptions) (*models.GoalSummarySnapshot, error) {
	defer metrics.ObserveQuery("goal_summary", time.Now())

	rng, err := analytics.ValidateRange(start, end, analytics.SummaryRangeCapDays, r.now)
	if err != nil {
		return nil, err
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

	summary := &models.GoalSummarySnapshot{
		Window: rng.Window(),
		Goals:  []models.GoalSummaryEntry{},
	}

	for i := range goals {
		goal := goals[i]
		if wanted != nil && !wanted[goal.Key] {
			continue
		}
		if !goal.IsActive && !opts.IncludeInactive {
			continue
		}
		entry, err := r.summarize(ctx, goal, rng)
		if err != nil {
			return nil, err
		}
		summary.Goals = append(summary.Goals, *entry)

		summary.Totals.Goals++
		if goal.IsActive {
			summary.Totals.Active++
		}
		switch entry.Status {
		case models.GoalCompleted:
			summary.Totals.Completed++
		case models.GoalAtRisk:
			summary.Totals.AtRisk++
		case models.GoalOffTrack:
			summary.Totals.OffTrack++
		}
	}
	return summary, nil
}

func (r *Registry) summarize(ctx context.Context, goal models.GoalDefinition, rng analytics.Range) (*models.GoalSummaryEntry, error) {
	history, err := r.repo.ListSnapshots(ctx, goal.Key, time.Time{}, rng.To())
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots for %s: %w", goal.Key, err)
	}

	entry := &models.GoalSummaryEntry{
		Goal:        goal,
		TargetValue: round2(goal.TargetValue),
		Sparkline:   []models.SparklinePoint{},
	}

	latest := latestSnapshot(history)
	if latest == nil {
		entry.Status = models.GoalOffTrack
		return entry, nil
	}
	entry.LatestValue = round2(latest.Value)
	entry.LastUpdated = latest.Timestamp.UTC().Format(time.RFC3339)
	entry.ProgressPercent = toPercentage(latest.Value, goal.TargetValue)
	entry.Status = classify(entry.ProgressPercent, goal.AlertThresholdPercent)
	entry.Trend7d = trendDelta(history, latest, trendShortDays)
	entry.Trend30d = trendDelta(history, latest, trendLongDays)
	entry.Sparkline = dailySparkline(history, rng)
	return entry, nil
}

// classify maps a progress percentage to a goal status. The threshold is
// the goal's alert threshold; progress within statusAtRiskMargin points
// below it counts as at risk.
func classify(progress, threshold float64) models.GoalStatus {
	if threshold <= 0 {
		threshold = models.DefaultAlertThresholdPercent
	}
	switch {
	case progress >= 100:
		return models.GoalCompleted
	case progress >= threshold:
		return models.GoalOnTrack
	case progress >= threshold-statusAtRiskMargin:
		return models.GoalAtRisk
	default:
		return models.GoalOffTrack
	}
}

func latestSnapshot(history []models.GoalSnapshot) *models.GoalSnapshot {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}

// trendDelta is the percentage change of the latest value against the most
// recent snapshot at least days back. Nil when no such snapshot exists or
// its value is zero.
func trendDelta(history []models.GoalSnapshot, latest *models.GoalSnapshot, days int) *float64 {
	cutoff := latest.Timestamp.AddDate(0, 0, -days)
	var past *models.GoalSnapshot
	for i := range history {
		if history[i].Timestamp.After(cutoff) {
			break
		}
		past = &history[i]
	}
	if past == nil || past.Value == 0 {
		return nil
	}
	delta := round2((latest.Value - past.Value) / past.Value * 100)
	return &delta
}

// dailySparkline keeps the last snapshot value of each window day.
func dailySparkline(history []models.GoalSnapshot, rng analytics.Range) []models.SparklinePoint {
	byDay := make(map[string]float64)
	for i := range history {
		ts := history[i].Timestamp.UTC()
		if ts.Before(rng.From()) || ts.After(rng.To()) {
			continue
		}
		byDay[ts.Format("2006-01-02")] = history[i].Value
	}
	points := make([]models.SparklinePoint, 0, len(byDay))
	rng.EachDay(func(day time.Time) {
		key := day.Format("2006-01-02")
		if value, ok := byDay[key]; ok {
			points = append(points, models.SparklinePoint{Date: key, Value: round2(value)})
		}
	})
	return points
}
