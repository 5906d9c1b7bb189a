// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// churnLookbackDays is the inactivity horizon for the churn rate: a
// window-active user with no activity in the final churnLookbackDays of the
// window counts as churned.
const churnLookbackDays = 7

// heavyUserSessionThreshold marks a user as heavy once they reach this many
// sessions in the window.
const heavyUserSessionThreshold = 5

// engagementCohortLimit caps the reported cohort list.
const engagementCohortLimit = 8

// durationBinEdges are the fixed session-duration buckets, in seconds. The
// last bucket is open-ended.
var durationBinEdges = []struct {
	label string
	min   float64
	max   float64 // 0 means unbounded
}{
	{label: "0-1m", min: 0, max: 60},
	{label: "1-3m", min: 60, max: 180},
	{label: "3-10m", min: 180, max: 600},
	{label: "10-30m", min: 600, max: 1800},
	{label: "30m+", min: 1800, max: 0},
}

// EngagementSummary reports session volume, duration distribution, per-user
// depth, and segment cohorts over the window.
func (e *Engine) EngagementSummary(ctx context.Context, start, end string, filter repository.Filter) (*models.EngagementSummarySnapshot, error) {
	defer metrics.ObserveQuery("engagement_summary", time.Now())

	r, err := ValidateRange(start, end, SummaryRangeCapDays, e.now)
	if err != nil {
		return nil, err
	}

	users, err := e.allUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	sessions, err := e.sessionsIn(ctx, r)
	if err != nil {
		return nil, err
	}

	idx := userIndex(users)
	filtered := !filter.Normalize().IsEmpty()

	// Per-user activity over the window. When a segment filter is active,
	// sessions only count through participants inside the filtered
	// population.
	sessionsPerUser := make(map[string]int)
	lastActivity := make(map[string]time.Time)
	note := func(id string, t time.Time) {
		if t.After(lastActivity[id]) {
			lastActivity[id] = t
		}
	}

	totals := models.EngagementTotals{}
	var completedDurations []float64
	durationsByDay := make(map[string][]float64)
	perMode := make(map[models.ChatMode]int)
	for _, mode := range models.ChatModes {
		perMode[mode] = 0
	}

	for i := range sessions {
		sess := &sessions[i]
		participants := sess.Participants()
		counted := false
		for _, id := range participants {
			if _, known := idx[id]; !known && filtered {
				continue
			}
			counted = true
			sessionsPerUser[id]++
			note(id, sess.StartedAt)
		}
		if filtered && !counted {
			continue
		}

		totals.Sessions++
		perMode[sess.Mode]++
		switch sess.Status {
		case models.SessionEnded:
			totals.CompletedSessions++
			if d := sess.Duration(); d > 0 {
				secs := d.Seconds()
				completedDurations = append(completedDurations, secs)
				day := dayKey(sess.StartedAt)
				durationsByDay[day] = append(durationsByDay[day], secs)
			}
		case models.SessionActive:
			totals.ActiveSessions++
		}
	}

	for id := range sessionsPerUser {
		if u, known := idx[id]; known {
			note(id, u.LastActiveAt)
			note(id, u.UpdatedAt)
		}
	}

	totals.UniqueUsers = len(sessionsPerUser)
	churnCutoff := r.To().AddDate(0, 0, -churnLookbackDays)
	churned := 0
	for id, count := range sessionsPerUser {
		if count >= 2 {
			totals.RepeatUsers++
		}
		if lastActivity[id].Before(churnCutoff) {
			churned++
		}
	}
	totals.RepeatRate = toPercentage(float64(totals.RepeatUsers), float64(totals.UniqueUsers))
	totals.ChurnRate = toPercentage(float64(churned), float64(totals.UniqueUsers))

	return &models.EngagementSummarySnapshot{
		Window:    r.Window(),
		Totals:    totals,
		Durations: buildDurationMetrics(r, completedDurations, durationsByDay),
		Depth:     buildDepthMetrics(sessionsPerUser, perMode),
		Cohorts:   buildEngagementCohorts(sessionsPerUser, idx, totals.Sessions),
	}, nil
}

func buildDurationMetrics(r Range, durations []float64, byDay map[string][]float64) models.DurationMetrics {
	metrics := models.DurationMetrics{
		MedianSeconds:     round2(median(durations)),
		AverageSeconds:    round2(mean(durations)),
		P90Seconds:        round2(percentile(durations, 90)),
		CompletedSessions: len(durations),
		Distribution:      make([]models.DurationBin, 0, len(durationBinEdges)),
		Sparkline:         make([]models.SparklinePoint, 0, r.Days),
	}

	for _, edge := range durationBinEdges {
		bin := models.DurationBin{Label: edge.label, MinSeconds: edge.min}
		if edge.max > 0 {
			max := edge.max
			bin.MaxSeconds = &max
		}
		for _, d := range durations {
			if d < edge.min {
				continue
			}
			if edge.max > 0 && d >= edge.max {
				continue
			}
			bin.Count++
		}
		bin.Share = toPercentage(float64(bin.Count), float64(len(durations)))
		metrics.Distribution = append(metrics.Distribution, bin)
	}

	r.EachDay(func(day time.Time) {
		key := day.Format(dayLayout)
		metrics.Sparkline = append(metrics.Sparkline, models.SparklinePoint{
			Date:  key,
			Value: round2(mean(byDay[key])),
		})
	})
	return metrics
}

func buildDepthMetrics(sessionsPerUser map[string]int, perMode map[models.ChatMode]int) models.DepthMetrics {
	counts := make([]float64, 0, len(sessionsPerUser))
	heavy := 0
	for _, n := range sessionsPerUser {
		counts = append(counts, float64(n))
		if n >= heavyUserSessionThreshold {
			heavy++
		}
	}
	return models.DepthMetrics{
		MedianSessionsPerUser:  round2(median(counts)),
		AverageSessionsPerUser: round2(mean(counts)),
		HeavyUserThreshold:     heavyUserSessionThreshold,
		HeavyUserCount:         heavy,
		HeavyUserShare:         toPercentage(float64(heavy), float64(len(counts))),
		PerModeSessions:        perMode,
	}
}

// buildEngagementCohorts attributes each active user's session count to
// their segment on every cohort axis, then keeps the busiest segments.
func buildEngagementCohorts(sessionsPerUser map[string]int, idx map[string]*models.User, totalSessions int) []models.EngagementCohort {
	type cohortKey struct {
		typ models.EngagementCohortType
		key string
	}
	acc := make(map[cohortKey]*models.EngagementCohort)
	add := func(typ models.EngagementCohortType, segment string, sessions int) {
		if segment == "" {
			segment = "unknown"
		}
		k := cohortKey{typ: typ, key: segment}
		cohort, ok := acc[k]
		if !ok {
			cohort = &models.EngagementCohort{Key: segment, Label: segment, Type: typ}
			acc[k] = cohort
		}
		cohort.Sessions += sessions
		cohort.UniqueUsers++
	}

	for id, sessions := range sessionsPerUser {
		u, known := idx[id]
		if !known {
			continue
		}
		add(models.CohortPlatform, u.Platform, sessions)
		add(models.CohortSignupSource, u.SignupSource, sessions)
		add(models.CohortGender, u.Gender, sessions)
		add(models.CohortSubscription, string(u.SubscriptionLevel), sessions)
	}

	cohorts := make([]models.EngagementCohort, 0, len(acc))
	for _, cohort := range acc {
		cohort.Share = toPercentage(float64(cohort.Sessions), float64(totalSessions))
		cohorts = append(cohorts, *cohort)
	}
	sort.Slice(cohorts, func(i, j int) bool {
		if cohorts[i].Sessions != cohorts[j].Sessions {
			return cohorts[i].Sessions > cohorts[j].Sessions
		}
		if cohorts[i].Type != cohorts[j].Type {
			return cohorts[i].Type < cohorts[j].Type
		}
		return cohorts[i].Key < cohorts[j].Key
	})
	if len(cohorts) > engagementCohortLimit {
		cohorts = cohorts[:engagementCohortLimit]
	}
	return cohorts
}
