// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// retentionOffsets are the tracked day offsets from signup. Offsets beyond
// the window length are pruned per query; offset 0 is always kept.
var retentionOffsets = []int{0, 1, 3, 7, 14, 30}

// Retention groups the window's signups into per-day cohorts and measures
// return activity at fixed day offsets. A member counts as retained on
// day+offset when any activity signal (lastActiveAt, updatedAt, or a
// session) lands on that UTC day. Offset 0 is 100% by definition.
func (e *Engine) Retention(ctx context.Context, start, end string, filter repository.Filter) (*models.UserRetentionSummary, error) {
	defer metrics.ObserveQuery("retention", time.Now())

	r, err := ValidateRange(start, end, RetentionRangeCapDays, e.now)
	if err != nil {
		return nil, err
	}

	// An offset is kept only when some cohort's day+offset can still land
	// inside the window: the last reachable offset is end-start, one less
	// than the inclusive day count.
	offsets := make([]int, 0, len(retentionOffsets))
	for _, off := range retentionOffsets {
		if off == 0 || off <= r.Days-1 {
			offsets = append(offsets, off)
		}
	}
	maxOffset := offsets[len(offsets)-1]

	cohortMembers, err := e.usersCreatedIn(ctx, r, filter)
	if err != nil {
		return nil, err
	}

	// Return activity at day+offset can land past the window end, so the
	// session read extends by the largest tracked offset.
	sessions, err := e.repo.ListSessions(ctx, repository.SessionQuery{
		From: r.From(),
		To:   r.To().AddDate(0, 0, maxOffset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for retention: %w", err)
	}

	// Per-member set of UTC days with any activity signal.
	activeDays := make(map[string]map[string]struct{}, len(cohortMembers))
	mark := func(userID string, day string) {
		set, ok := activeDays[userID]
		if !ok {
			set = make(map[string]struct{})
			activeDays[userID] = set
		}
		set[day] = struct{}{}
	}
	idx := userIndex(cohortMembers)
	for i := range cohortMembers {
		u := &cohortMembers[i]
		if !u.LastActiveAt.IsZero() {
			mark(u.ID, dayKey(u.LastActiveAt))
		}
		if !u.UpdatedAt.IsZero() {
			mark(u.ID, dayKey(u.UpdatedAt))
		}
	}
	for i := range sessions {
		day := dayKey(sessions[i].StartedAt)
		for _, id := range sessions[i].Participants() {
			if _, member := idx[id]; member {
				mark(id, day)
			}
		}
	}

	// Group members by UTC signup day.
	byDay := make(map[string][]string)
	for i := range cohortMembers {
		day := dayKey(cohortMembers[i].CreatedAt)
		byDay[day] = append(byDay[day], cohortMembers[i].ID)
	}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	retainedSum := make(map[int]int, len(offsets))
	sizeSum := make(map[int]int, len(offsets))

	cohorts := make([]models.RetentionCohort, 0, len(days))
	for _, day := range days {
		members := byDay[day]
		cohortStart, _ := time.Parse(dayLayout, day)

		cohort := models.RetentionCohort{
			Cohort:  day,
			Size:    len(members),
			Buckets: make([]models.RetentionBucket, 0, len(offsets)),
		}
		for _, off := range offsets {
			target := cohortStart.AddDate(0, 0, off).Format(dayLayout)
			retained := 0
			if off == 0 {
				retained = len(members)
			} else {
				for _, id := range members {
					if _, ok := activeDays[id][target]; ok {
						retained++
					}
				}
			}
			rate := 100.0
			if off != 0 {
				rate = toPercentage(float64(retained), float64(len(members)))
			}
			cohort.Buckets = append(cohort.Buckets, models.RetentionBucket{
				Offset:        off,
				Date:          target,
				RetainedUsers: retained,
				RetentionRate: rate,
			})
			retainedSum[off] += retained
			sizeSum[off] += len(members)
		}
		cohorts = append(cohorts, cohort)
	}

	averages := make([]models.RetentionAverage, 0, len(offsets))
	for _, off := range offsets {
		averages = append(averages, models.RetentionAverage{
			Offset:        off,
			RetentionRate: toPercentage(float64(retainedSum[off]), float64(sizeSum[off])),
			SampleSize:    sizeSum[off],
		})
	}

	return &models.UserRetentionSummary{
		Window: models.RetentionWindow{
			Start:   r.StartDay.Format(dayLayout),
			End:     r.EndDay.Format(dayLayout),
			Cohorts: len(cohorts),
		},
		MaxOffset: maxOffset,
		Averages:  averages,
		Cohorts:   cohorts,
	}, nil
}
