// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"time"

	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// Growth reports per-day signup and return-activity counts over the window.
// A returning user is one created before the day who was active on it
// (lastActiveAt, updatedAt, or a session start).
func (e *Engine) Growth(ctx context.Context, start, end string, filter repository.Filter) (*models.UserGrowthSummary, error) {
	defer metrics.ObserveQuery("growth", time.Now())

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

	newByDay := make(map[string]int)
	activeByDay := make(map[string]map[string]struct{})
	markActive := func(day, userID string) {
		set, ok := activeByDay[day]
		if !ok {
			set = make(map[string]struct{})
			activeByDay[day] = set
		}
		set[userID] = struct{}{}
	}

	idx := userIndex(users)
	for i := range users {
		u := &users[i]
		if !u.CreatedAt.Before(r.From()) && !u.CreatedAt.After(r.To()) {
			newByDay[dayKey(u.CreatedAt)]++
		}
		if !u.LastActiveAt.IsZero() {
			markActive(dayKey(u.LastActiveAt), u.ID)
		}
		if !u.UpdatedAt.IsZero() {
			markActive(dayKey(u.UpdatedAt), u.ID)
		}
	}
	for i := range sessions {
		day := dayKey(sessions[i].StartedAt)
		for _, id := range sessions[i].Participants() {
			if _, tracked := idx[id]; tracked {
				markActive(day, id)
			}
		}
	}

	summary := &models.UserGrowthSummary{
		Window: r.Window(),
		Daily:  make([]models.UserGrowthDay, 0, r.Days),
	}
	r.EachDay(func(day time.Time) {
		key := day.Format(dayLayout)
		returning := 0
		for id := range activeByDay[key] {
			if u := idx[id]; u != nil && dayStart(u.CreatedAt).Before(day) {
				returning++
			}
		}
		entry := models.UserGrowthDay{
			Date:           key,
			NewUsers:       newByDay[key],
			ReturningUsers: returning,
			TotalUsers:     newByDay[key] + returning,
		}
		summary.Daily = append(summary.Daily, entry)
		summary.Totals.NewUsers += entry.NewUsers
		summary.Totals.ReturningUsers += entry.ReturningUsers
		summary.Totals.TotalUsers += entry.TotalUsers
	})

	return summary, nil
}
