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

var dayLabels = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Heatmap buckets the window's sessions into a 7x24 UTC day-of-week/hour
// grid with per-mode breakdowns and unique-participant counts. When a
// segment filter is active, a session counts only when at least one
// participant belongs to the filtered population, and only those
// participants feed the unique-user sets.
func (e *Engine) Heatmap(ctx context.Context, start, end string, filter repository.Filter) (*models.EngagementHeatmapSnapshot, error) {
	defer metrics.ObserveQuery("heatmap", time.Now())

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

	type cellUsers = map[string]struct{}
	var (
		grid      [7][24]models.HeatmapCell
		gridUsers [7][24]cellUsers
		allUsers  = make(map[string]struct{})
		peak      *models.HeatmapPeak
		total     int
	)
	for day := range grid {
		for hour := range grid[day] {
			grid[day][hour] = models.HeatmapCell{
				Hour:          hour,
				ModeBreakdown: make(map[models.ChatMode]int),
			}
			gridUsers[day][hour] = make(cellUsers)
		}
	}

	for i := range sessions {
		sess := &sessions[i]
		participants := sess.Participants()
		if filtered {
			members := participants[:0:0]
			for _, id := range participants {
				if _, known := idx[id]; known {
					members = append(members, id)
				}
			}
			if len(members) == 0 {
				continue
			}
			participants = members
		}

		started := sess.StartedAt.UTC()
		day := int(started.Weekday())
		hour := started.Hour()

		cell := &grid[day][hour]
		cell.TotalSessions++
		cell.ModeBreakdown[sess.Mode]++
		for _, id := range participants {
			gridUsers[day][hour][id] = struct{}{}
			allUsers[id] = struct{}{}
		}
		total++

		if peak == nil || cell.TotalSessions > peak.TotalSessions {
			peak = &models.HeatmapPeak{Day: day, Hour: hour, TotalSessions: cell.TotalSessions}
		}
	}

	rows := make([]models.HeatmapRow, 7)
	for day := range grid {
		row := models.HeatmapRow{
			Day:   day,
			Label: dayLabels[day],
			Hours: make([]models.HeatmapCell, 24),
		}
		for hour := range grid[day] {
			cell := grid[day][hour]
			cell.UniqueUsers = len(gridUsers[day][hour])
			row.Hours[hour] = cell
		}
		rows[day] = row
	}

	return &models.EngagementHeatmapSnapshot{
		Window: r.Window(),
		Totals: models.HeatmapTotals{
			Sessions:    total,
			UniqueUsers: len(allUsers),
			Peak:        peak,
		},
		Modes: models.ChatModes,
		Rows:  rows,
	}, nil
}
