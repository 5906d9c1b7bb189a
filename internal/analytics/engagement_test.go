// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

func endedSession(id, u1, u2 string, mode models.ChatMode, startedAt time.Time, durationSeconds float64) models.Session {
	return models.Session{
		ID:              id,
		User1ID:         u1,
		User2ID:         u2,
		Mode:            mode,
		Status:          models.SessionEnded,
		StartedAt:       startedAt,
		DurationSeconds: &durationSeconds,
	}
}

func TestHeatmap(t *testing.T) {
	store := repository.NewMemoryStore()

	// 2026-04-01 is a Wednesday (weekday 3). Two text sessions share the
	// 10:00 cell; one video session lands on Thursday 22:00.
	seedSessions(t, store, []models.Session{
		endedSession("s1", "u1", "u2", models.ModeText, day(1, 10), 60),
		endedSession("s2", "u1", "u3", models.ModeText, day(1, 10), 60),
		endedSession("s3", "u2", "u3", models.ModeVideo, day(2, 22), 60),
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.Heatmap(context.Background(), "2026-04-01", "2026-04-07", repository.Filter{})
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}

	if len(got.Rows) != 7 {
		t.Fatalf("got %d rows, want 7", len(got.Rows))
	}
	for dayIdx, row := range got.Rows {
		if row.Day != dayIdx {
			t.Errorf("row[%d].Day = %d", dayIdx, row.Day)
		}
		if len(row.Hours) != 24 {
			t.Fatalf("row[%d] has %d hours, want 24", dayIdx, len(row.Hours))
		}
	}

	wednesday := got.Rows[3].Hours[10]
	if wednesday.TotalSessions != 2 {
		t.Errorf("wednesday 10:00 sessions = %d, want 2", wednesday.TotalSessions)
	}
	if wednesday.ModeBreakdown[models.ModeText] != 2 {
		t.Errorf("wednesday 10:00 text sessions = %d, want 2", wednesday.ModeBreakdown[models.ModeText])
	}
	if wednesday.UniqueUsers != 3 {
		t.Errorf("wednesday 10:00 unique users = %d, want 3", wednesday.UniqueUsers)
	}

	thursday := got.Rows[4].Hours[22]
	if thursday.TotalSessions != 1 || thursday.ModeBreakdown[models.ModeVideo] != 1 {
		t.Errorf("thursday 22:00 cell = %+v", thursday)
	}

	if got.Totals.Sessions != 3 {
		t.Errorf("total sessions = %d, want 3", got.Totals.Sessions)
	}
	if got.Totals.UniqueUsers != 3 {
		t.Errorf("total unique users = %d, want 3", got.Totals.UniqueUsers)
	}
	if got.Totals.Peak == nil || got.Totals.Peak.Day != 3 || got.Totals.Peak.Hour != 10 || got.Totals.Peak.TotalSessions != 2 {
		t.Errorf("peak = %+v, want wednesday 10:00 with 2 sessions", got.Totals.Peak)
	}
}

func TestHeatmapWithFilter(t *testing.T) {
	store := repository.NewMemoryStore()

	u1 := baseUser("u1", day(1, 8))
	u1.Platform = "ios"
	u2 := baseUser("u2", day(1, 9))
	u2.Platform = "android"
	u3 := baseUser("u3", day(1, 10))
	u3.Platform = "android"
	seedUser(t, store, []models.User{u1, u2, u3})

	seedSessions(t, store, []models.Session{
		endedSession("s1", "u1", "u2", models.ModeText, day(1, 10), 60),
		endedSession("s2", "u2", "u3", models.ModeText, day(1, 10), 60),
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.Heatmap(context.Background(), "2026-04-01", "2026-04-07",
		repository.Filter{Platforms: []string{"ios"}})
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}

	// s2 involves no ios user and is excluded; s1 counts, but only u1
	// feeds the unique-user sets.
	wednesday := got.Rows[3].Hours[10]
	if wednesday.TotalSessions != 1 {
		t.Errorf("wednesday 10:00 sessions = %d, want 1", wednesday.TotalSessions)
	}
	if wednesday.UniqueUsers != 1 {
		t.Errorf("wednesday 10:00 unique users = %d, want 1", wednesday.UniqueUsers)
	}
	if got.Totals.Sessions != 1 || got.Totals.UniqueUsers != 1 {
		t.Errorf("totals = %+v, want 1 session and 1 unique user", got.Totals)
	}
}

func TestEngagementSummary(t *testing.T) {
	store := repository.NewMemoryStore()

	u1 := baseUser("u1", day(1, 8))
	u1.Platform = "ios"
	u1.Gender = "female"
	u1.LastActiveAt = day(7, 9)
	u2 := baseUser("u2", day(1, 9))
	u2.Platform = "android"
	u2.Gender = "male"
	u2.LastActiveAt = day(7, 9)
	u3 := baseUser("u3", day(2, 9))
	u3.Platform = "ios"
	u3.Gender = "female"
	u3.LastActiveAt = day(2, 10)
	seedUser(t, store, []models.User{u1, u2, u3})

	active := models.Session{
		ID: "s4", User1ID: "u1", User2ID: "u2", Mode: models.ModeAudio,
		Status: models.SessionActive, StartedAt: day(7, 9),
	}
	seedSessions(t, store, []models.Session{
		endedSession("s1", "u1", "u2", models.ModeText, day(2, 10), 30),   // 0-1m bin
		endedSession("s2", "u1", "u3", models.ModeText, day(3, 11), 120),  // 1-3m bin
		endedSession("s3", "u1", "u2", models.ModeVideo, day(4, 12), 700), // 10-30m bin
		active,
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.EngagementSummary(context.Background(), "2026-04-01", "2026-04-07", repository.Filter{})
	if err != nil {
		t.Fatalf("EngagementSummary failed: %v", err)
	}

	totals := got.Totals
	if totals.Sessions != 4 || totals.CompletedSessions != 3 || totals.ActiveSessions != 1 {
		t.Errorf("totals = %+v, want 4 sessions, 3 completed, 1 active", totals)
	}
	if totals.UniqueUsers != 3 {
		t.Errorf("unique users = %d, want 3", totals.UniqueUsers)
	}
	// u1 (4 sessions) and u2 (3) repeat; u3 has one.
	if totals.RepeatUsers != 2 {
		t.Errorf("repeat users = %d, want 2", totals.RepeatUsers)
	}
	if totals.RepeatRate != 66.67 {
		t.Errorf("repeat rate = %v, want 66.67", totals.RepeatRate)
	}
	// Only u3 went quiet more than 7 days before the window end... the
	// window is 7 days, so nobody can churn here.
	if totals.ChurnRate != 0 {
		t.Errorf("churn rate = %v, want 0", totals.ChurnRate)
	}

	durations := got.Durations
	if durations.CompletedSessions != 3 {
		t.Fatalf("measured sessions = %d, want 3", durations.CompletedSessions)
	}
	if durations.MedianSeconds != 120 {
		t.Errorf("median = %v, want 120", durations.MedianSeconds)
	}
	if durations.AverageSeconds != 283.33 {
		t.Errorf("average = %v, want 283.33", durations.AverageSeconds)
	}
	if durations.P90Seconds != 700 {
		t.Errorf("p90 = %v, want 700", durations.P90Seconds)
	}
	binCounts := map[string]int{}
	for _, bin := range durations.Distribution {
		binCounts[bin.Label] = bin.Count
	}
	if binCounts["0-1m"] != 1 || binCounts["1-3m"] != 1 || binCounts["10-30m"] != 1 {
		t.Errorf("bin counts = %v", binCounts)
	}
	if binCounts["3-10m"] != 0 || binCounts["30m+"] != 0 {
		t.Errorf("unexpected bin counts = %v", binCounts)
	}
	if len(durations.Sparkline) != 7 {
		t.Fatalf("sparkline has %d points, want 7", len(durations.Sparkline))
	}
	if durations.Sparkline[1].Date != "2026-04-02" || durations.Sparkline[1].Value != 30 {
		t.Errorf("sparkline[1] = %+v, want 2026-04-02 / 30", durations.Sparkline[1])
	}

	depth := got.Depth
	if depth.AverageSessionsPerUser != 2.67 {
		t.Errorf("average sessions per user = %v, want 2.67", depth.AverageSessionsPerUser)
	}
	if depth.MedianSessionsPerUser != 3 {
		t.Errorf("median sessions per user = %v, want 3", depth.MedianSessionsPerUser)
	}
	if depth.PerModeSessions[models.ModeText] != 2 || depth.PerModeSessions[models.ModeVideo] != 1 || depth.PerModeSessions[models.ModeAudio] != 1 {
		t.Errorf("per-mode sessions = %v", depth.PerModeSessions)
	}

	if len(got.Cohorts) == 0 {
		t.Fatal("expected cohorts")
	}
	var iosCohort *models.EngagementCohort
	for i := range got.Cohorts {
		if got.Cohorts[i].Type == models.CohortPlatform && got.Cohorts[i].Key == "ios" {
			iosCohort = &got.Cohorts[i]
		}
	}
	if iosCohort == nil {
		t.Fatal("missing ios platform cohort")
	}
	// u1 (4 sessions) + u3 (1 session) on ios.
	if iosCohort.Sessions != 5 || iosCohort.UniqueUsers != 2 {
		t.Errorf("ios cohort = %+v, want 5 sessions across 2 users", iosCohort)
	}
}

func TestEngagementSummaryWithFilter(t *testing.T) {
	store := repository.NewMemoryStore()

	u1 := baseUser("u1", day(1, 8))
	u1.Platform = "ios"
	u2 := baseUser("u2", day(1, 9))
	u2.Platform = "android"
	seedUser(t, store, []models.User{u1, u2})

	seedSessions(t, store, []models.Session{
		endedSession("s1", "u1", "u2", models.ModeText, day(2, 10), 60),
		endedSession("s2", "u2", "", models.ModeText, day(3, 10), 60),
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.EngagementSummary(context.Background(), "2026-04-01", "2026-04-07",
		repository.Filter{Platforms: []string{"ios"}})
	if err != nil {
		t.Fatalf("EngagementSummary failed: %v", err)
	}

	// s2 involves no ios user and is excluded; s1 counts through u1 only.
	if got.Totals.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", got.Totals.Sessions)
	}
	if got.Totals.UniqueUsers != 1 {
		t.Errorf("unique users = %d, want 1", got.Totals.UniqueUsers)
	}
}
