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
	"github.com/voxlink/insights/internal/repository"
)

func seedCoinUsers(t *testing.T, store *repository.MemoryStore, coins ...float64) {
	t.Helper()
	users := make([]models.User, 0, len(coins))
	for i, c := range coins {
		users = append(users, models.User{
			ID:                 string(rune('a' + i)),
			CreatedAt:          time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Coins:              c,
			VerificationStatus: models.VerificationGuest,
		})
	}
	if err := store.SeedUsers(context.Background(), users); err != nil {
		t.Fatalf("SeedUsers() error = %v", err)
	}
}

func activeGoal(t *testing.T, store *repository.MemoryStore, key string, metric models.GoalMetric, target float64) {
	t.Helper()
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	err := store.SaveGoal(context.Background(), &models.GoalDefinition{
		ID:          key + "-id",
		Key:         key,
		Name:        key,
		Metric:      metric,
		TargetValue: target,
		IsActive:    true,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
}

func waitForSnapshots(t *testing.T, store *repository.MemoryStore, key string, want int) []models.GoalSnapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snaps, err := store.ListSnapshots(context.Background(), key, time.Time{}, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if len(snaps) >= want {
			return snaps
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d snapshots of %s", want, key)
	return nil
}

func TestSchedulerDebounce(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCoinUsers(t, store, 100, 250)
	activeGoal(t, store, "total_coins", models.MetricCoins, 1000)

	sched := NewScheduler(store, NewCalculators(store, nil), 20*time.Millisecond, nil)
	defer sched.Close()

	// Three requests inside one quiet period collapse into one recompute.
	sched.Schedule("total_coins")
	sched.Schedule("total_coins")
	sched.Schedule("total_coins")

	waitForSnapshots(t, store, "total_coins", 1)
	time.Sleep(50 * time.Millisecond)
	snaps, err := store.ListSnapshots(context.Background(), "total_coins", time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1 after coalescing", len(snaps))
	}
	if snaps[0].Value != 350 {
		t.Errorf("snapshot value = %v, want 350", snaps[0].Value)
	}
	if snaps[0].Delta != 350 {
		t.Errorf("first snapshot delta = %v, want the value itself", snaps[0].Delta)
	}
}

func TestRecomputeDeltaAgainstLatest(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCoinUsers(t, store, 100, 250)
	activeGoal(t, store, "total_coins", models.MetricCoins, 1000)
	ctx := context.Background()

	if err := store.AppendSnapshot(ctx, models.GoalSnapshot{
		GoalKey:   "total_coins",
		Timestamp: time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		Value:     300,
	}); err != nil {
		t.Fatalf("AppendSnapshot() error = %v", err)
	}

	sched := NewScheduler(store, NewCalculators(store, nil), time.Second, nil)
	defer sched.Close()
	if err := sched.Recompute(ctx, "total_coins"); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}

	latest, err := store.LatestSnapshot(ctx, "total_coins")
	if err != nil || latest == nil {
		t.Fatalf("LatestSnapshot() = %v, %v", latest, err)
	}
	if latest.Value != 350 || latest.Delta != 50 {
		t.Errorf("value/delta = %v/%v, want 350/50", latest.Value, latest.Delta)
	}
}

func TestRecomputeSkipsMissingAndInactive(t *testing.T) {
	store := repository.NewMemoryStore()
	activeGoal(t, store, "dormant", models.MetricCoins, 100)
	ctx := context.Background()

	goal, err := store.GetGoalByKeyOrID(ctx, "dormant")
	if err != nil || goal == nil {
		t.Fatalf("goal lookup failed: %v", err)
	}
	goal.IsActive = false
	if err := store.SaveGoal(ctx, goal); err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}

	sched := NewScheduler(store, NewCalculators(store, nil), time.Second, nil)
	defer sched.Close()

	if err := sched.Recompute(ctx, "dormant"); err != nil {
		t.Errorf("inactive goal recompute should be a silent skip, got %v", err)
	}
	if err := sched.Recompute(ctx, "no_such_goal"); err != nil {
		t.Errorf("missing goal recompute should be a silent skip, got %v", err)
	}
	snaps, err := store.ListSnapshots(ctx, "dormant", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("inactive goal accumulated %d snapshots, want 0", len(snaps))
	}
}

func TestReplacedTimerCallbackDoesNotRecompute(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCoinUsers(t, store, 100)
	activeGoal(t, store, "total_coins", models.MetricCoins, 1000)

	sched := NewScheduler(store, NewCalculators(store, nil), time.Hour, nil)
	defer sched.Close()
	sched.Schedule("total_coins")

	sched.mu.Lock()
	armed := sched.pending["total_coins"]
	sched.mu.Unlock()
	if armed == nil {
		t.Fatal("Schedule() left no pending entry")
	}

	// A callback whose timer was already replaced must yield to the armed
	// entry: no recompute, and the entry stays registered.
	sched.fire("total_coins", &pendingRecompute{})

	snaps, err := store.ListSnapshots(context.Background(), "total_coins", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("stale callback produced %d snapshots, want 0", len(snaps))
	}
	sched.mu.Lock()
	still := sched.pending["total_coins"]
	sched.mu.Unlock()
	if still != armed {
		t.Errorf("pending entry = %p, want the armed one %p", still, armed)
	}

	// The registered entry still fires normally.
	armed.timer.Stop()
	sched.fire("total_coins", armed)
	snaps = waitForSnapshots(t, store, "total_coins", 1)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
}

func TestCloseCancelsPendingTimers(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCoinUsers(t, store, 100)
	activeGoal(t, store, "total_coins", models.MetricCoins, 1000)

	sched := NewScheduler(store, NewCalculators(store, nil), 100*time.Millisecond, nil)
	sched.Schedule("total_coins")
	sched.Close()
	sched.Schedule("total_coins") // no-op after Close

	time.Sleep(250 * time.Millisecond)
	snaps, err := store.ListSnapshots(context.Background(), "total_coins", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("Close() left %d snapshots behind, want 0", len(snaps))
	}
}
