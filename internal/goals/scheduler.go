// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import (
	"context"
	"sync"
	"time"

	"github.com/voxlink/insights/internal/logging"
	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// DefaultRecomputeQuiet is the debounce quiet period applied when the
// scheduler is constructed with a non-positive one.
const DefaultRecomputeQuiet = 500 * time.Millisecond

// Scheduler debounces goal recompute requests per goal key. Each Schedule
// call arms (or re-arms) a timer; when the quiet period elapses without
// another request, the goal's value is recomputed and a snapshot appended.
//
// Recompute failures are logged and counted but never propagate; a broken
// calculator must not take the scheduler down with it.
type Scheduler struct {
	repo  repository.MetricsRepository
	calc  *Calculators
	now   func() time.Time
	quiet time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRecompute
	closed  bool
}

// pendingRecompute identifies one armed debounce timer. The fire callback
// carries its own entry and acts only while that entry is still the one
// registered for the key, so a callback racing a replacement cannot
// recompute twice or skew the pending gauge.
type pendingRecompute struct {
	timer *time.Timer
}

// NewScheduler creates a recompute scheduler. A non-positive quiet period
// falls back to DefaultRecomputeQuiet; a nil clock defaults to time.Now.
func NewScheduler(repo repository.MetricsRepository, calc *Calculators, quiet time.Duration, now func() time.Time) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultRecomputeQuiet
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		repo:    repo,
		calc:    calc,
		now:     now,
		quiet:   quiet,
		pending: make(map[string]*pendingRecompute),
	}
}

// Schedule requests a recompute for the goal after the quiet period.
// A request for a key with a timer already pending replaces that timer,
// so bursts of updates collapse into a single recompute.
func (s *Scheduler) Schedule(goalKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.pending[goalKey]; ok {
		prev.timer.Stop()
		metrics.RecomputeCoalesced.Inc()
	} else {
		metrics.RecomputePending.Inc()
	}
	p := &pendingRecompute{}
	p.timer = time.AfterFunc(s.quiet, func() {
		s.fire(goalKey, p)
	})
	s.pending[goalKey] = p
}

func (s *Scheduler) fire(goalKey string, p *pendingRecompute) {
	s.mu.Lock()
	if s.closed || s.pending[goalKey] != p {
		// The entry was replaced by a newer Schedule or removed by Close
		// while this callback was in flight; that owner recomputes (or
		// already settled the gauge).
		s.mu.Unlock()
		return
	}
	delete(s.pending, goalKey)
	s.mu.Unlock()
	metrics.RecomputePending.Dec()

	if err := s.Recompute(context.Background(), goalKey); err != nil {
		logging.Error().Err(err).Str("goal", goalKey).Msg("goal recompute failed")
	}
}

// Recompute synchronously recalculates the goal's value and appends a
// snapshot. Missing and inactive goals are skipped without error.
func (s *Scheduler) Recompute(ctx context.Context, goalKey string) error {
	goal, err := s.repo.GetGoalByKeyOrID(ctx, goalKey)
	if err != nil {
		metrics.RecomputeExecutions.WithLabelValues("error").Inc()
		return err
	}
	if goal == nil || !goal.IsActive {
		metrics.RecomputeExecutions.WithLabelValues("skipped").Inc()
		return nil
	}

	value, meta, err := s.calc.Compute(ctx, goal)
	if err != nil {
		metrics.RecomputeExecutions.WithLabelValues("error").Inc()
		return err
	}

	latest, err := s.repo.LatestSnapshot(ctx, goal.Key)
	if err != nil {
		metrics.RecomputeExecutions.WithLabelValues("error").Inc()
		return err
	}
	delta := value
	if latest != nil {
		delta = value - latest.Value
	}

	snapshot := models.GoalSnapshot{
		GoalKey:     goal.Key,
		Timestamp:   s.now().UTC(),
		Value:       round2(value),
		TargetValue: round2(goal.TargetValue),
		Delta:       round2(delta),
		Metadata:    meta,
	}
	if err := s.repo.AppendSnapshot(ctx, snapshot); err != nil {
		metrics.RecomputeExecutions.WithLabelValues("error").Inc()
		return err
	}

	if history, err := s.repo.ListSnapshots(ctx, goal.Key, time.Time{}, s.now().UTC()); err == nil {
		metrics.SnapshotSeriesLength.WithLabelValues(goal.Key).Set(float64(len(history)))
	}
	metrics.RecomputeExecutions.WithLabelValues("ok").Inc()
	logging.Debug().
		Str("goal", goal.Key).
		Float64("value", snapshot.Value).
		Float64("delta", snapshot.Delta).
		Msg("goal snapshot recorded")
	return nil
}

// Close stops all pending timers. Schedule calls after Close are no-ops.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
		// An in-flight callback sees closed and returns without touching
		// the gauge, so every removed entry settles here.
		metrics.RecomputePending.Dec()
	}
}
