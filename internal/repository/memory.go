// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voxlink/insights/internal/models"
)

// MemoryStore is the in-process MetricsRepository adapter. It is the
// development and test backend, and the reference for adapter equivalence.
//
// All methods are safe for concurrent use; returned slices and structs are
// defensive copies.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]models.User
	sessions  map[string]models.Session
	goals     map[string]models.GoalDefinition // keyed by goal id
	snapshots map[string][]models.GoalSnapshot // keyed by goal key, ordered by timestamp
	baselines map[string]models.AnomalyBaseline
	events    []models.AnomalyEvent // ordered by insertion, capped ring
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]models.User),
		sessions:  make(map[string]models.Session),
		goals:     make(map[string]models.GoalDefinition),
		snapshots: make(map[string][]models.GoalSnapshot),
		baselines: make(map[string]models.AnomalyBaseline),
	}
}

// SeedUsers replaces the raw user records. Intended for wiring the store to
// the surrounding backend's data feed and for tests.
func (s *MemoryStore) SeedUsers(_ context.Context, users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]models.User, len(users))
	for _, u := range users {
		s.users[u.ID] = u
	}
	return nil
}

// SeedSessions replaces the raw session records.
func (s *MemoryStore) SeedSessions(_ context.Context, sessions []models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]models.Session, len(sessions))
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
	}
	return nil
}

// ListUsers returns users matching the query, ordered by creation time.
func (s *MemoryStore) ListUsers(_ context.Context, q UserQuery) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if q.CreatedFrom != nil && u.CreatedAt.Before(*q.CreatedFrom) {
			continue
		}
		if q.CreatedTo != nil && u.CreatedAt.After(*q.CreatedTo) {
			continue
		}
		if q.ActiveFrom != nil && u.LastActiveAt.Before(*q.ActiveFrom) {
			continue
		}
		if q.ActiveTo != nil && u.LastActiveAt.After(*q.ActiveTo) {
			continue
		}
		if !q.Filter.Match(&u) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListSessions returns sessions started within [From, To], ordered by start.
func (s *MemoryStore) ListSessions(_ context.Context, q SessionQuery) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.StartedAt.Before(q.From) || sess.StartedAt.After(q.To) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

// ListGoals returns all goal definitions ordered by creation time.
func (s *MemoryStore) ListGoals(_ context.Context) ([]models.GoalDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.GoalDefinition, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, copyGoal(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetGoalByKeyOrID resolves a goal by id first, then by normalized key.
// Returns (nil, nil) when no goal matches.
func (s *MemoryStore) GetGoalByKeyOrID(_ context.Context, keyOrID string) (*models.GoalDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if g, ok := s.goals[keyOrID]; ok {
		cp := copyGoal(g)
		return &cp, nil
	}
	needle := strings.ToLower(strings.TrimSpace(keyOrID))
	for _, g := range s.goals {
		if g.Key == needle {
			cp := copyGoal(g)
			return &cp, nil
		}
	}
	return nil, nil
}

// SaveGoal inserts or replaces a goal definition by id.
func (s *MemoryStore) SaveGoal(_ context.Context, goal *models.GoalDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goal.ID] = copyGoal(*goal)
	return nil
}

// AppendSnapshot appends to the goal's series, keeping it ordered by
// timestamp and trimmed to SnapshotRetention (oldest evicted first).
func (s *MemoryStore) AppendSnapshot(_ context.Context, snap models.GoalSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := append(s.snapshots[snap.GoalKey], snap)
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	if excess := len(series) - SnapshotRetention; excess > 0 {
		series = append([]models.GoalSnapshot(nil), series[excess:]...)
	}
	s.snapshots[snap.GoalKey] = series
	return nil
}

// ListSnapshots returns the goal's snapshots within [from, to], ascending.
func (s *MemoryStore) ListSnapshots(_ context.Context, goalKey string, from, to time.Time) ([]models.GoalSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.GoalSnapshot
	for _, snap := range s.snapshots[goalKey] {
		if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// LatestSnapshot returns the most recent snapshot for the goal, or
// (nil, nil) when the series is empty.
func (s *MemoryStore) LatestSnapshot(_ context.Context, goalKey string) (*models.GoalSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.snapshots[goalKey]
	if len(series) == 0 {
		return nil, nil
	}
	cp := series[len(series)-1]
	return &cp, nil
}

// UpsertBaseline replaces the baseline row for (metric, period).
func (s *MemoryStore) UpsertBaseline(_ context.Context, baseline models.AnomalyBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines[baselineKey(baseline.Metric, baseline.Period)] = baseline
	return nil
}

// ListBaselines returns all baselines ordered by metric then period.
func (s *MemoryStore) ListBaselines(_ context.Context) ([]models.AnomalyBaseline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AnomalyBaseline, 0, len(s.baselines))
	for _, b := range s.baselines {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Metric == out[j].Metric {
			return out[i].Period < out[j].Period
		}
		return out[i].Metric < out[j].Metric
	})
	return out, nil
}

// AppendAnomalyEvent appends to the event ring, evicting the oldest entries
// beyond AnomalyEventRetention.
func (s *MemoryStore) AppendAnomalyEvent(_ context.Context, event models.AnomalyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if excess := len(s.events) - AnomalyEventRetention; excess > 0 {
		s.events = append([]models.AnomalyEvent(nil), s.events[excess:]...)
	}
	return nil
}

// ListAnomalyEvents returns events with timestamps in [from, to], newest
// first.
func (s *MemoryStore) ListAnomalyEvents(_ context.Context, from, to time.Time) ([]models.AnomalyEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AnomalyEvent
	for _, e := range s.events {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyGoal(g models.GoalDefinition) models.GoalDefinition {
	g.Tags = append([]string(nil), g.Tags...)
	return g
}

func baselineKey(metric string, period models.TimeseriesInterval) string {
	return metric + "|" + string(period)
}

var _ MetricsRepository = (*MemoryStore)(nil)
