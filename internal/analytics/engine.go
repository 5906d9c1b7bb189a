// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// Engine computes derived analytics over a MetricsRepository. It is
// stateless and safe for concurrent use.
type Engine struct {
	repo repository.MetricsRepository
	now  func() time.Time
}

// NewEngine creates an analytics engine. A nil clock defaults to time.Now.
func NewEngine(repo repository.MetricsRepository, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{repo: repo, now: now}
}

// usersCreatedIn loads the users who signed up inside the range, after
// segment filtering.
func (e *Engine) usersCreatedIn(ctx context.Context, r Range, filter repository.Filter) ([]models.User, error) {
	from, to := r.From(), r.To()
	users, err := e.repo.ListUsers(ctx, repository.UserQuery{
		CreatedFrom: &from,
		CreatedTo:   &to,
		Filter:      filter.Normalize(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load users for window: %w", err)
	}
	return users, nil
}

// allUsers loads the full filtered user population, regardless of signup
// date. Needed wherever session participants map back to user segments.
func (e *Engine) allUsers(ctx context.Context, filter repository.Filter) ([]models.User, error) {
	users, err := e.repo.ListUsers(ctx, repository.UserQuery{Filter: filter.Normalize()})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// sessionsIn loads the sessions started inside the range.
func (e *Engine) sessionsIn(ctx context.Context, r Range) ([]models.Session, error) {
	sessions, err := e.repo.ListSessions(ctx, repository.SessionQuery{From: r.From(), To: r.To()})
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for window: %w", err)
	}
	return sessions, nil
}

// userIndex maps user ids to their records for participant lookups.
func userIndex(users []models.User) map[string]*models.User {
	idx := make(map[string]*models.User, len(users))
	for i := range users {
		idx[users[i].ID] = &users[i]
	}
	return idx
}
