// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// profileRichInterestCount is the interest count at which a profile counts
// as rich in the completion metadata.
const profileRichInterestCount = 3

// Calculators computes the current value of each goal metric from raw
// records. Stateless and safe for concurrent use.
type Calculators struct {
	repo repository.MetricsRepository
	now  func() time.Time
}

// NewCalculators creates the calculator set. A nil clock defaults to
// time.Now.
func NewCalculators(repo repository.MetricsRepository, now func() time.Time) *Calculators {
	if now == nil {
		now = time.Now
	}
	return &Calculators{repo: repo, now: now}
}

// Compute returns the goal's current value and calculator metadata.
// Custom and unrecognized metrics carry the last recorded snapshot value
// forward; they never fail.
func (c *Calculators) Compute(ctx context.Context, goal *models.GoalDefinition) (float64, json.RawMessage, error) {
	switch goal.Metric {
	case models.MetricCoins:
		return c.computeCoins(ctx)
	case models.MetricProfileCompletion:
		return c.computeProfileCompletion(ctx)
	case models.MetricMatches:
		return c.computeMatches(ctx)
	default:
		return c.carryForward(ctx, goal.Key)
	}
}

func (c *Calculators) computeCoins(ctx context.Context) (float64, json.RawMessage, error) {
	users, err := c.repo.ListUsers(ctx, repository.UserQuery{})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load users for coin total: %w", err)
	}
	var total float64
	for i := range users {
		total += users[i].Coins
	}
	meta, _ := json.Marshal(map[string]int{"totalUsers": len(users)})
	return total, meta, nil
}

func (c *Calculators) computeProfileCompletion(ctx context.Context) (float64, json.RawMessage, error) {
	users, err := c.repo.ListUsers(ctx, repository.UserQuery{})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load users for profile completion: %w", err)
	}
	verified, rich := 0, 0
	for i := range users {
		if users[i].IsVerified() {
			verified++
		}
		if len(users[i].Preferences.Interests) >= profileRichInterestCount {
			rich++
		}
	}
	value := toPercentage(float64(verified), float64(len(users)))
	meta, _ := json.Marshal(map[string]int{
		"totalUsers":       len(users),
		"verifiedUsers":    verified,
		"profileRichUsers": rich,
	})
	return value, meta, nil
}

func (c *Calculators) computeMatches(ctx context.Context) (float64, json.RawMessage, error) {
	sessions, err := c.repo.ListSessions(ctx, repository.SessionQuery{To: c.now().UTC()})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load sessions for match count: %w", err)
	}
	completed, active := 0, 0
	for i := range sessions {
		switch sessions[i].Status {
		case models.SessionEnded:
			completed++
		case models.SessionActive:
			active++
		}
	}
	meta, _ := json.Marshal(map[string]int{"activeSessions": active})
	return float64(completed), meta, nil
}

// carryForward keeps a manually recorded metric at its last snapshot value.
func (c *Calculators) carryForward(ctx context.Context, goalKey string) (float64, json.RawMessage, error) {
	latest, err := c.repo.LatestSnapshot(ctx, goalKey)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load latest snapshot for %s: %w", goalKey, err)
	}
	if latest == nil {
		return 0, nil, nil
	}
	return latest.Value, nil, nil
}
