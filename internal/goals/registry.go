// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package goals

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxlink/insights/internal/logging"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
	"github.com/voxlink/insights/internal/validation"
)

// recomputeScheduler is what the registry needs from the scheduler; kept as
// an interface so registry tests can observe scheduling without timers.
type recomputeScheduler interface {
	Schedule(goalKey string)
}

// Registry owns goal definitions: upserts, deactivation, lookups, and the
// derived query surface. Deactivation never discards snapshot history.
type Registry struct {
	repo      repository.MetricsRepository
	now       func() time.Time
	scheduler recomputeScheduler

	seedDefaults bool
	seedMu       sync.Mutex
	seeded       bool
}

// NewRegistry creates a goal registry. The scheduler may be nil (no
// recomputes are triggered); a nil clock defaults to time.Now.
func NewRegistry(repo repository.MetricsRepository, scheduler recomputeScheduler, seedDefaults bool, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		repo:         repo,
		now:          now,
		scheduler:    scheduler,
		seedDefaults: seedDefaults,
	}
}

// NormalizeKey canonicalizes a goal key: lower-case, runs of
// non-alphanumeric characters collapse to a single underscore, leading and
// trailing underscores trimmed.
func NormalizeKey(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// defaultGoals are created once on first registry access.
func defaultGoals() []models.GoalInput {
	return []models.GoalInput{
		{
			Key:         "total_coins",
			Name:        "Total coin balance",
			Description: "Sum of coin balances across all users",
			Metric:      models.MetricCoins,
			TargetValue: 100000,
			Unit:        "coins",
		},
		{
			Key:         "profile_completion_rate",
			Name:        "Profile completion rate",
			Description: "Share of users with a verified profile",
			Metric:      models.MetricProfileCompletion,
			TargetValue: 80,
			Unit:        "%",
		},
		{
			Key:         "completed_matches",
			Name:        "Completed matches",
			Description: "Chat sessions that ran to completion",
			Metric:      models.MetricMatches,
			TargetValue: 5000,
			Unit:        "sessions",
		},
	}
}

// ensureSeeded creates the default goals exactly once per process. Existing
// definitions (from a previous run against a persistent backend) are left
// untouched.
func (r *Registry) ensureSeeded(ctx context.Context) error {
	if !r.seedDefaults {
		return nil
	}
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	if r.seeded {
		return nil
	}

	for _, input := range defaultGoals() {
		existing, err := r.repo.GetGoalByKeyOrID(ctx, input.Key)
		if err != nil {
			return fmt.Errorf("failed to check default goal %s: %w", input.Key, err)
		}
		if existing != nil {
			continue
		}
		goal := r.build(input)
		if err := r.repo.SaveGoal(ctx, goal); err != nil {
			return fmt.Errorf("failed to seed default goal %s: %w", input.Key, err)
		}
		logging.Info().Str("goal", goal.Key).Msg("seeded default goal")
		if r.scheduler != nil {
			r.scheduler.Schedule(goal.Key)
		}
	}
	r.seeded = true
	return nil
}

// build materializes a new definition from an input.
func (r *Registry) build(input models.GoalInput) *models.GoalDefinition {
	now := r.now().UTC()
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	key := NormalizeKey(input.Key)
	if key == "" {
		key = NormalizeKey(input.Name)
	}
	if key == "" {
		key = id
	}

	goal := &models.GoalDefinition{
		ID:                    id,
		Key:                   key,
		Name:                  input.Name,
		Description:           input.Description,
		Metric:                input.Metric,
		TargetValue:           input.TargetValue,
		Unit:                  input.Unit,
		Tags:                  input.Tags,
		IsActive:              true,
		OwnerEmail:            input.OwnerEmail,
		Color:                 input.Color,
		AlertThresholdPercent: models.DefaultAlertThresholdPercent,
		Metadata:              input.Metadata,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if goal.Tags == nil {
		goal.Tags = []string{}
	}
	if input.IsActive != nil {
		goal.IsActive = *input.IsActive
	}
	if input.AlertThresholdPercent != nil {
		goal.AlertThresholdPercent = *input.AlertThresholdPercent
	}
	return goal
}

// Upsert creates or updates a goal. Matching is by id first, then by
// normalized key; on update, zero-valued optional fields preserve the
// existing definition. An active goal schedules a recompute.
func (r *Registry) Upsert(ctx context.Context, input models.GoalInput) (*models.GoalDefinition, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}

	var existing *models.GoalDefinition
	if input.ID != "" {
		g, err := r.repo.GetGoalByKeyOrID(ctx, input.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up goal %s: %w", input.ID, err)
		}
		existing = g
	}
	if existing == nil {
		if key := NormalizeKey(input.Key); key != "" {
			g, err := r.repo.GetGoalByKeyOrID(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to look up goal %s: %w", key, err)
			}
			existing = g
		}
	}

	var goal *models.GoalDefinition
	if existing == nil {
		goal = r.build(input)
	} else {
		goal = existing
		goal.Name = input.Name
		goal.Metric = input.Metric
		goal.TargetValue = input.TargetValue
		if input.Description != "" {
			goal.Description = input.Description
		}
		if input.Unit != "" {
			goal.Unit = input.Unit
		}
		if input.Tags != nil {
			goal.Tags = input.Tags
		}
		if input.OwnerEmail != "" {
			goal.OwnerEmail = input.OwnerEmail
		}
		if input.Color != "" {
			goal.Color = input.Color
		}
		if input.Metadata != nil {
			goal.Metadata = input.Metadata
		}
		if input.IsActive != nil {
			goal.IsActive = *input.IsActive
		}
		if input.AlertThresholdPercent != nil {
			goal.AlertThresholdPercent = *input.AlertThresholdPercent
		}
		goal.UpdatedAt = r.now().UTC()
	}

	if err := r.repo.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal %s: %w", goal.Key, err)
	}
	if goal.IsActive && r.scheduler != nil {
		r.scheduler.Schedule(goal.Key)
	}
	return goal, nil
}

// List returns all goal definitions, seeding defaults on first access.
func (r *Registry) List(ctx context.Context) ([]models.GoalDefinition, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return r.repo.ListGoals(ctx)
}

// GetByKeyOrID resolves a goal by id or key. Returns (nil, nil) on a miss.
func (r *Registry) GetByKeyOrID(ctx context.Context, keyOrID string) (*models.GoalDefinition, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return r.repo.GetGoalByKeyOrID(ctx, keyOrID)
}

// Deactivate flips a goal inactive, preserving its snapshot history.
// Returns false when no goal matches.
func (r *Registry) Deactivate(ctx context.Context, keyOrID string) (bool, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return false, err
	}
	goal, err := r.repo.GetGoalByKeyOrID(ctx, keyOrID)
	if err != nil {
		return false, fmt.Errorf("failed to look up goal %s: %w", keyOrID, err)
	}
	if goal == nil {
		return false, nil
	}
	if !goal.IsActive {
		return true, nil
	}
	goal.IsActive = false
	goal.UpdatedAt = r.now().UTC()
	if err := r.repo.SaveGoal(ctx, goal); err != nil {
		return false, fmt.Errorf("failed to deactivate goal %s: %w", goal.Key, err)
	}
	return true, nil
}
