// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package services

import (
	"context"

	"github.com/voxlink/insights/internal/logging"
)

// RecomputeScheduler matches goals.Scheduler's lifecycle surface.
type RecomputeScheduler interface {
	Schedule(goalKey string)
	Close()
}

// GoalsService owns the goal scheduler's lifetime. On startup it touches
// the registry, which seeds default goals and schedules their first
// recompute; on shutdown it closes the scheduler so no timers outlive the
// supervisor.
type GoalsService struct {
	seed      func(ctx context.Context) error
	scheduler RecomputeScheduler
	name      string
}

// NewGoalsService creates the supervised goal lifecycle service. The seed
// function runs once per Serve; the registry's List is a natural fit.
func NewGoalsService(seed func(ctx context.Context) error, scheduler RecomputeScheduler) *GoalsService {
	return &GoalsService{
		seed:      seed,
		scheduler: scheduler,
		name:      "goal-scheduler",
	}
}

// Serve implements suture.Service. Blocks until the context is canceled,
// then closes the scheduler.
func (g *GoalsService) Serve(ctx context.Context) error {
	if g.seed != nil {
		if err := g.seed(ctx); err != nil {
			logging.Error().Err(err).Msg("goal seeding failed")
			return err
		}
	}
	logging.Info().Msg("goal scheduler started")

	<-ctx.Done()
	g.scheduler.Close()
	logging.Info().Msg("goal scheduler stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (g *GoalsService) String() string {
	return g.name
}
