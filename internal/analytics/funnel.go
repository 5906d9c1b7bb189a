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

// funnelUser is the evaluated per-user context a funnel predicate sees.
type funnelUser struct {
	user         *models.User
	sessionCount int
	lastActivity time.Time
}

type funnelStepDef struct {
	id    string
	label string
	match func(*funnelUser) bool
}

type funnelDef struct {
	id          string
	name        string
	description string
	steps       []funnelStepDef
}

// canonicalFunnels builds the two built-in funnels. "Active within N days"
// is measured against the window end, not the wall clock, so historical
// queries stay reproducible.
func canonicalFunnels(windowEnd time.Time) []funnelDef {
	activeWithin := func(days int) func(*funnelUser) bool {
		cutoff := windowEnd.AddDate(0, 0, -days)
		return func(fu *funnelUser) bool {
			return !fu.lastActivity.IsZero() && !fu.lastActivity.Before(cutoff)
		}
	}
	signedUp := funnelStepDef{
		id:    "signed_up",
		label: "Signed up",
		match: func(*funnelUser) bool { return true },
	}
	firstChat := funnelStepDef{
		id:    "first_chat",
		label: "Started first chat",
		match: func(fu *funnelUser) bool { return fu.sessionCount >= 1 },
	}

	return []funnelDef{
		{
			id:          "onboarding",
			name:        "Onboarding",
			description: "From signup to paying, verified regular",
			steps: []funnelStepDef{
				signedUp,
				{
					id:    "verified",
					label: "Verified profile",
					match: func(fu *funnelUser) bool { return fu.user.IsVerified() },
				},
				firstChat,
				{
					id:    "regular_chatter",
					label: "3+ chat sessions",
					match: func(fu *funnelUser) bool { return fu.sessionCount >= 3 },
				},
				{
					id:    "premium",
					label: "Premium subscriber",
					match: func(fu *funnelUser) bool { return fu.user.IsPremium() },
				},
			},
		},
		{
			id:          "engagement",
			name:        "Engagement",
			description: "From signup to sustained activity",
			steps: []funnelStepDef{
				signedUp,
				firstChat,
				{
					id:    "repeat_chat",
					label: "3+ chat sessions",
					match: func(fu *funnelUser) bool { return fu.sessionCount >= 3 },
				},
				{
					id:    "active_7d",
					label: "Active in last 7 days",
					match: activeWithin(7),
				},
				{
					id:    "active_30d",
					label: "Active in last 30 days",
					match: activeWithin(30),
				},
			},
		},
	}
}

// Funnels evaluates the canonical funnels over the window's signups.
// Steps apply sequentially: each predicate filters the pool surviving the
// previous step.
func (e *Engine) Funnels(ctx context.Context, start, end string, filter repository.Filter) (*models.FunnelSummary, error) {
	defer metrics.ObserveQuery("funnels", time.Now())

	r, err := ValidateRange(start, end, SummaryRangeCapDays, e.now)
	if err != nil {
		return nil, err
	}

	users, err := e.usersCreatedIn(ctx, r, filter)
	if err != nil {
		return nil, err
	}
	sessions, err := e.sessionsIn(ctx, r)
	if err != nil {
		return nil, err
	}

	idx := userIndex(users)
	pool := make([]*funnelUser, 0, len(users))
	byID := make(map[string]*funnelUser, len(users))
	for i := range users {
		u := &users[i]
		last := u.LastActiveAt
		if u.UpdatedAt.After(last) {
			last = u.UpdatedAt
		}
		fu := &funnelUser{user: u, lastActivity: last}
		pool = append(pool, fu)
		byID[u.ID] = fu
	}
	for i := range sessions {
		sess := &sessions[i]
		for _, id := range sess.Participants() {
			if _, member := idx[id]; !member {
				continue
			}
			fu := byID[id]
			fu.sessionCount++
			if sess.StartedAt.After(fu.lastActivity) {
				fu.lastActivity = sess.StartedAt
			}
		}
	}

	summary := &models.FunnelSummary{Window: r.Window()}
	for _, def := range canonicalFunnels(r.To()) {
		summary.Funnels = append(summary.Funnels, evaluateFunnel(def, pool))
	}
	return summary, nil
}

func evaluateFunnel(def funnelDef, pool []*funnelUser) models.FunnelResult {
	result := models.FunnelResult{
		ID:          def.id,
		Name:        def.name,
		Description: def.description,
		TotalUsers:  len(pool),
		Steps:       make([]models.FunnelStep, 0, len(def.steps)),
	}

	initial := len(pool)
	current := pool
	prev := initial
	for i, step := range def.steps {
		var surviving []*funnelUser
		for _, fu := range current {
			if step.match(fu) {
				surviving = append(surviving, fu)
			}
		}
		count := len(surviving)

		stepRate := 100.0
		if i > 0 {
			stepRate = toPercentage(float64(count), float64(prev))
		}
		result.Steps = append(result.Steps, models.FunnelStep{
			ID:             step.id,
			Label:          step.label,
			Count:          count,
			ConversionRate: toPercentage(float64(count), float64(initial)),
			StepRate:       stepRate,
		})
		current = surviving
		prev = count
	}
	return result
}
