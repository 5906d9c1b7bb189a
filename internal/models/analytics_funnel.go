// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

// FunnelStep reports the surviving population after one predicate.
// ConversionRate is measured against the funnel's initial population,
// StepRate against the previous step's count (100 for the first step).
type FunnelStep struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Count          int     `json:"count"`
	ConversionRate float64 `json:"conversion_rate"`
	StepRate       float64 `json:"step_rate"`
}

// FunnelResult is one evaluated funnel definition.
type FunnelResult struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	TotalUsers  int          `json:"total_users"`
	Steps       []FunnelStep `json:"steps"`
}

// FunnelSummary is the result of a funnel query.
type FunnelSummary struct {
	Window  Window         `json:"window"`
	Funnels []FunnelResult `json:"funnels"`
}
