// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

// UserGrowthDay is one day of signup and return-activity counts.
type UserGrowthDay struct {
	Date           string `json:"date"`
	NewUsers       int    `json:"new_users"`
	ReturningUsers int    `json:"returning_users"`
	TotalUsers     int    `json:"total_users"`
}

// UserGrowthTotals aggregates the daily growth counts over the window.
type UserGrowthTotals struct {
	NewUsers       int `json:"new_users"`
	ReturningUsers int `json:"returning_users"`
	TotalUsers     int `json:"total_users"`
}

// UserGrowthSummary is the result of a user growth query.
type UserGrowthSummary struct {
	Window Window           `json:"window"`
	Totals UserGrowthTotals `json:"totals"`
	Daily  []UserGrowthDay  `json:"daily"`
}

// AnalyticsFilterOptions lists the distinct segment values present in the
// user population, for building filter pickers.
type AnalyticsFilterOptions struct {
	Genders       []string `json:"genders"`
	Platforms     []string `json:"platforms"`
	SignupSources []string `json:"signup_sources"`
	Campaigns     []string `json:"campaigns"`
}
