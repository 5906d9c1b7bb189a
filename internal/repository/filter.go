// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

import (
	"strings"

	"github.com/voxlink/insights/internal/models"
)

// Filter is the multi-dimensional segment filter shared by every analytics
// query. Dimensions combine with AND logic; values within one dimension
// combine with OR. An empty (or all-wildcard) dimension is unconstrained.
type Filter struct {
	Genders       []string `json:"genders,omitempty"`
	Platforms     []string `json:"platforms,omitempty"`
	SignupSources []string `json:"signup_sources,omitempty"`
	Campaigns     []string `json:"campaigns,omitempty"`
}

// wildcardTokens match any value and are dropped during normalization.
var wildcardTokens = map[string]struct{}{
	"all": {},
	"any": {},
	"*":   {},
}

// Normalize canonicalizes every dimension: values are trimmed, lower-cased,
// de-duplicated (insertion order preserved), and wildcard tokens removed.
func (f Filter) Normalize() Filter {
	return Filter{
		Genders:       normalizeTokens(f.Genders),
		Platforms:     normalizeTokens(f.Platforms),
		SignupSources: normalizeTokens(f.SignupSources),
		Campaigns:     normalizeTokens(f.Campaigns),
	}
}

// IsEmpty reports whether the filter constrains nothing after normalization.
func (f Filter) IsEmpty() bool {
	return len(f.Genders) == 0 && len(f.Platforms) == 0 &&
		len(f.SignupSources) == 0 && len(f.Campaigns) == 0
}

// Match reports whether a user satisfies every constrained dimension.
// The filter must already be normalized.
func (f Filter) Match(u *models.User) bool {
	if !matchDimension(f.Genders, u.Gender) {
		return false
	}
	if !matchDimension(f.Platforms, u.Platform) {
		return false
	}
	if !matchDimension(f.SignupSources, u.SignupSource) {
		return false
	}
	return matchDimension(f.Campaigns, u.CampaignID)
}

func matchDimension(values []string, candidate string) bool {
	if len(values) == 0 {
		return true
	}
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

func normalizeTokens(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, wildcard := wildcardTokens[v]; wildcard {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
