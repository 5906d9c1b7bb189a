// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

import (
	"reflect"
	"testing"

	"github.com/voxlink/insights/internal/models"
)

func TestFilterNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Filter
		want Filter
	}{
		{
			name: "empty stays empty",
			in:   Filter{},
			want: Filter{},
		},
		{
			name: "trims lowers and dedupes preserving order",
			in: Filter{
				Genders: []string{" Female ", "MALE", "female", ""},
			},
			want: Filter{
				Genders: []string{"female", "male"},
			},
		},
		{
			name: "wildcard tokens collapse to unconstrained",
			in: Filter{
				Platforms: []string{"All", "*", "any"},
			},
			want: Filter{},
		},
		{
			name: "wildcard mixed with real values keeps the real values",
			in: Filter{
				SignupSources: []string{"all", "organic", "Paid"},
			},
			want: Filter{
				SignupSources: []string{"organic", "paid"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	user := models.User{
		Gender:       "Female",
		Platform:     "ios",
		SignupSource: "organic",
		CampaignID:   "spring-2026",
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: Filter{},
			want:   true,
		},
		{
			name:   "single dimension match ignores case",
			filter: Filter{Genders: []string{"FEMALE"}},
			want:   true,
		},
		{
			name: "all dimensions must match",
			filter: Filter{
				Genders:   []string{"female"},
				Platforms: []string{"android"},
			},
			want: false,
		},
		{
			name: "values within a dimension are OR",
			filter: Filter{
				Platforms: []string{"android", "ios"},
			},
			want: true,
		},
		{
			name:   "campaign mismatch",
			filter: Filter{Campaigns: []string{"summer-2026"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Normalize().Match(&user)
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
