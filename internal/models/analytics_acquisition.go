// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

// AcquisitionRegion is one sub-national region's share of a country's signups.
type AcquisitionRegion struct {
	RegionCode string  `json:"region_code,omitempty"`
	Name       string  `json:"name"`
	Signups    int     `json:"signups"`
	Share      float64 `json:"share"`
}

// AcquisitionCountry is one country's signup volume with region breakdown.
type AcquisitionCountry struct {
	CountryCode string              `json:"country_code"`
	Name        string              `json:"name"`
	Signups     int                 `json:"signups"`
	Share       float64             `json:"share"`
	Regions     []AcquisitionRegion `json:"regions"`
}

// AcquisitionMapSummary is the result of an acquisition map query.
// Unknown counts signups without a resolvable country.
type AcquisitionMapSummary struct {
	Window       Window               `json:"window"`
	TotalSignups int                  `json:"total_signups"`
	Unknown      int                  `json:"unknown"`
	Countries    []AcquisitionCountry `json:"countries"`
}

// AcquisitionSource is one (source, medium, campaign) tuple's signup volume.
// TrendDelta compares against the same-length window immediately preceding.
type AcquisitionSource struct {
	Source          string   `json:"source"`
	Medium          string   `json:"medium,omitempty"`
	Campaign        string   `json:"campaign,omitempty"`
	Signups         int      `json:"signups"`
	Share           float64  `json:"share"`
	PreviousSignups *int     `json:"previous_signups,omitempty"`
	TrendDelta      *float64 `json:"trend_delta,omitempty"`
}

// AcquisitionSourcesSummary is the result of an acquisition sources query.
type AcquisitionSourcesSummary struct {
	Window        Window              `json:"window"`
	TotalSignups  int                 `json:"total_signups"`
	UniqueSources int                 `json:"unique_sources"`
	Unknown       int                 `json:"unknown"`
	Sources       []AcquisitionSource `json:"sources"`
}
