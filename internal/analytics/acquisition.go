// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// AcquisitionMap reports the window's signups by country with per-region
// breakdowns. Signups without a resolvable country land in the unknown
// bucket.
func (e *Engine) AcquisitionMap(ctx context.Context, start, end string, filter repository.Filter) (*models.AcquisitionMapSummary, error) {
	defer metrics.ObserveQuery("acquisition_map", time.Now())

	r, err := ValidateRange(start, end, SummaryRangeCapDays, e.now)
	if err != nil {
		return nil, err
	}
	users, err := e.usersCreatedIn(ctx, r, filter)
	if err != nil {
		return nil, err
	}

	type regionAcc struct {
		code    string
		name    string
		signups int
	}
	type countryAcc struct {
		code    string
		name    string
		signups int
		regions map[string]*regionAcc
	}

	countries := make(map[string]*countryAcc)
	unknown := 0
	for i := range users {
		u := &users[i]
		code := strings.ToUpper(strings.TrimSpace(u.SignupCountryCode))
		if code == "" {
			unknown++
			continue
		}
		c, ok := countries[code]
		if !ok {
			c = &countryAcc{code: code, name: u.SignupCountryName, regions: make(map[string]*regionAcc)}
			countries[code] = c
		}
		c.signups++
		if c.name == "" {
			c.name = u.SignupCountryName
		}

		regionKey := strings.TrimSpace(u.SignupRegionCode)
		if regionKey == "" {
			regionKey = strings.TrimSpace(u.SignupRegionName)
		}
		if regionKey == "" {
			continue
		}
		reg, ok := c.regions[regionKey]
		if !ok {
			reg = &regionAcc{code: u.SignupRegionCode, name: u.SignupRegionName}
			if reg.name == "" {
				reg.name = regionKey
			}
			c.regions[regionKey] = reg
		}
		reg.signups++
	}

	total := len(users)
	summary := &models.AcquisitionMapSummary{
		Window:       r.Window(),
		TotalSignups: total,
		Unknown:      unknown,
		Countries:    make([]models.AcquisitionCountry, 0, len(countries)),
	}
	for _, c := range countries {
		country := models.AcquisitionCountry{
			CountryCode: c.code,
			Name:        c.name,
			Signups:     c.signups,
			Share:       toPercentage(float64(c.signups), float64(total)),
			Regions:     make([]models.AcquisitionRegion, 0, len(c.regions)),
		}
		for _, reg := range c.regions {
			country.Regions = append(country.Regions, models.AcquisitionRegion{
				RegionCode: reg.code,
				Name:       reg.name,
				Signups:    reg.signups,
				Share:      toPercentage(float64(reg.signups), float64(c.signups)),
			})
		}
		sort.Slice(country.Regions, func(i, j int) bool {
			if country.Regions[i].Signups != country.Regions[j].Signups {
				return country.Regions[i].Signups > country.Regions[j].Signups
			}
			return country.Regions[i].Name < country.Regions[j].Name
		})
		summary.Countries = append(summary.Countries, country)
	}
	sort.Slice(summary.Countries, func(i, j int) bool {
		if summary.Countries[i].Signups != summary.Countries[j].Signups {
			return summary.Countries[i].Signups > summary.Countries[j].Signups
		}
		return summary.Countries[i].CountryCode < summary.Countries[j].CountryCode
	})
	return summary, nil
}

// AcquisitionSources reports the window's signups by attribution tuple
// (source, medium, campaign), with the same-length preceding window for
// trend comparison. The source falls back from utmSource to signupSource.
func (e *Engine) AcquisitionSources(ctx context.Context, start, end string, filter repository.Filter) (*models.AcquisitionSourcesSummary, error) {
	defer metrics.ObserveQuery("acquisition_sources", time.Now())

	r, err := ValidateRange(start, end, SummaryRangeCapDays, e.now)
	if err != nil {
		return nil, err
	}
	users, err := e.usersCreatedIn(ctx, r, filter)
	if err != nil {
		return nil, err
	}

	prev := Range{
		StartDay: r.StartDay.AddDate(0, 0, -r.Days),
		EndDay:   r.StartDay.AddDate(0, 0, -1),
		Days:     r.Days,
	}
	prevUsers, err := e.usersCreatedIn(ctx, prev, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous window: %w", err)
	}

	current, unknown := countSourceTuples(users)
	previous, _ := countSourceTuples(prevUsers)

	total := len(users)
	summary := &models.AcquisitionSourcesSummary{
		Window:       r.Window(),
		TotalSignups: total,
		Unknown:      unknown,
		Sources:      make([]models.AcquisitionSource, 0, len(current)),
	}
	for tuple, signups := range current {
		src := models.AcquisitionSource{
			Source:   tuple.source,
			Medium:   tuple.medium,
			Campaign: tuple.campaign,
			Signups:  signups,
			Share:    toPercentage(float64(signups), float64(total)),
		}
		if prevCount, seen := previous[tuple]; seen {
			src.PreviousSignups = &prevCount
			if prevCount > 0 {
				delta := round2(float64(signups-prevCount) / float64(prevCount) * 100)
				src.TrendDelta = &delta
			}
		}
		summary.Sources = append(summary.Sources, src)
	}
	summary.UniqueSources = len(summary.Sources)
	sort.Slice(summary.Sources, func(i, j int) bool {
		a, b := &summary.Sources[i], &summary.Sources[j]
		if a.Signups != b.Signups {
			return a.Signups > b.Signups
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Medium != b.Medium {
			return a.Medium < b.Medium
		}
		return a.Campaign < b.Campaign
	})
	return summary, nil
}

type sourceTuple struct {
	source   string
	medium   string
	campaign string
}

func countSourceTuples(users []models.User) (map[sourceTuple]int, int) {
	counts := make(map[sourceTuple]int)
	unknown := 0
	for i := range users {
		u := &users[i]
		source := strings.ToLower(strings.TrimSpace(u.UTMSource))
		if source == "" {
			source = strings.ToLower(strings.TrimSpace(u.SignupSource))
		}
		if source == "" {
			unknown++
			continue
		}
		campaign := strings.ToLower(strings.TrimSpace(u.UTMCampaign))
		if campaign == "" {
			campaign = strings.ToLower(strings.TrimSpace(u.CampaignID))
		}
		counts[sourceTuple{
			source:   source,
			medium:   strings.ToLower(strings.TrimSpace(u.UTMMedium)),
			campaign: campaign,
		}]++
	}
	return counts, unknown
}

// FilterOptions lists the distinct segment values present across the whole
// user population, sorted, for building filter pickers.
func (e *Engine) FilterOptions(ctx context.Context) (*models.AnalyticsFilterOptions, error) {
	defer metrics.ObserveQuery("filter_options", time.Now())

	users, err := e.allUsers(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}

	genders := make(map[string]struct{})
	platforms := make(map[string]struct{})
	sources := make(map[string]struct{})
	campaigns := make(map[string]struct{})
	for i := range users {
		u := &users[i]
		collectOption(genders, u.Gender)
		collectOption(platforms, u.Platform)
		collectOption(sources, u.SignupSource)
		collectOption(campaigns, u.CampaignID)
	}
	return &models.AnalyticsFilterOptions{
		Genders:       sortedOptions(genders),
		Platforms:     sortedOptions(platforms),
		SignupSources: sortedOptions(sources),
		Campaigns:     sortedOptions(campaigns),
	}, nil
}

func collectOption(set map[string]struct{}, value string) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedOptions(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
