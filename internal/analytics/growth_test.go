// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"context"
	"testing"

	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

func TestGrowth(t *testing.T) {
	store := repository.NewMemoryStore()

	// u1 signs up before the window and returns on day 2 via a session.
	u1 := baseUser("u1", day(1, 9))
	// u2 and u3 sign up inside the window; u2 is active again on day 3.
	u2 := baseUser("u2", day(2, 9))
	u2.LastActiveAt = day(3, 10)
	u3 := baseUser("u3", day(3, 9))
	seedUser(t, store, []models.User{u1, u2, u3})

	seedSessions(t, store, []models.Session{
		{ID: "s1", User1ID: "u1", User2ID: "u2", Mode: models.ModeText, Status: models.SessionEnded, StartedAt: day(2, 15)},
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.Growth(context.Background(), "2026-04-02", "2026-04-04", repository.Filter{})
	if err != nil {
		t.Fatalf("Growth failed: %v", err)
	}

	if len(got.Daily) != 3 {
		t.Fatalf("got %d daily entries, want 3", len(got.Daily))
	}

	day2 := got.Daily[0]
	if day2.Date != "2026-04-02" {
		t.Fatalf("daily[0].Date = %s", day2.Date)
	}
	// u2 is new on day 2; u1 returns via the session. u2's own session on
	// its signup day does not make it "returning".
	if day2.NewUsers != 1 || day2.ReturningUsers != 1 {
		t.Errorf("day 2 = %+v, want 1 new / 1 returning", day2)
	}

	day3 := got.Daily[1]
	// u3 is new; u2 (created day 2) is active via lastActiveAt.
	if day3.NewUsers != 1 || day3.ReturningUsers != 1 {
		t.Errorf("day 3 = %+v, want 1 new / 1 returning", day3)
	}

	day4 := got.Daily[2]
	if day4.NewUsers != 0 || day4.ReturningUsers != 0 {
		t.Errorf("day 4 = %+v, want empty", day4)
	}

	if got.Totals.NewUsers != 2 || got.Totals.ReturningUsers != 2 {
		t.Errorf("totals = %+v, want 2 new / 2 returning", got.Totals)
	}
}

func TestAcquisitionMap(t *testing.T) {
	store := repository.NewMemoryStore()

	mk := func(id, country, countryName, regionCode, regionName string) models.User {
		u := baseUser(id, day(2, 9))
		u.SignupCountryCode = country
		u.SignupCountryName = countryName
		u.SignupRegionCode = regionCode
		u.SignupRegionName = regionName
		return u
	}
	seedUser(t, store, []models.User{
		mk("u1", "US", "United States", "CA", "California"),
		mk("u2", "US", "United States", "CA", "California"),
		mk("u3", "US", "United States", "NY", "New York"),
		mk("u4", "DE", "Germany", "", ""),
		mk("u5", "", "", "", ""),
	})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.AcquisitionMap(context.Background(), "2026-04-01", "2026-04-07", repository.Filter{})
	if err != nil {
		t.Fatalf("AcquisitionMap failed: %v", err)
	}

	if got.TotalSignups != 5 || got.Unknown != 1 {
		t.Fatalf("totals = %d/%d unknown, want 5/1", got.TotalSignups, got.Unknown)
	}
	if len(got.Countries) != 2 {
		t.Fatalf("got %d countries, want 2", len(got.Countries))
	}

	us := got.Countries[0]
	if us.CountryCode != "US" || us.Signups != 3 || us.Share != 60 {
		t.Errorf("US = %+v, want 3 signups / 60%%", us)
	}
	if len(us.Regions) != 2 || us.Regions[0].Name != "California" || us.Regions[0].Signups != 2 {
		t.Errorf("US regions = %+v", us.Regions)
	}
	if us.Regions[0].Share != 66.67 {
		t.Errorf("California share = %v, want 66.67", us.Regions[0].Share)
	}

	de := got.Countries[1]
	if de.CountryCode != "DE" || de.Signups != 1 || len(de.Regions) != 0 {
		t.Errorf("DE = %+v", de)
	}
}

func TestAcquisitionSources(t *testing.T) {
	store := repository.NewMemoryStore()

	mk := func(id string, createdDay int, utmSource, signupSource, medium, campaign string) models.User {
		u := baseUser(id, day(createdDay, 9))
		u.UTMSource = utmSource
		u.SignupSource = signupSource
		u.UTMMedium = medium
		u.UTMCampaign = campaign
		return u
	}
	seedUser(t, store, []models.User{
		// Current window (Apr 8-14).
		mk("u1", 9, "Google", "", "cpc", "spring"),
		mk("u2", 10, "google", "", "cpc", "spring"),
		mk("u3", 11, "", "organic", "", ""),
		mk("u4", 12, "", "", "", ""),
		// Previous window (Apr 1-7).
		mk("p1", 3, "google", "", "cpc", "spring"),
	})

	engine := newTestEngine(store, day(20, 0))
	got, err := engine.AcquisitionSources(context.Background(), "2026-04-08", "2026-04-14", repository.Filter{})
	if err != nil {
		t.Fatalf("AcquisitionSources failed: %v", err)
	}

	if got.TotalSignups != 4 || got.Unknown != 1 {
		t.Fatalf("totals = %d/%d unknown, want 4/1", got.TotalSignups, got.Unknown)
	}
	if got.UniqueSources != 2 {
		t.Fatalf("unique sources = %d, want 2", got.UniqueSources)
	}

	top := got.Sources[0]
	if top.Source != "google" || top.Medium != "cpc" || top.Campaign != "spring" || top.Signups != 2 {
		t.Fatalf("top source = %+v", top)
	}
	if top.Share != 50 {
		t.Errorf("top share = %v, want 50", top.Share)
	}
	if top.PreviousSignups == nil || *top.PreviousSignups != 1 {
		t.Fatalf("previous signups = %v, want 1", top.PreviousSignups)
	}
	if top.TrendDelta == nil || *top.TrendDelta != 100 {
		t.Errorf("trend delta = %v, want 100", top.TrendDelta)
	}

	organic := got.Sources[1]
	if organic.Source != "organic" || organic.Signups != 1 {
		t.Fatalf("second source = %+v", organic)
	}
	if organic.PreviousSignups != nil {
		t.Errorf("organic previous = %v, want nil (absent last window)", organic.PreviousSignups)
	}
}

func TestFilterOptions(t *testing.T) {
	store := repository.NewMemoryStore()

	u1 := baseUser("u1", day(1, 9))
	u1.Gender = "Female"
	u1.Platform = "iOS"
	u1.SignupSource = "organic"
	u2 := baseUser("u2", day(2, 9))
	u2.Gender = "male"
	u2.Platform = "android"
	u2.CampaignID = "spring-2026"
	seedUser(t, store, []models.User{u1, u2})

	engine := newTestEngine(store, day(10, 0))
	got, err := engine.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions failed: %v", err)
	}

	if len(got.Genders) != 2 || got.Genders[0] != "female" || got.Genders[1] != "male" {
		t.Errorf("genders = %v", got.Genders)
	}
	if len(got.Platforms) != 2 || got.Platforms[0] != "android" {
		t.Errorf("platforms = %v", got.Platforms)
	}
	if len(got.SignupSources) != 1 || got.SignupSources[0] != "organic" {
		t.Errorf("signup sources = %v", got.SignupSources)
	}
	if len(got.Campaigns) != 1 || got.Campaigns[0] != "spring-2026" {
		t.Errorf("campaigns = %v", got.Campaigns)
	}
}
