// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package models

import "time"

// VerificationStatus is the profile verification state of a user.
type VerificationStatus string

const (
	VerificationGuest    VerificationStatus = "guest"
	VerificationVerified VerificationStatus = "verified"
)

// SubscriptionLevel is the paid tier of a user.
type SubscriptionLevel string

const (
	SubscriptionNormal  SubscriptionLevel = "normal"
	SubscriptionPremium SubscriptionLevel = "premium"
)

// ChatMode identifies the transport of a chat session.
type ChatMode string

const (
	ModeText  ChatMode = "text"
	ModeAudio ChatMode = "audio"
	ModeVideo ChatMode = "video"
)

// ChatModes lists all modes in presentation order.
var ChatModes = []ChatMode{ModeText, ModeAudio, ModeVideo}

// SessionStatus is the lifecycle state of a chat session.
type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
)

// UserPreferences holds the declared matching preferences of a user.
// Interests feed the profile-richness signal in the goal calculators.
type UserPreferences struct {
	Language         string   `json:"language"`
	Interests        []string `json:"interests"`
	GenderPreference string   `json:"gender_preference"`
}

// User is the raw user record read from the storage collaborator.
// Creation, mutation, and raw persistence of these records are owned by the
// surrounding admin backend; this subsystem only reads them.
type User struct {
	ID                 string             `json:"id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	LastActiveAt       time.Time          `json:"last_active_at"`
	Coins              float64            `json:"coins"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	SubscriptionLevel  SubscriptionLevel  `json:"subscription_level"`
	Gender             string             `json:"gender,omitempty"`
	Platform           string             `json:"platform,omitempty"`
	SignupSource       string             `json:"signup_source,omitempty"`
	CampaignID         string             `json:"campaign_id,omitempty"`
	SignupCountryCode  string             `json:"signup_country_code,omitempty"`
	SignupCountryName  string             `json:"signup_country_name,omitempty"`
	SignupRegionCode   string             `json:"signup_region_code,omitempty"`
	SignupRegionName   string             `json:"signup_region_name,omitempty"`
	UTMSource          string             `json:"utm_source,omitempty"`
	UTMMedium          string             `json:"utm_medium,omitempty"`
	UTMCampaign        string             `json:"utm_campaign,omitempty"`
	TotalChats         int                `json:"total_chats"`
	Preferences        UserPreferences    `json:"preferences"`
}

// IsVerified reports whether the user has completed profile verification.
func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}

// IsPremium reports whether the user is on a paid subscription.
func (u *User) IsPremium() bool {
	return u.SubscriptionLevel == SubscriptionPremium
}

// Session is the raw chat session record read from the storage collaborator.
type Session struct {
	ID              string        `json:"id"`
	User1ID         string        `json:"user1_id"`
	User2ID         string        `json:"user2_id"`
	Mode            ChatMode      `json:"mode"`
	Status          SessionStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	DurationSeconds *float64      `json:"duration_seconds,omitempty"`
}

// Completed reports whether the session ran to completion.
func (s *Session) Completed() bool {
	return s.Status == SessionEnded
}

// Duration returns the session duration when resolvable: the explicit
// duration field first, otherwise endedAt-startedAt, otherwise 0.
func (s *Session) Duration() time.Duration {
	if s.DurationSeconds != nil && *s.DurationSeconds > 0 {
		return time.Duration(*s.DurationSeconds * float64(time.Second))
	}
	if s.EndedAt != nil && s.EndedAt.After(s.StartedAt) {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return 0
}

// Participants returns the distinct user IDs on the session.
func (s *Session) Participants() []string {
	switch {
	case s.User1ID == "" && s.User2ID == "":
		return nil
	case s.User1ID == "":
		return []string{s.User2ID}
	case s.User2ID == "" || s.User1ID == s.User2ID:
		return []string{s.User1ID}
	default:
		return []string{s.User1ID, s.User2ID}
	}
}

// Window describes the resolved UTC day-level window of an analytics query.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days,omitempty"`
}
