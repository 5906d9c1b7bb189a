// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package analytics

import (
	"fmt"
	"time"

	"github.com/voxlink/insights/internal/models"
)

// Window caps, in days. Summary-style queries walk every user and session in
// the window, so they are capped; timeseries-style reads are validated but
// uncapped.
const (
	SummaryRangeCapDays   = 60
	RetentionRangeCapDays = 90

	// DefaultRangeDays is the window applied when both bounds are empty.
	DefaultRangeDays = 30
)

// RangeError reports an invalid query window. It is returned synchronously,
// before any data access, and maps to a client-side bad-request.
type RangeError struct {
	Field  string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Range is a validated, day-truncated UTC query window. Both bounds are
// inclusive; StartDay and EndDay are UTC midnights.
type Range struct {
	StartDay time.Time
	EndDay   time.Time
	Days     int
}

// From returns the inclusive lower query bound.
func (r Range) From() time.Time { return r.StartDay }

// To returns the inclusive upper query bound (last instant of EndDay).
func (r Range) To() time.Time { return r.EndDay.Add(24*time.Hour - time.Nanosecond) }

// Window renders the range in result form.
func (r Range) Window() models.Window {
	return models.Window{
		Start: r.StartDay.Format(dayLayout),
		End:   r.EndDay.Format(dayLayout),
		Days:  r.Days,
	}
}

// EachDay calls fn for every UTC day in the range, in order.
func (r Range) EachDay(fn func(day time.Time)) {
	for day := r.StartDay; !day.After(r.EndDay); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}

const dayLayout = "2006-01-02"

// ValidateRange parses and validates a [start, end] date window. Inputs may
// be dates (2006-01-02) or RFC 3339 timestamps; both are truncated to the
// UTC day. When both are empty the window defaults to the DefaultRangeDays
// days ending at now. capDays <= 0 disables the cap.
func ValidateRange(start, end string, capDays int, now func() time.Time) (Range, error) {
	var (
		startDay, endDay time.Time
		err              *RangeError
	)
	if start == "" && end == "" {
		endDay = now().UTC().Truncate(24 * time.Hour)
		startDay = endDay.AddDate(0, 0, -(DefaultRangeDays - 1))
	} else {
		if startDay, err = parseDay("start_date", start); err != nil {
			return Range{}, err
		}
		if endDay, err = parseDay("end_date", end); err != nil {
			return Range{}, err
		}
	}

	if startDay.After(endDay) {
		return Range{}, &RangeError{Field: "range", Reason: "start_date is after end_date"}
	}
	days := int(endDay.Sub(startDay).Hours()/24) + 1
	if capDays > 0 && days > capDays {
		return Range{}, &RangeError{
			Field:  "range",
			Reason: fmt.Sprintf("window of %d days exceeds the %d day maximum", days, capDays),
		}
	}
	return Range{StartDay: startDay, EndDay: endDay, Days: days}, nil
}

func parseDay(field, value string) (time.Time, *RangeError) {
	if value == "" {
		return time.Time{}, &RangeError{Field: field, Reason: "required"}
	}
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}
	return time.Time{}, &RangeError{
		Field:  field,
		Reason: fmt.Sprintf("%q is not a date (2006-01-02) or RFC 3339 timestamp", value),
	}
}
