// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package anomaly

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/voxlink/insights/internal/logging"
	"github.com/voxlink/insights/internal/metrics"
	"github.com/voxlink/insights/internal/models"
	"github.com/voxlink/insights/internal/repository"
)

// Detection thresholds. An observation is anomalous when its z-score or its
// relative deviation from the baseline mean clears the reporting bar.
const (
	zReportThreshold  = 1.5
	zMediumThreshold  = 2.5
	zHighThreshold    = 3.5
	relativeThreshold = 0.5
)

// Default lookback windows for the tracked metrics.
const (
	DefaultDailyLookbackDays   = 30
	DefaultHourlyLookbackHours = 48
)

// coinGoalKey is the goal whose snapshot series backs the coins metric.
const coinGoalKey = "total_coins"

// Config tunes the scanner's lookback windows. Zero values use the
// defaults.
type Config struct {
	DailyLookbackDays   int
	HourlyLookbackHours int
}

// Scanner maintains anomaly baselines and emits events for the tracked
// platform metrics. One scan runs at a time; a run requested while another
// is in flight is dropped, not queued.
type Scanner struct {
	repo repository.MetricsRepository
	now  func() time.Time
	cfg  Config

	inFlight atomic.Bool
}

// NewScanner creates an anomaly scanner. A nil clock defaults to time.Now.
func NewScanner(repo repository.MetricsRepository, cfg Config, now func() time.Time) *Scanner {
	if cfg.DailyLookbackDays <= 0 {
		cfg.DailyLookbackDays = DefaultDailyLookbackDays
	}
	if cfg.HourlyLookbackHours <= 0 {
		cfg.HourlyLookbackHours = DefaultHourlyLookbackHours
	}
	if now == nil {
		now = time.Now
	}
	return &Scanner{repo: repo, now: now, cfg: cfg}
}

// trackedMetric couples a metric name and period with its series builder.
type trackedMetric struct {
	name   string
	period models.TimeseriesInterval
	series func(*Scanner, context.Context) ([]float64, error)
}

func trackedMetrics() []trackedMetric {
	return []trackedMetric{
		{name: "new_users", period: models.IntervalDay, series: (*Scanner).dailyNewUsers},
		{name: "sessions", period: models.IntervalDay, series: (*Scanner).dailySessions},
		{name: "completed_sessions", period: models.IntervalDay, series: (*Scanner).dailyCompletedSessions},
		{name: "coins", period: models.IntervalDay, series: (*Scanner).dailyCoins},
		{name: "sessions", period: models.IntervalHour, series: (*Scanner).hourlySessions},
	}
}

// RunOnce executes a full scan over all tracked metrics. A run overlapping
// an in-flight one returns immediately. Per-metric failures are logged and
// counted; sibling metrics still run.
func (s *Scanner) RunOnce(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.ScanRunsDropped.Inc()
		logging.Debug().Msg("anomaly scan dropped, previous run still in flight")
		return
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	for _, tm := range trackedMetrics() {
		if err := s.scanMetric(ctx, tm); err != nil {
			metrics.ScanErrors.WithLabelValues(tm.name).Inc()
			logging.Error().Err(err).
				Str("metric", tm.name).
				Str("period", string(tm.period)).
				Msg("anomaly scan failed for metric")
		}
	}
}

func (s *Scanner) scanMetric(ctx context.Context, tm trackedMetric) error {
	series, err := tm.series(s, ctx)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return nil
	}

	latest := series[len(series)-1]
	mu := meanOf(series)
	sigma := stddevPop(series, mu)

	baseline := models.AnomalyBaseline{
		Metric:            tm.name,
		Period:            tm.period,
		Mean:              round2(mu),
		StandardDeviation: round2(sigma),
		SampleSize:        len(series),
		Trend:             round2(latest - mu),
		UpdatedAt:         s.now().UTC(),
	}
	if err := s.repo.UpsertBaseline(ctx, baseline); err != nil {
		return fmt.Errorf("failed to upsert baseline for %s/%s: %w", tm.name, tm.period, err)
	}
	if sigma == 0 {
		return nil
	}

	z := (latest - mu) / sigma
	relative := 0.0
	if mu != 0 {
		relative = (latest - mu) / mu
	}
	if math.Abs(z) < zReportThreshold && math.Abs(relative) < relativeThreshold {
		return nil
	}

	direction := models.DirectionNegative
	if latest >= mu {
		direction = models.DirectionPositive
	}
	severity := classifySeverity(math.Abs(z))

	meta, _ := json.Marshal(map[string]any{
		"period":            string(tm.period),
		"relativeDeviation": round2(relative * 100),
		"sampleSize":        len(series),
	})
	event := models.AnomalyEvent{
		ID:             uuid.NewString(),
		Metric:         tm.name,
		Timestamp:      s.now().UTC(),
		Severity:       severity,
		Direction:      direction,
		Actual:         round2(latest),
		Expected:       round2(mu),
		ZScore:         round2(z),
		BaselineMean:   round2(mu),
		BaselineStdDev: round2(sigma),
		Metadata:       meta,
	}
	if err := s.repo.AppendAnomalyEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append anomaly event for %s: %w", tm.name, err)
	}
	metrics.AnomaliesEmitted.WithLabelValues(tm.name, string(severity)).Inc()
	logging.Info().
		Str("metric", tm.name).
		Str("period", string(tm.period)).
		Str("severity", string(severity)).
		Float64("actual", event.Actual).
		Float64("expected", event.Expected).
		Float64("z", event.ZScore).
		Msg("anomaly detected")
	return nil
}

func classifySeverity(absZ float64) models.AnomalySeverity {
	switch {
	case absZ >= zHighThreshold:
		return models.SeverityHigh
	case absZ >= zMediumThreshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// dailyWindow returns the start of the oldest daily bucket and the bucket
// count.
func (s *Scanner) dailyWindow() (time.Time, int) {
	days := s.cfg.DailyLookbackDays
	today := dayStart(s.now().UTC())
	return today.AddDate(0, 0, -(days - 1)), days
}

func (s *Scanner) dailyNewUsers(ctx context.Context) ([]float64, error) {
	from, days := s.dailyWindow()
	users, err := s.repo.ListUsers(ctx, repository.UserQuery{CreatedFrom: &from})
	if err != nil {
		return nil, err
	}
	series := make([]float64, days)
	for i := range users {
		if idx := int(dayStart(users[i].CreatedAt.UTC()).Sub(from).Hours() / 24); idx >= 0 && idx < days {
			series[idx]++
		}
	}
	return series, nil
}

func (s *Scanner) dailySessions(ctx context.Context) ([]float64, error) {
	return s.dailySessionSeries(ctx, false)
}

func (s *Scanner) dailyCompletedSessions(ctx context.Context) ([]float64, error) {
	return s.dailySessionSeries(ctx, true)
}

func (s *Scanner) dailySessionSeries(ctx context.Context, completedOnly bool) ([]float64, error) {
	from, days := s.dailyWindow()
	sessions, err := s.repo.ListSessions(ctx, repository.SessionQuery{From: from, To: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	series := make([]float64, days)
	for i := range sessions {
		if completedOnly && !sessions[i].Completed() {
			continue
		}
		if idx := int(dayStart(sessions[i].StartedAt.UTC()).Sub(from).Hours() / 24); idx >= 0 && idx < days {
			series[idx]++
		}
	}
	return series, nil
}

// dailyCoins tracks the platform coin total through the total_coins goal
// snapshot series, one bucket per day carrying the day's last observation.
// Days without a snapshot repeat the previous observation so recompute
// cadence does not masquerade as an anomaly.
func (s *Scanner) dailyCoins(ctx context.Context) ([]float64, error) {
	from, days := s.dailyWindow()
	snaps, err := s.repo.ListSnapshots(ctx, coinGoalKey, from, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	series := make([]float64, days)
	seen := make([]bool, days)
	for i := range snaps {
		if idx := int(dayStart(snaps[i].Timestamp.UTC()).Sub(from).Hours() / 24); idx >= 0 && idx < days {
			series[idx] = snaps[i].Value
			seen[idx] = true
		}
	}
	last := snaps[0].Value
	for i := range series {
		if seen[i] {
			last = series[i]
		} else {
			series[i] = last
		}
	}
	return series, nil
}

func (s *Scanner) hourlySessions(ctx context.Context) ([]float64, error) {
	hours := s.cfg.HourlyLookbackHours
	nowHour := s.now().UTC().Truncate(time.Hour)
	from := nowHour.Add(-time.Duration(hours-1) * time.Hour)
	sessions, err := s.repo.ListSessions(ctx, repository.SessionQuery{From: from, To: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	series := make([]float64, hours)
	for i := range sessions {
		if idx := int(sessions[i].StartedAt.UTC().Truncate(time.Hour).Sub(from) / time.Hour); idx >= 0 && idx < hours {
			series[idx]++
		}
	}
	return series, nil
}

// Statistics over a bucketed series. Population variance, matching the
// baseline contract.

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevPop(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
