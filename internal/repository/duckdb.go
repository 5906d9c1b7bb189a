// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/voxlink/insights/internal/models"
)

// DuckDBStore is the persistent MetricsRepository adapter, backed by an
// embedded DuckDB database. Pass ":memory:" as the path for an ephemeral
// store.
type DuckDBStore struct {
	conn *sql.DB
}

// NewDuckDBStore opens (or creates) the database at path and applies the
// schema.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// DuckDB is embedded; a single connection avoids write contention and
	// keeps temporary-table semantics predictable.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(duckdbSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DuckDBStore{conn: conn}, nil
}

// SeedUsers replaces the raw user records inside one transaction.
func (s *DuckDBStore) SeedUsers(ctx context.Context, users []models.User) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	const insert = `INSERT INTO users (
		id, created_at, updated_at, last_active_at, coins,
		verification_status, subscription_level, gender, platform,
		signup_source, campaign_id, signup_country_code, signup_country_name,
		signup_region_code, signup_region_name, utm_source, utm_medium,
		utm_campaign, total_chats, preferences
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range users {
		u := &users[i]
		prefs, err := json.Marshal(u.Preferences)
		if err != nil {
			return fmt.Errorf("failed to encode preferences for user %s: %w", u.ID, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			u.ID, u.CreatedAt.UTC(), u.UpdatedAt.UTC(), u.LastActiveAt.UTC(), u.Coins,
			string(u.VerificationStatus), string(u.SubscriptionLevel), u.Gender, u.Platform,
			u.SignupSource, u.CampaignID, u.SignupCountryCode, u.SignupCountryName,
			u.SignupRegionCode, u.SignupRegionName, u.UTMSource, u.UTMMedium,
			u.UTMCampaign, u.TotalChats, string(prefs),
		); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

// SeedSessions replaces the raw session records inside one transaction.
func (s *DuckDBStore) SeedSessions(ctx context.Context, sessions []models.Session) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	const insert = `INSERT INTO sessions (
		id, user1_id, user2_id, mode, status, started_at, ended_at, duration_seconds
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range sessions {
		sess := &sessions[i]
		var endedAt any
		if sess.EndedAt != nil {
			endedAt = sess.EndedAt.UTC()
		}
		var duration any
		if sess.DurationSeconds != nil {
			duration = *sess.DurationSeconds
		}
		if _, err := tx.ExecContext(ctx, insert,
			sess.ID, sess.User1ID, sess.User2ID, string(sess.Mode), string(sess.Status),
			sess.StartedAt.UTC(), endedAt, duration,
		); err != nil {
			return fmt.Errorf("failed to insert session %s: %w", sess.ID, err)
		}
	}
	return tx.Commit()
}

// ListUsers returns users matching the query, ordered by creation time.
// Segment dimensions become parameterized IN clauses; the filter must
// already be normalized.
func (s *DuckDBStore) ListUsers(ctx context.Context, q UserQuery) ([]models.User, error) {
	var (
		conds []string
		args  []any
	)
	if q.CreatedFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.CreatedFrom.UTC())
	}
	if q.CreatedTo != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, q.CreatedTo.UTC())
	}
	if q.ActiveFrom != nil {
		conds = append(conds, "last_active_at >= ?")
		args = append(args, q.ActiveFrom.UTC())
	}
	if q.ActiveTo != nil {
		conds = append(conds, "last_active_at <= ?")
		args = append(args, q.ActiveTo.UTC())
	}
	appendInClause(&conds, &args, "gender", q.Filter.Genders)
	appendInClause(&conds, &args, "platform", q.Filter.Platforms)
	appendInClause(&conds, &args, "signup_source", q.Filter.SignupSources)
	appendInClause(&conds, &args, "campaign_id", q.Filter.Campaigns)

	query := `SELECT id, created_at, updated_at, last_active_at, coins,
		verification_status, subscription_level, gender, platform,
		signup_source, campaign_id, signup_country_code, signup_country_name,
		signup_region_code, signup_region_name, utm_source, utm_medium,
		utm_campaign, total_chats, preferences
	FROM users`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var (
			u     models.User
			prefs string
		)
		if err := rows.Scan(
			&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.LastActiveAt, &u.Coins,
			&u.VerificationStatus, &u.SubscriptionLevel, &u.Gender, &u.Platform,
			&u.SignupSource, &u.CampaignID, &u.SignupCountryCode, &u.SignupCountryName,
			&u.SignupRegionCode, &u.SignupRegionName, &u.UTMSource, &u.UTMMedium,
			&u.UTMCampaign, &u.TotalChats, &prefs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if prefs != "" {
			if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
				return nil, fmt.Errorf("failed to decode preferences for user %s: %w", u.ID, err)
			}
		}
		u.CreatedAt = u.CreatedAt.UTC()
		u.UpdatedAt = u.UpdatedAt.UTC()
		u.LastActiveAt = u.LastActiveAt.UTC()
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}

// ListSessions returns sessions started within [From, To], ordered by start.
func (s *DuckDBStore) ListSessions(ctx context.Context, q SessionQuery) ([]models.Session, error) {
	const query = `SELECT id, user1_id, user2_id, mode, status, started_at, ended_at, duration_seconds
		FROM sessions
		WHERE started_at >= ? AND started_at <= ?
		ORDER BY started_at, id`

	rows, err := s.conn.QueryContext(ctx, query, q.From.UTC(), q.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var (
			sess     models.Session
			endedAt  sql.NullTime
			duration sql.NullFloat64
		)
		if err := rows.Scan(
			&sess.ID, &sess.User1ID, &sess.User2ID, &sess.Mode, &sess.Status,
			&sess.StartedAt, &endedAt, &duration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.StartedAt = sess.StartedAt.UTC()
		if endedAt.Valid {
			t := endedAt.Time.UTC()
			sess.EndedAt = &t
		}
		if duration.Valid {
			d := duration.Float64
			sess.DurationSeconds = &d
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	if out == nil {
		out = []models.Session{}
	}
	return out, nil
}

// ListGoals returns all goal definitions ordered by creation time.
func (s *DuckDBStore) ListGoals(ctx context.Context) ([]models.GoalDefinition, error) {
	rows, err := s.conn.QueryContext(ctx, goalSelect+` ORDER BY created_at, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var out []models.GoalDefinition
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	if out == nil {
		out = []models.GoalDefinition{}
	}
	return out, nil
}

// GetGoalByKeyOrID resolves a goal by id first, then by normalized key.
// Returns (nil, nil) when no goal matches.
func (s *DuckDBStore) GetGoalByKeyOrID(ctx context.Context, keyOrID string) (*models.GoalDefinition, error) {
	needle := strings.ToLower(strings.TrimSpace(keyOrID))
	row := s.conn.QueryRowContext(ctx, goalSelect+` WHERE id = ? OR key = ? LIMIT 1`, keyOrID, needle)
	g, err := scanGoal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

// SaveGoal inserts or replaces a goal definition by id. The goals table
// carries a second unique constraint on key, so the conflict target must be
// spelled out; DuckDB refuses to infer one.
func (s *DuckDBStore) SaveGoal(ctx context.Context, goal *models.GoalDefinition) error {
	tags, err := json.Marshal(goal.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags for goal %s: %w", goal.Key, err)
	}
	const upsert = `INSERT INTO goals (
		id, key, name, description, metric, target_value, unit, tags,
		is_active, owner_email, color, alert_threshold_percent, metadata,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		key = EXCLUDED.key,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		metric = EXCLUDED.metric,
		target_value = EXCLUDED.target_value,
		unit = EXCLUDED.unit,
		tags = EXCLUDED.tags,
		is_active = EXCLUDED.is_active,
		owner_email = EXCLUDED.owner_email,
		color = EXCLUDED.color,
		alert_threshold_percent = EXCLUDED.alert_threshold_percent,
		metadata = EXCLUDED.metadata,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at`
	if _, err := s.conn.ExecContext(ctx, upsert,
		goal.ID, goal.Key, goal.Name, goal.Description, string(goal.Metric),
		goal.TargetValue, goal.Unit, string(tags), goal.IsActive, goal.OwnerEmail,
		goal.Color, goal.AlertThresholdPercent, rawMessageArg(goal.Metadata),
		goal.CreatedAt.UTC(), goal.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save goal %s: %w", goal.Key, err)
	}
	return nil
}

// AppendSnapshot inserts the snapshot and trims the goal's series to
// SnapshotRetention, evicting the oldest points first.
func (s *DuckDBStore) AppendSnapshot(ctx context.Context, snap models.GoalSnapshot) error {
	const insert = `INSERT INTO goal_snapshots (goal_key, ts, value, target_value, delta, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, insert,
		snap.GoalKey, snap.Timestamp.UTC(), snap.Value, snap.TargetValue,
		snap.Delta, rawMessageArg(snap.Metadata),
	); err != nil {
		return fmt.Errorf("failed to insert snapshot for %s: %w", snap.GoalKey, err)
	}

	const trim = `DELETE FROM goal_snapshots
		WHERE goal_key = ? AND rowid NOT IN (
			SELECT rowid FROM goal_snapshots
			WHERE goal_key = ?
			ORDER BY ts DESC, rowid DESC
			LIMIT ?
		)`
	if _, err := s.conn.ExecContext(ctx, trim, snap.GoalKey, snap.GoalKey, SnapshotRetention); err != nil {
		return fmt.Errorf("failed to trim snapshots for %s: %w", snap.GoalKey, err)
	}
	return nil
}

// ListSnapshots returns the goal's snapshots within [from, to], ascending.
func (s *DuckDBStore) ListSnapshots(ctx context.Context, goalKey string, from, to time.Time) ([]models.GoalSnapshot, error) {
	const query = `SELECT goal_key, ts, value, target_value, delta, metadata
		FROM goal_snapshots
		WHERE goal_key = ? AND ts >= ? AND ts <= ?
		ORDER BY ts, rowid`

	rows, err := s.conn.QueryContext(ctx, query, goalKey, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", goalKey, err)
	}
	defer rows.Close()

	var out []models.GoalSnapshot
	for rows.Next() {
		var (
			snap models.GoalSnapshot
			meta sql.NullString
		)
		if err := rows.Scan(&snap.GoalKey, &snap.Timestamp, &snap.Value,
			&snap.TargetValue, &snap.Delta, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Timestamp = snap.Timestamp.UTC()
		snap.Metadata = rawMessageFromColumn(meta)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

// LatestSnapshot returns the most recent snapshot for the goal, or
// (nil, nil) when the series is empty.
func (s *DuckDBStore) LatestSnapshot(ctx context.Context, goalKey string) (*models.GoalSnapshot, error) {
	const query = `SELECT goal_key, ts, value, target_value, delta, metadata
		FROM goal_snapshots
		WHERE goal_key = ?
		ORDER BY ts DESC, rowid DESC
		LIMIT 1`

	var (
		snap models.GoalSnapshot
		meta sql.NullString
	)
	err := s.conn.QueryRowContext(ctx, query, goalKey).Scan(
		&snap.GoalKey, &snap.Timestamp, &snap.Value, &snap.TargetValue, &snap.Delta, &meta)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot for %s: %w", goalKey, err)
	}
	snap.Timestamp = snap.Timestamp.UTC()
	snap.Metadata = rawMessageFromColumn(meta)
	return &snap, nil
}

// UpsertBaseline replaces the baseline row for (metric, period).
func (s *DuckDBStore) UpsertBaseline(ctx context.Context, baseline models.AnomalyBaseline) error {
	const upsert = `INSERT OR REPLACE INTO anomaly_baselines (
		metric, period, mean, standard_deviation, sample_size, trend, updated_at, metadata
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, upsert,
		baseline.Metric, string(baseline.Period), baseline.Mean, baseline.StandardDeviation,
		baseline.SampleSize, baseline.Trend, baseline.UpdatedAt.UTC(),
		rawMessageArg(baseline.Metadata),
	); err != nil {
		return fmt.Errorf("failed to upsert baseline %s/%s: %w", baseline.Metric, baseline.Period, err)
	}
	return nil
}

// ListBaselines returns all baselines ordered by metric then period.
func (s *DuckDBStore) ListBaselines(ctx context.Context) ([]models.AnomalyBaseline, error) {
	const query = `SELECT metric, period, mean, standard_deviation, sample_size, trend, updated_at, metadata
		FROM anomaly_baselines
		ORDER BY metric, period`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query baselines: %w", err)
	}
	defer rows.Close()

	var out []models.AnomalyBaseline
	for rows.Next() {
		var (
			b    models.AnomalyBaseline
			meta sql.NullString
		)
		if err := rows.Scan(&b.Metric, &b.Period, &b.Mean, &b.StandardDeviation,
			&b.SampleSize, &b.Trend, &b.UpdatedAt, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan baseline: %w", err)
		}
		b.UpdatedAt = b.UpdatedAt.UTC()
		b.Metadata = rawMessageFromColumn(meta)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate baselines: %w", err)
	}
	if out == nil {
		out = []models.AnomalyBaseline{}
	}
	return out, nil
}

// AppendAnomalyEvent inserts the event and trims the ring to
// AnomalyEventRetention by insertion order.
func (s *DuckDBStore) AppendAnomalyEvent(ctx context.Context, event models.AnomalyEvent) error {
	const insert = `INSERT INTO anomaly_events (
		id, metric, ts, severity, direction, actual, expected, z_score,
		baseline_mean, baseline_std_dev, metadata
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, insert,
		event.ID, event.Metric, event.Timestamp.UTC(), string(event.Severity),
		string(event.Direction), event.Actual, event.Expected, event.ZScore,
		event.BaselineMean, event.BaselineStdDev, rawMessageArg(event.Metadata),
	); err != nil {
		return fmt.Errorf("failed to insert anomaly event %s: %w", event.Metric, err)
	}

	const trim = `DELETE FROM anomaly_events
		WHERE seq NOT IN (
			SELECT seq FROM anomaly_events ORDER BY seq DESC LIMIT ?
		)`
	if _, err := s.conn.ExecContext(ctx, trim, AnomalyEventRetention); err != nil {
		return fmt.Errorf("failed to trim anomaly events: %w", err)
	}
	return nil
}

// ListAnomalyEvents returns events with timestamps in [from, to], newest
// first.
func (s *DuckDBStore) ListAnomalyEvents(ctx context.Context, from, to time.Time) ([]models.AnomalyEvent, error) {
	const query = `SELECT id, metric, ts, severity, direction, actual, expected, z_score,
		baseline_mean, baseline_std_dev, metadata
		FROM anomaly_events
		WHERE ts >= ? AND ts <= ?
		ORDER BY ts DESC, seq DESC`

	rows, err := s.conn.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly events: %w", err)
	}
	defer rows.Close()

	var out []models.AnomalyEvent
	for rows.Next() {
		var (
			e    models.AnomalyEvent
			meta sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Metric, &e.Timestamp, &e.Severity, &e.Direction,
			&e.Actual, &e.Expected, &e.ZScore, &e.BaselineMean, &e.BaselineStdDev, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly event: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		e.Metadata = rawMessageFromColumn(meta)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate anomaly events: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}

const goalSelect = `SELECT id, key, name, description, metric, target_value, unit, tags,
	is_active, owner_email, color, alert_threshold_percent, metadata,
	created_at, updated_at
FROM goals`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*models.GoalDefinition, error) {
	var (
		g    models.GoalDefinition
		tags string
		meta sql.NullString
	)
	if err := row.Scan(
		&g.ID, &g.Key, &g.Name, &g.Description, &g.Metric, &g.TargetValue,
		&g.Unit, &tags, &g.IsActive, &g.OwnerEmail, &g.Color,
		&g.AlertThresholdPercent, &meta, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &g.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for goal %s: %w", g.Key, err)
		}
	}
	g.Metadata = rawMessageFromColumn(meta)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

// appendInClause adds a parameterized IN condition when values constrain the
// dimension. Values are already lower-cased by Filter.Normalize.
func appendInClause(conds *[]string, args *[]any, column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}
	*conds = append(*conds, fmt.Sprintf("lower(trim(%s)) IN (%s)", column, strings.Join(placeholders, ", ")))
}

func rawMessageArg(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}

func rawMessageFromColumn(col sql.NullString) json.RawMessage {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.RawMessage(col.String)
}

var (
	_ MetricsRepository = (*DuckDBStore)(nil)
	_ RecordSeeder      = (*DuckDBStore)(nil)
)
