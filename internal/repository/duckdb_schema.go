// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package repository

// duckdbSchema is applied at construction. Statements are idempotent so the
// store can reopen an existing database file.
const duckdbSchema = `
CREATE TABLE IF NOT EXISTS users (
    id                  VARCHAR PRIMARY KEY,
    created_at          TIMESTAMP NOT NULL,
    updated_at          TIMESTAMP NOT NULL,
    last_active_at      TIMESTAMP NOT NULL,
    coins               DOUBLE NOT NULL DEFAULT 0,
    verification_status VARCHAR NOT NULL DEFAULT 'guest',
    subscription_level  VARCHAR NOT NULL DEFAULT 'normal',
    gender              VARCHAR NOT NULL DEFAULT '',
    platform            VARCHAR NOT NULL DEFAULT '',
    signup_source       VARCHAR NOT NULL DEFAULT '',
    campaign_id         VARCHAR NOT NULL DEFAULT '',
    signup_country_code VARCHAR NOT NULL DEFAULT '',
    signup_country_name VARCHAR NOT NULL DEFAULT '',
    signup_region_code  VARCHAR NOT NULL DEFAULT '',
    signup_region_name  VARCHAR NOT NULL DEFAULT '',
    utm_source          VARCHAR NOT NULL DEFAULT '',
    utm_medium          VARCHAR NOT NULL DEFAULT '',
    utm_campaign        VARCHAR NOT NULL DEFAULT '',
    total_chats         INTEGER NOT NULL DEFAULT 0,
    preferences         VARCHAR NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at);

CREATE TABLE IF NOT EXISTS sessions (
    id               VARCHAR PRIMARY KEY,
    user1_id         VARCHAR NOT NULL DEFAULT '',
    user2_id         VARCHAR NOT NULL DEFAULT '',
    mode             VARCHAR NOT NULL DEFAULT 'text',
    status           VARCHAR NOT NULL DEFAULT 'ended',
    started_at       TIMESTAMP NOT NULL,
    ended_at         TIMESTAMP,
    duration_seconds DOUBLE
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions (started_at);

CREATE TABLE IF NOT EXISTS goals (
    id                      VARCHAR PRIMARY KEY,
    key                     VARCHAR NOT NULL UNIQUE,
    name                    VARCHAR NOT NULL,
    description             VARCHAR NOT NULL DEFAULT '',
    metric                  VARCHAR NOT NULL,
    target_value            DOUBLE NOT NULL DEFAULT 0,
    unit                    VARCHAR NOT NULL DEFAULT '',
    tags                    VARCHAR NOT NULL DEFAULT '[]',
    is_active               BOOLEAN NOT NULL DEFAULT TRUE,
    owner_email             VARCHAR NOT NULL DEFAULT '',
    color                   VARCHAR NOT NULL DEFAULT '',
    alert_threshold_percent DOUBLE NOT NULL DEFAULT 80,
    metadata                VARCHAR,
    created_at              TIMESTAMP NOT NULL,
    updated_at              TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS goal_snapshots (
    goal_key     VARCHAR NOT NULL,
    ts           TIMESTAMP NOT NULL,
    value        DOUBLE NOT NULL,
    target_value DOUBLE NOT NULL,
    delta        DOUBLE NOT NULL,
    metadata     VARCHAR
);

CREATE INDEX IF NOT EXISTS idx_goal_snapshots_key_ts ON goal_snapshots (goal_key, ts);

CREATE TABLE IF NOT EXISTS anomaly_baselines (
    metric             VARCHAR NOT NULL,
    period             VARCHAR NOT NULL,
    mean               DOUBLE NOT NULL,
    standard_deviation DOUBLE NOT NULL,
    sample_size        INTEGER NOT NULL,
    trend              DOUBLE NOT NULL DEFAULT 0,
    updated_at         TIMESTAMP NOT NULL,
    metadata           VARCHAR,
    PRIMARY KEY (metric, period)
);

CREATE SEQUENCE IF NOT EXISTS anomaly_events_seq;

CREATE TABLE IF NOT EXISTS anomaly_events (
    seq              BIGINT PRIMARY KEY DEFAULT nextval('anomaly_events_seq'),
    id               VARCHAR NOT NULL,
    metric           VARCHAR NOT NULL,
    ts               TIMESTAMP NOT NULL,
    severity         VARCHAR NOT NULL,
    direction        VARCHAR NOT NULL,
    actual           DOUBLE NOT NULL,
    expected         DOUBLE NOT NULL,
    z_score          DOUBLE NOT NULL,
    baseline_mean    DOUBLE NOT NULL,
    baseline_std_dev DOUBLE NOT NULL,
    metadata         VARCHAR
);

CREATE INDEX IF NOT EXISTS idx_anomaly_events_ts ON anomaly_events (ts);
`
