// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package config loads the engine configuration in three layers: struct
// defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Goals    GoalsConfig    `koanf:"goals"`
	Anomaly  AnomalyConfig  `koanf:"anomaly"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	// Backend is "memory" or "duckdb".
	Backend string `koanf:"backend"`

	// Path is the DuckDB database file. ":memory:" keeps it ephemeral.
	Path string `koanf:"path"`
}

// GoalsConfig tunes the goal registry and recompute scheduler.
type GoalsConfig struct {
	// RecomputeQuiet is the debounce quiet period per goal key.
	RecomputeQuiet time.Duration `koanf:"recompute_quiet"`

	// SeedDefaults creates the three built-in goals on first access.
	SeedDefaults bool `koanf:"seed_defaults"`
}

// AnomalyConfig tunes the background anomaly scanner.
type AnomalyConfig struct {
	Enabled bool `koanf:"enabled"`

	// ScanInterval is the pause between scan runs.
	ScanInterval time.Duration `koanf:"scan_interval"`

	// DailyLookbackDays is the rolling window for daily baselines.
	DailyLookbackDays int `koanf:"daily_lookback_days"`

	// HourlyLookbackHours is the rolling window for hourly baselines.
	HourlyLookbackHours int `koanf:"hourly_lookback_hours"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "memory":
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the duckdb backend")
		}
	default:
		return fmt.Errorf("database.backend must be \"memory\" or \"duckdb\", got %q", c.Database.Backend)
	}

	if c.Goals.RecomputeQuiet <= 0 {
		return fmt.Errorf("goals.recompute_quiet must be positive, got %s", c.Goals.RecomputeQuiet)
	}
	if c.Anomaly.ScanInterval < time.Second {
		return fmt.Errorf("anomaly.scan_interval must be at least 1s, got %s", c.Anomaly.ScanInterval)
	}
	if c.Anomaly.DailyLookbackDays <= 0 {
		return fmt.Errorf("anomaly.daily_lookback_days must be positive, got %d", c.Anomaly.DailyLookbackDays)
	}
	if c.Anomaly.HourlyLookbackHours <= 0 {
		return fmt.Errorf("anomaly.hourly_lookback_hours must be positive, got %d", c.Anomaly.HourlyLookbackHours)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics.enabled is true")
	}
	return nil
}
