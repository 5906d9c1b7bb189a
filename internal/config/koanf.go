// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/insights/config.yaml",
	"/etc/insights/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Backend: "duckdb",
			Path:    "/data/insights.duckdb",
		},
		Goals: GoalsConfig{
			RecomputeQuiet: 500 * time.Millisecond,
			SeedDefaults:   true,
		},
		Anomaly: AnomalyConfig{
			Enabled:             true,
			ScanInterval:        10 * time.Minute,
			DailyLookbackDays:   30,
			HourlyLookbackHours: 48,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
	}
}

// Load builds the configuration: struct defaults, then an optional YAML
// file, then environment variables, then Validate.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are dropped so stray environment noise never lands in
// the configuration.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"INSIGHTS_DB_BACKEND": "database.backend",
		"INSIGHTS_DB_PATH":    "database.path",

		"INSIGHTS_RECOMPUTE_QUIET":    "goals.recompute_quiet",
		"INSIGHTS_SEED_DEFAULT_GOALS": "goals.seed_defaults",

		"INSIGHTS_SCAN_ENABLED":         "anomaly.enabled",
		"INSIGHTS_SCAN_INTERVAL":        "anomaly.scan_interval",
		"INSIGHTS_SCAN_DAILY_LOOKBACK":  "anomaly.daily_lookback_days",
		"INSIGHTS_SCAN_HOURLY_LOOKBACK": "anomaly.hourly_lookback_hours",

		"INSIGHTS_METRICS_ENABLED": "metrics.enabled",
		"INSIGHTS_METRICS_ADDR":    "metrics.addr",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}
	if mapped, ok := mappings[strings.ToUpper(key)]; ok {
		return mapped
	}
	return ""
}
