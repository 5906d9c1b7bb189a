// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package analytics derives growth, retention, funnel, engagement, and
// acquisition summaries from raw user and session records.
//
// All computation happens above the MetricsRepository interface, so every
// result is identical across storage backends. Engines are stateless and
// safe for concurrent use. All bucketing is UTC day-level.
package analytics
