// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package goals tracks named business metrics against numeric targets.
//
// The Registry owns goal definitions and the query surface (summary,
// timeseries, explicit snapshot recording). The Scheduler debounces
// recompute requests per goal key and materializes snapshots through the
// per-metric calculators.
package goals
