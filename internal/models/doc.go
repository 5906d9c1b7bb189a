// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package models defines the data types shared between the repository
// adapters and the analytics, goals, and anomaly engines.
//
// Types fall into three groups:
//
//   - Raw records supplied by storage collaborators (User, Session)
//   - Tracked state owned by this subsystem (GoalDefinition, GoalSnapshot,
//     AnomalyBaseline, AnomalyEvent)
//   - Computed query results with no persisted identity (growth, retention,
//     funnel, engagement, acquisition, goal summary/timeseries snapshots)
//
// Computed results are recomputed per query and never cached beyond the
// request.
package models
