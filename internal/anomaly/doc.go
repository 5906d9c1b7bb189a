// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package anomaly watches platform metrics for statistically unusual
// observations.
//
// The Scanner periodically buckets recent activity per tracked metric,
// maintains a rolling baseline (mean and population standard deviation),
// and emits an event when the latest bucket deviates strongly from the
// baseline. The feed and benchmark queries expose the resulting events and
// baselines.
package anomaly
