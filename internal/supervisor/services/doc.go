// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package services wraps the engine's long-running components as
// suture.Service implementations so the supervisor tree can own their
// lifecycles.
package services
