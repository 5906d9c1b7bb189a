// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package supervisor provides Suture-based process supervision for the
// insights engine.
//
// The tree has two layers under the root: data (storage lifecycle) and
// engine (anomaly scanner, goal services). A crash in the engine layer is
// restarted with backoff and never takes the storage layer down with it.
package supervisor
