// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package repository defines the MetricsRepository contract and its two
// interchangeable adapters: an in-memory store and a DuckDB-backed store.
//
// All analytics, goal, and anomaly computation lives above this interface;
// the adapters only read raw records and persist tracked state. Both
// adapters must produce identical results for the same data — the shared
// conformance tests in conformance_test.go run every behavior against both.
package repository
