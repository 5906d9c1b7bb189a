// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package services

import (
	"context"
	"time"

	"github.com/voxlink/insights/internal/logging"
)

// AnomalyScanner matches anomaly.Scanner's RunOnce method. Kept as an
// interface so the service can be tested without a real scanner.
type AnomalyScanner interface {
	RunOnce(ctx context.Context)
}

// ScannerService runs the anomaly scanner on a fixed interval. One scan
// fires immediately on startup so a restarted process does not wait a full
// interval for fresh baselines.
type ScannerService struct {
	scanner  AnomalyScanner
	interval time.Duration
	name     string
}

// NewScannerService creates the supervised scanner loop. A non-positive
// interval defaults to 10 minutes.
func NewScannerService(scanner AnomalyScanner, interval time.Duration) *ScannerService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ScannerService{
		scanner:  scanner,
		interval: interval,
		name:     "anomaly-scanner",
	}
}

// Serve implements suture.Service. Returns ctx.Err() on shutdown.
func (s *ScannerService) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("anomaly scanner started")
	s.scanner.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("anomaly scanner stopping")
			return ctx.Err()
		case <-ticker.C:
			s.scanner.RunOnce(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *ScannerService) String() string {
	return s.name
}
