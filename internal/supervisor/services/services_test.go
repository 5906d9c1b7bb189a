// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingScanner struct {
	runs atomic.Int64
}

func (c *countingScanner) RunOnce(context.Context) {
	c.runs.Add(1)
}

func TestScannerServiceRunsOnStartupAndOnTicks(t *testing.T) {
	scanner := &countingScanner{}
	svc := NewScannerService(scanner, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for scanner.runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if runs := scanner.runs.Load(); runs < 3 {
		t.Errorf("scanner ran %d times, want at least 3 (startup + ticks)", runs)
	}
}

type closableScheduler struct {
	scheduled []string
	closed    atomic.Bool
}

func (c *closableScheduler) Schedule(goalKey string) {
	c.scheduled = append(c.scheduled, goalKey)
}

func (c *closableScheduler) Close() {
	c.closed.Store(true)
}

func TestGoalsServiceSeedsAndClosesScheduler(t *testing.T) {
	sched := &closableScheduler{}
	seeded := atomic.Bool{}
	svc := NewGoalsService(func(context.Context) error {
		seeded.Store(true)
		return nil
	}, sched)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !seeded.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !seeded.Load() {
		t.Fatal("seed function was never called")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if !sched.closed.Load() {
		t.Error("scheduler was not closed on shutdown")
	}
}

func TestGoalsServiceSeedFailureRestartsService(t *testing.T) {
	sched := &closableScheduler{}
	wantErr := errors.New("storage unavailable")
	svc := NewGoalsService(func(context.Context) error { return wantErr }, sched)

	err := svc.Serve(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Serve() = %v, want the seed error for the supervisor to restart on", err)
	}
}
