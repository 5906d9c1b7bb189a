// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package supervisor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type blockingService struct {
	started atomic.Bool
	name    string
}

func (b *blockingService) Serve(ctx context.Context) error {
	b.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingService) String() string { return b.name }

func TestTreeRunsServicesInBothLayers(t *testing.T) {
	tree := NewTree(slog.Default(), DefaultTreeConfig())

	dataSvc := &blockingService{name: "data-svc"}
	engineSvc := &blockingService{name: "engine-svc"}
	tree.AddDataService(dataSvc)
	tree.AddEngineService(engineSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if dataSvc.started.Load() && engineSvc.started.Load() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !dataSvc.started.Load() || !engineSvc.started.Load() {
		t.Fatal("services did not start under the tree")
	}
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after context cancel")
	}
}

func TestDefaultTreeConfigAppliedToZeroValues(t *testing.T) {
	tree := NewTree(slog.Default(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
}
