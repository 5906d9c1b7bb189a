// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

package services

import (
	"context"
	"io"

	"github.com/voxlink/insights/internal/logging"
)

// StoreService ties a storage backend's lifetime to the data layer. It
// blocks until shutdown and then closes the store, after every engine-layer
// consumer has already been stopped by the supervisor ordering.
type StoreService struct {
	store io.Closer
	name  string
}

// NewStoreService wraps a storage backend as a supervised service.
func NewStoreService(store io.Closer, name string) *StoreService {
	return &StoreService{store: store, name: name}
}

// Serve implements suture.Service.
func (s *StoreService) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := s.store.Close(); err != nil {
		logging.Error().Err(err).Str("store", s.name).Msg("store close failed")
	} else {
		logging.Info().Str("store", s.name).Msg("store closed")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *StoreService) String() string {
	return s.name
}
