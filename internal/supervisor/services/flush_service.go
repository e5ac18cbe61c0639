// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package services

import (
	"context"
	"time"

	"github.com/tomtom215/popfeast/internal/favorites"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
)

// Flusher is the part of *favorites.Store the flush loop uses.
type Flusher interface {
	Online() bool
	Pending(ctx context.Context) []models.QueuedOperation
	FlushQueue(ctx context.Context) (favorites.FlushResult, error)
}

// FlushService retries the favorites queue every interval while the
// connectivity signal reads online. Ops that failed during a reconnect
// flush would otherwise wait for the next reconnect.
type FlushService struct {
	store    Flusher
	interval time.Duration
}

// NewFlushService builds the loop; interval must be positive.
func NewFlushService(store Flusher, interval time.Duration) *FlushService {
	return &FlushService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *FlushService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *FlushService) tick(ctx context.Context) {
	if !s.store.Online() || len(s.store.Pending(ctx)) == 0 {
		return
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)
	if _, err := s.store.FlushQueue(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Periodic favorites flush failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *FlushService) String() string {
	return "favorites-flush"
}
