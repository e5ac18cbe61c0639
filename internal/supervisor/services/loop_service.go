// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package services

import (
	"context"
	"fmt"
)

// StartStopper is a component that runs its own goroutine between Start
// and Stop. Satisfied by *connectivity.Prober.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// LoopService adapts a StartStopper to suture's Serve pattern:
//  1. Start(ctx)
//  2. wait for ctx cancellation
//  3. Stop(), which waits for the component's goroutine
type LoopService struct {
	loop StartStopper
	name string
}

// NewLoopService wraps loop.
func NewLoopService(name string, loop StartStopper) *LoopService {
	return &LoopService{loop: loop, name: name}
}

// Serve implements suture.Service. A Start failure is returned so suture
// restarts the service with backoff.
func (s *LoopService) Serve(ctx context.Context) error {
	if err := s.loop.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()
	s.loop.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *LoopService) String() string {
	return s.name
}
