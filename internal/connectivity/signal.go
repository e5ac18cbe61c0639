// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package connectivity tells the sync engine whether the favorites server
// is reachable and when it becomes reachable again.
//
// Signal is deliberately small: a current reading and a restoration
// callback. Manual is driven by explicit calls (tests, a user pressing
// retry). Prober polls the server's health endpoint.
package connectivity

import (
	"sort"
	"sync"

	"github.com/tomtom215/popfeast/internal/metrics"
)

// Signal reports connectivity to the favorites server.
type Signal interface {
	// Online reports the last known state.
	Online() bool

	// OnConnectivityRestored registers fn to run on every offline to online
	// transition. fn runs on the goroutine that observed the transition and
	// should return quickly. The returned func unregisters fn.
	OnConnectivityRestored(fn func()) (cancel func())
}

// state holds the online flag and the restoration callbacks.
type state struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	callbacks map[int]func()
}

func newState(online bool) *state {
	return &state{online: online, callbacks: make(map[int]func())}
}

// Online implements Signal.
func (s *state) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// OnConnectivityRestored implements Signal.
func (s *state) OnConnectivityRestored(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.callbacks[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.callbacks, id)
			s.mu.Unlock()
		})
	}
}

// set records online and, on an offline to online edge, runs the callbacks
// in registration order outside the lock. It reports whether the edge
// happened.
func (s *state) set(online bool) bool {
	s.mu.Lock()
	restored := online && !s.online
	s.online = online
	var fns []func()
	if restored {
		ids := make([]int, 0, len(s.callbacks))
		for id := range s.callbacks {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fns = append(fns, s.callbacks[id])
		}
	}
	s.mu.Unlock()

	metrics.SetOnline(online, restored)
	for _, fn := range fns {
		fn()
	}
	return restored
}

// Manual is a Signal set by hand.
type Manual struct {
	*state
}

// NewManual returns a Manual starting in the given state.
func NewManual(online bool) *Manual {
	return &Manual{state: newState(online)}
}

// SetOnline changes the state. Going from offline to online runs the
// restoration callbacks before SetOnline returns.
func (m *Manual) SetOnline(online bool) {
	m.set(online)
}
