// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/popfeast/internal/models"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:8787: connect: connection refused")

// fakeRemote is an in-memory favorites server with scripted failures.
type fakeRemote struct {
	mu    sync.Mutex
	items []models.FavoriteEntry

	// down makes every call fail with errUnreachable.
	down bool
	// reject maps a key to the error Add/Remove return for it.
	reject map[models.Key]error

	// gate, when set, blocks the next List (after its snapshot) or
	// mutation until closed. blocked is closed once the call is waiting.
	listGate, mutateGate chan struct{}
	listBlocked          chan struct{}
	mutateBlocked        chan struct{}
	// mutateGateKey limits the mutation gate to one item; zero means any.
	mutateGateKey models.Key

	calls []string
}

func newFakeRemote(keys ...models.Key) *fakeRemote {
	f := &fakeRemote{reject: make(map[models.Key]error)}
	for _, k := range keys {
		f.items = append(f.items, models.FavoriteEntry{ItemID: k.ItemID, ItemType: k.ItemType, CreatedAt: time.Unix(0, 0).UTC()})
	}
	return f
}

func (f *fakeRemote) List(context.Context) ([]models.FavoriteEntry, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "list")
	if f.down {
		f.mu.Unlock()
		return nil, errUnreachable
	}
	snapshot := append([]models.FavoriteEntry(nil), f.items...)
	gate, blocked := f.listGate, f.listBlocked
	f.listGate, f.listBlocked = nil, nil
	f.mu.Unlock()

	if gate != nil {
		close(blocked)
		<-gate
	}
	return snapshot, nil
}

func (f *fakeRemote) Add(_ context.Context, key models.Key) error {
	return f.mutate("add", key)
}

func (f *fakeRemote) Remove(_ context.Context, key models.Key) error {
	return f.mutate("remove", key)
}

func (f *fakeRemote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errUnreachable
	}
	return nil
}

func (f *fakeRemote) mutate(op string, key models.Key) error {
	f.mu.Lock()
	f.calls = append(f.calls, op+" "+key.String())
	var gate, blocked chan struct{}
	if f.mutateGateKey == (models.Key{}) || f.mutateGateKey == key {
		gate, blocked = f.mutateGate, f.mutateBlocked
		f.mutateGate, f.mutateBlocked = nil, nil
	}
	f.mu.Unlock()

	if gate != nil {
		close(blocked)
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errUnreachable
	}
	if err := f.reject[key]; err != nil {
		return err
	}
	if op == "add" {
		if !models.ContainsKey(f.items, key) {
			f.items = append(f.items, models.FavoriteEntry{ItemID: key.ItemID, ItemType: key.ItemType, CreatedAt: time.Now().UTC()})
		}
		return nil
	}
	kept := f.items[:0]
	for _, e := range f.items {
		if e.Key() != key {
			kept = append(kept, e)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeRemote) has(key models.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.ContainsKey(f.items, key)
}

func (f *fakeRemote) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c != "list" {
			out = append(out, c)
		}
	}
	return out
}

// blockNextList arms the list gate and returns the release func and a
// channel closed once a List call is parked on the gate.
func (f *fakeRemote) blockNextList() (release func(), blocked <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate, b := make(chan struct{}), make(chan struct{})
	f.listGate, f.listBlocked = gate, b
	return func() { close(gate) }, b
}

func (f *fakeRemote) blockNextMutation() (release func(), blocked <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate, b := make(chan struct{}), make(chan struct{})
	f.mutateGate, f.mutateBlocked, f.mutateGateKey = gate, b, models.Key{}
	return func() { close(gate) }, b
}

// blockMutationOf is blockNextMutation limited to calls for key.
func (f *fakeRemote) blockMutationOf(key models.Key) (release func(), blocked <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate, b := make(chan struct{}), make(chan struct{})
	f.mutateGate, f.mutateBlocked, f.mutateGateKey = gate, b, key
	return func() { close(gate) }, b
}
