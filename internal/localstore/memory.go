// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"context"
	"sync"

	"github.com/tomtom215/popfeast/internal/models"
)

// MemoryStore keeps slots in a map. It applies the same decoding rules as
// BadgerStore, which makes it a faithful stand-in for tests.
type MemoryStore struct {
	mu     sync.Mutex
	slots  map[Slot][]byte
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[Slot][]byte)}
}

// PutRaw stores bytes in a slot without encoding them.
func (m *MemoryStore) PutRaw(slot Slot, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = append([]byte(nil), data...)
}

// Raw returns a copy of a slot's bytes.
func (m *MemoryStore) Raw(slot Slot) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.slots[slot]...)
}

// LoadCache implements Store.
func (m *MemoryStore) LoadCache(ctx context.Context) ([]models.FavoriteEntry, error) {
	return loadCache(ctx, m)
}

// SaveCache implements Store.
func (m *MemoryStore) SaveCache(ctx context.Context, list []models.FavoriteEntry) error {
	return saveSlot(ctx, m, SlotCache, list)
}

// LoadQueue implements Store.
func (m *MemoryStore) LoadQueue(ctx context.Context) ([]models.QueuedOperation, error) {
	return loadQueue(ctx, m)
}

// SaveQueue implements Store.
func (m *MemoryStore) SaveQueue(ctx context.Context, list []models.QueuedOperation) error {
	return saveSlot(ctx, m, SlotQueue, list)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStore) get(ctx context.Context, slot Slot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	slotReadsTotal.WithLabelValues(string(slot)).Inc()
	return append([]byte(nil), m.slots[slot]...), nil
}

func (m *MemoryStore) put(ctx context.Context, slot Slot, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.slots[slot] = append([]byte(nil), data...)
	slotWritesTotal.WithLabelValues(string(slot)).Inc()
	return nil
}
