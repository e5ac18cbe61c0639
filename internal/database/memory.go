// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/popfeast/internal/models"
)

// MemoryRepository is an in-process Repository used in mock mode.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[models.Key]time.Time
	seq   map[models.Key]uint64
	next  uint64
	now   func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[models.Key]time.Time),
		seq:   make(map[models.Key]uint64),
		now:   time.Now,
	}
}

// ListFavorites implements Repository.
func (m *MemoryRepository) ListFavorites(ctx context.Context) ([]models.FavoriteEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.FavoriteEntry, 0, len(m.items))
	for k, at := range m.items {
		out = append(out, models.FavoriteEntry{ItemID: k.ItemID, ItemType: k.ItemType, CreatedAt: at})
	}
	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].Key()] > m.seq[out[j].Key()]
	})
	return out, nil
}

// AddFavorite implements Repository.
func (m *MemoryRepository) AddFavorite(ctx context.Context, key models.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; ok {
		return nil
	}
	m.next++
	m.items[key] = m.now().UTC()
	m.seq[key] = m.next
	return nil
}

// RemoveFavorite implements Repository.
func (m *MemoryRepository) RemoveFavorite(ctx context.Context, key models.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	delete(m.seq, key)
	return nil
}

// ToggleFavorite implements Repository.
func (m *MemoryRepository) ToggleFavorite(ctx context.Context, key models.Key) (models.Op, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; ok {
		delete(m.items, key)
		delete(m.seq, key)
		return models.OpRemove, nil
	}
	m.next++
	m.items[key] = m.now().UTC()
	m.seq[key] = m.next
	return models.OpAdd, nil
}

// Ping implements Repository.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Repository.
func (m *MemoryRepository) Close() error {
	return nil
}
