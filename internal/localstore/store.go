// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
)

// Slot names a persisted list.
type Slot string

// Fixed storage keys. Changing them orphans existing state.
const (
	SlotCache Slot = "popfeast_favs_cache"
	SlotQueue Slot = "popfeast_favs_queue"
)

// ErrStoreClosed is returned by every operation after Close.
var ErrStoreClosed = errors.New("localstore is closed")

// Store is the persistence the sync engine depends on.
type Store interface {
	// LoadCache returns the cached favorites, empty if none or unreadable.
	LoadCache(ctx context.Context) ([]models.FavoriteEntry, error)

	// SaveCache replaces the cached favorites.
	SaveCache(ctx context.Context, list []models.FavoriteEntry) error

	// LoadQueue returns the pending operations in enqueue order.
	LoadQueue(ctx context.Context) ([]models.QueuedOperation, error)

	// SaveQueue replaces the pending operations.
	SaveQueue(ctx context.Context, list []models.QueuedOperation) error

	// Close releases the underlying storage.
	Close() error
}

// rawStore is the byte-level view both implementations provide. A missing
// slot returns nil bytes and no error.
type rawStore interface {
	get(ctx context.Context, slot Slot) ([]byte, error)
	put(ctx context.Context, slot Slot, data []byte) error
}

func loadCache(ctx context.Context, r rawStore) ([]models.FavoriteEntry, error) {
	data, err := r.get(ctx, SlotCache)
	if err != nil {
		return nil, err
	}
	list := decodeSlot[models.FavoriteEntry](SlotCache, data)

	valid := list[:0]
	for _, e := range list {
		if err := e.Key().Validate(); err != nil {
			discard(SlotCache, err)
			continue
		}
		valid = append(valid, e)
	}
	return models.Dedupe(valid), nil
}

func loadQueue(ctx context.Context, r rawStore) ([]models.QueuedOperation, error) {
	data, err := r.get(ctx, SlotQueue)
	if err != nil {
		return nil, err
	}
	list := decodeSlot[models.QueuedOperation](SlotQueue, data)

	valid := list[:0]
	for _, op := range list {
		if err := op.Key().Validate(); err != nil {
			discard(SlotQueue, err)
			continue
		}
		if !op.Op.Valid() {
			discard(SlotQueue, fmt.Errorf("unknown op %q", op.Op))
			continue
		}
		valid = append(valid, op)
	}
	return valid, nil
}

func saveSlot[T any](ctx context.Context, r rawStore, slot Slot, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	return r.put(ctx, slot, data)
}

// decodeSlot never fails: anything that is not a JSON array of T becomes an
// empty list.
func decodeSlot[T any](slot Slot, data []byte) []T {
	if len(data) == 0 {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		discard(slot, err)
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

func discard(slot Slot, err error) {
	slotCorruptTotal.WithLabelValues(string(slot)).Inc()
	logging.Warn().Str("slot", string(slot)).Err(err).Msg("Discarding unreadable local favorites state")
}
