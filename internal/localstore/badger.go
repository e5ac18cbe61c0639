// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
)

// BadgerStore keeps the slots in BadgerDB. Each save is one transaction,
// fsynced when SyncWrites is set, so a crash leaves either the old or the
// new list.
type BadgerStore struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store described by cfg.
func Open(cfg *Config) (*BadgerStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid localstore config: %w", err)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.MemTableSize > 0 {
		opts.MemTableSize = cfg.MemTableSize
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Local favorites store opened")

	return &BadgerStore{db: db, config: *cfg}, nil
}

// LoadCache implements Store.
func (s *BadgerStore) LoadCache(ctx context.Context) ([]models.FavoriteEntry, error) {
	return loadCache(ctx, s)
}

// SaveCache implements Store.
func (s *BadgerStore) SaveCache(ctx context.Context, list []models.FavoriteEntry) error {
	return saveSlot(ctx, s, SlotCache, list)
}

// LoadQueue implements Store.
func (s *BadgerStore) LoadQueue(ctx context.Context) ([]models.QueuedOperation, error) {
	return loadQueue(ctx, s)
}

// SaveQueue implements Store.
func (s *BadgerStore) SaveQueue(ctx context.Context, list []models.QueuedOperation) error {
	return saveSlot(ctx, s, SlotQueue, list)
}

func (s *BadgerStore) get(ctx context.Context, slot Slot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	slotReadsTotal.WithLabelValues(string(slot)).Inc()

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slot))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", slot, err)
	}
	return data, nil
}

func (s *BadgerStore) put(ctx context.Context, slot Slot, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slot), data)
	})
	slotWriteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("write %s: %w", slot, err)
	}
	slotWritesTotal.WithLabelValues(string(slot)).Inc()
	return nil
}

// Close closes BadgerDB, giving up after CloseTimeout.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Local favorites store closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}
