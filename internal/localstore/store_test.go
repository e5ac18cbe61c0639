// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/popfeast/internal/models"
)

var (
	_ Store = (*BadgerStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// openTestBadger opens an on-disk store in a temp directory.
func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.SyncWrites = false
	s, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// implementations returns a fresh instance of every Store for table tests.
func implementations(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"badger": openTestBadger(t),
		"memory": NewMemoryStore(),
	}
}

func sampleCache() []models.FavoriteEntry {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.FavoriteEntry{
		{ItemID: "m1", ItemType: models.ItemTypeMovie, CreatedAt: at},
		{ItemID: "s1", ItemType: models.ItemTypeSeries, CreatedAt: at.Add(time.Hour)},
	}
}

func TestEmptySlotsLoadEmpty(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			cache, err := s.LoadCache(ctx)
			if err != nil || cache == nil || len(cache) != 0 {
				t.Errorf("LoadCache() = %v, %v; want empty non-nil list", cache, err)
			}
			queue, err := s.LoadQueue(ctx)
			if err != nil || queue == nil || len(queue) != 0 {
				t.Errorf("LoadQueue() = %v, %v; want empty non-nil list", queue, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveCache(ctx, sampleCache()); err != nil {
				t.Fatalf("SaveCache: %v", err)
			}
			queue := []models.QueuedOperation{
				{ID: "q1", ItemID: "s2", ItemType: models.ItemTypeSeries, Op: models.OpAdd, QueuedAt: time.Unix(10, 0).UTC()},
				{ID: "q2", ItemID: "m1", ItemType: models.ItemTypeMovie, Op: models.OpRemove, QueuedAt: time.Unix(20, 0).UTC(), Attempts: 2, LastError: "boom"},
			}
			if err := s.SaveQueue(ctx, queue); err != nil {
				t.Fatalf("SaveQueue: %v", err)
			}

			gotCache, err := s.LoadCache(ctx)
			if err != nil {
				t.Fatalf("LoadCache: %v", err)
			}
			if len(gotCache) != 2 || gotCache[1].Key() != models.NewKey("s1", models.ItemTypeSeries) {
				t.Errorf("LoadCache() = %+v", gotCache)
			}
			if !gotCache[0].CreatedAt.Equal(sampleCache()[0].CreatedAt) {
				t.Errorf("created_at not preserved: %v", gotCache[0].CreatedAt)
			}

			gotQueue, err := s.LoadQueue(ctx)
			if err != nil {
				t.Fatalf("LoadQueue: %v", err)
			}
			if len(gotQueue) != 2 || gotQueue[0].ID != "q1" || gotQueue[1].Attempts != 2 || gotQueue[1].LastError != "boom" {
				t.Errorf("LoadQueue() = %+v", gotQueue)
			}

			if err := s.SaveQueue(ctx, nil); err != nil {
				t.Fatalf("SaveQueue(nil): %v", err)
			}
			if gotQueue, _ = s.LoadQueue(ctx); len(gotQueue) != 0 {
				t.Errorf("queue should be empty after saving nil, got %+v", gotQueue)
			}
		})
	}
}

func TestCorruptSlotsRecoverSilently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name      string
		slot      Slot
		raw       string
		wantCache int
		wantQueue int
	}{
		{"cache not json", SlotCache, "{not json", 0, 0},
		{"cache json object", SlotCache, `{"item_id":"m1"}`, 0, 0},
		{"cache null", SlotCache, "null", 0, 0},
		{"cache drops invalid entries", SlotCache, `[{"item_id":"m1","item_type":"movie"},{"item_id":"","item_type":"movie"},{"item_id":"x","item_type":"book"}]`, 1, 0},
		{"cache drops duplicates", SlotCache, `[{"item_id":"m1","item_type":"movie"},{"item_id":"m1","item_type":"movie"}]`, 1, 0},
		{"queue truncated", SlotQueue, `[{"item_id":"s1","item_type":"series","op":"add"`, 0, 0},
		{"queue drops unknown op", SlotQueue, `[{"item_id":"s1","item_type":"series","op":"upsert"},{"item_id":"s1","item_type":"series","op":"add"}]`, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewMemoryStore()
			s.PutRaw(tt.slot, []byte(tt.raw))

			cache, err := s.LoadCache(ctx)
			if err != nil {
				t.Fatalf("LoadCache error: %v", err)
			}
			queue, err := s.LoadQueue(ctx)
			if err != nil {
				t.Fatalf("LoadQueue error: %v", err)
			}
			if len(cache) != tt.wantCache || len(queue) != tt.wantQueue {
				t.Errorf("got cache=%d queue=%d, want %d/%d", len(cache), len(queue), tt.wantCache, tt.wantQueue)
			}
		})
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()

	s, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveCache(ctx, sampleCache()); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(&cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	cache, err := reopened.LoadCache(ctx)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if len(cache) != 2 {
		t.Errorf("cache after reopen = %+v, want 2 entries", cache)
	}
}

func TestBadgerInMemory(t *testing.T) {
	cfg := Config{InMemory: true}
	s, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.SaveCache(ctx, sampleCache()); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}
	if cache, _ := s.LoadCache(ctx); len(cache) != 2 {
		t.Errorf("LoadCache() = %+v", cache)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("second Close should be a no-op, got %v", err)
			}
			if _, err := s.LoadCache(ctx); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("LoadCache after Close = %v, want ErrStoreClosed", err)
			}
			if err := s.SaveQueue(ctx, nil); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("SaveQueue after Close = %v, want ErrStoreClosed", err)
			}
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	if _, err := s.LoadCache(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadCache = %v, want context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (&Config{}).Validate(); err == nil {
		t.Error("empty path without in-memory should fail")
	}
	if err := (&Config{InMemory: true}).Validate(); err != nil {
		t.Errorf("in-memory without path should pass: %v", err)
	}
	if err := (&Config{Path: "/tmp/x", MemTableSize: -1}).Validate(); err == nil {
		t.Error("negative size should fail")
	}
}
