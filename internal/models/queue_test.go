// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package models

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func op(id string, t ItemType, o Op, at int) QueuedOperation {
	return QueuedOperation{ItemID: id, ItemType: t, Op: o, QueuedAt: time.Unix(int64(at), 0).UTC()}
}

func entry(id string, t ItemType) FavoriteEntry {
	return FavoriteEntry{ItemID: id, ItemType: t, CreatedAt: time.Unix(1, 0).UTC()}
}

func keys(list []FavoriteEntry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Key().String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestKeyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{"movie", NewKey("m1", ItemTypeMovie), false},
		{"series", NewKey("s1", ItemTypeSeries), false},
		{"blank id", NewKey("   ", ItemTypeMovie), true},
		{"unknown type", NewKey("x", ItemType("anime")), true},
		{"empty type", NewKey("x", ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.key.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("error %v should wrap ErrInvalidItem", err)
			}
		})
	}
}

func TestOverlayLastOpWins(t *testing.T) {
	t.Parallel()

	cache := []FavoriteEntry{entry("m1", ItemTypeMovie), entry("s1", ItemTypeSeries)}
	queue := []QueuedOperation{
		op("m1", ItemTypeMovie, OpRemove, 1),
		op("m2", ItemTypeMovie, OpAdd, 2),
		op("s1", ItemTypeSeries, OpRemove, 3),
		op("s1", ItemTypeSeries, OpAdd, 4),
		op("m2", ItemTypeMovie, OpRemove, 5),
		op("s9", ItemTypeSeries, OpAdd, 6),
	}

	got := keys(Overlay(cache, queue))
	want := []string{"series:s1", "series:s9"}
	if !equalStrings(got, want) {
		t.Errorf("Overlay() = %v, want %v", got, want)
	}
}

func TestOverlayEmptyQueueReturnsCache(t *testing.T) {
	t.Parallel()

	cache := []FavoriteEntry{entry("m1", ItemTypeMovie), entry("m1", ItemTypeMovie)}
	got := Overlay(cache, nil)
	if len(got) != 1 {
		t.Errorf("Overlay() returned %d entries, want 1 (duplicates collapse)", len(got))
	}
}

func TestCompact(t *testing.T) {
	t.Parallel()

	queue := []QueuedOperation{
		op("a", ItemTypeMovie, OpAdd, 1),
		op("b", ItemTypeMovie, OpAdd, 2),
		op("a", ItemTypeMovie, OpRemove, 3),
		op("a", ItemTypeMovie, OpAdd, 4),
	}

	got := Compact(queue)
	if len(got) != 2 {
		t.Fatalf("Compact() kept %d ops, want 2", len(got))
	}
	if got[0].ItemID != "b" || got[1].ItemID != "a" {
		t.Errorf("Compact() order = [%s %s], want [b a]", got[0].ItemID, got[1].ItemID)
	}
	if got[1].Op != OpAdd || !got[1].QueuedAt.Equal(time.Unix(4, 0)) {
		t.Errorf("Compact() kept %+v, want the latest add", got[1])
	}
}

func TestDedupeAndFilter(t *testing.T) {
	t.Parallel()

	list := []FavoriteEntry{entry("m1", ItemTypeMovie), entry("s1", ItemTypeSeries), entry("m1", ItemTypeMovie)}
	if got := Dedupe(list); len(got) != 2 {
		t.Errorf("Dedupe() = %d entries, want 2", len(got))
	}
	if got := FilterByType(list, ItemTypeSeries); len(got) != 1 || got[0].ItemID != "s1" {
		t.Errorf("FilterByType(series) = %v", got)
	}
	if !ContainsKey(list, NewKey("s1", ItemTypeSeries)) {
		t.Error("ContainsKey should find s1")
	}
	if ContainsKey(list, NewKey("s1", ItemTypeMovie)) {
		t.Error("ContainsKey must match on type as well as id")
	}
}

// TestQueuedOperationLegacyLayout checks that queue slots written without
// the bookkeeping fields still decode.
func TestQueuedOperationLegacyLayout(t *testing.T) {
	t.Parallel()

	raw := `[{"item_id":"s1","item_type":"series","op":"add","queued_at":"2025-01-02T03:04:05Z"}]`
	var queue []QueuedOperation
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(queue) != 1 || queue[0].Key() != NewKey("s1", ItemTypeSeries) || queue[0].Op != OpAdd {
		t.Fatalf("decoded %+v", queue)
	}

	out, err := json.Marshal(queue[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, k := range []string{"id", "attempts", "last_error"} {
		if _, ok := fields[k]; ok {
			t.Errorf("empty %s should be omitted", k)
		}
	}
}

func TestOpHelpers(t *testing.T) {
	t.Parallel()

	if OpFor(true) != OpRemove || OpFor(false) != OpAdd {
		t.Error("OpFor should flip membership")
	}
	if OpAdd.Status() != StatusAdded || OpRemove.Status() != StatusRemoved {
		t.Error("Op.Status mismatch")
	}
	if OpAdd.Inverse() != OpRemove || OpRemove.Inverse() != OpAdd {
		t.Error("Op.Inverse should swap add and remove")
	}
	if OpFor(true).Inverse() != OpFor(false) {
		t.Error("inverse of a flip must be the opposite flip")
	}
	if Op("upsert").Valid() {
		t.Error("unknown op must be invalid")
	}
}
