// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ItemType is the kind of media a favorite points at.
type ItemType string

const (
	ItemTypeMovie  ItemType = "movie"
	ItemTypeSeries ItemType = "series"
)

// Valid reports whether t is a recognized item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeMovie || t == ItemTypeSeries
}

// ErrInvalidItem is returned when an item has no ID or an unknown type.
var ErrInvalidItem = errors.New("invalid favorite item")

// Key identifies a favorite.
type Key struct {
	ItemID   string   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
}

// NewKey builds a Key, trimming whitespace around the ID.
func NewKey(id string, t ItemType) Key {
	return Key{ItemID: strings.TrimSpace(id), ItemType: t}
}

// Validate returns ErrInvalidItem when the key cannot identify a favorite.
func (k Key) Validate() error {
	if k.ItemID == "" {
		return fmt.Errorf("%w: item_id is required", ErrInvalidItem)
	}
	if !k.ItemType.Valid() {
		return fmt.Errorf("%w: item_type %q is not one of movie, series", ErrInvalidItem, k.ItemType)
	}
	return nil
}

// String renders the key as "type:id" for logs and metric-free labels.
func (k Key) String() string {
	return string(k.ItemType) + ":" + k.ItemID
}

// FavoriteEntry is one favorited item as stored by the remote and mirrored
// in the local cache.
type FavoriteEntry struct {
	ItemID    string    `json:"item_id"`
	ItemType  ItemType  `json:"item_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the identity of the entry.
func (e FavoriteEntry) Key() Key {
	return Key{ItemID: e.ItemID, ItemType: e.ItemType}
}

// ContainsKey reports whether list holds an entry for k.
func ContainsKey(list []FavoriteEntry, k Key) bool {
	for _, e := range list {
		if e.Key() == k {
			return true
		}
	}
	return false
}

// FilterByType returns the entries of the given type, preserving order.
func FilterByType(list []FavoriteEntry, t ItemType) []FavoriteEntry {
	out := make([]FavoriteEntry, 0, len(list))
	for _, e := range list {
		if e.ItemType == t {
			out = append(out, e)
		}
	}
	return out
}

// Dedupe drops later entries whose key already appeared. A remote that
// violates the uniqueness contract must not produce duplicates locally.
func Dedupe(list []FavoriteEntry) []FavoriteEntry {
	seen := make(map[Key]struct{}, len(list))
	out := make([]FavoriteEntry, 0, len(list))
	for _, e := range list {
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ToggleItem is the input of a favorite toggle. Title and PosterURL are
// display fields carried for the caller and never persisted.
type ToggleItem struct {
	ID        string   `json:"id" validate:"required,max=256"`
	Type      ItemType `json:"type" validate:"required,oneof=movie series"`
	Title     string   `json:"title,omitempty" validate:"omitempty,max=512"`
	PosterURL string   `json:"poster_url,omitempty" validate:"omitempty,url"`
}

// Key returns the favorite identity of the item.
func (i ToggleItem) Key() Key {
	return NewKey(i.ID, i.Type)
}

// ToggleStatus is the outcome of a toggle.
type ToggleStatus string

const (
	StatusAdded   ToggleStatus = "added"
	StatusRemoved ToggleStatus = "removed"
	StatusQueued  ToggleStatus = "queued"
)

// ToggleResult is returned by a toggle.
type ToggleResult struct {
	Status ToggleStatus `json:"status"`
}
