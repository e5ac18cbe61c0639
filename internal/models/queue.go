// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package models

import "time"

// Op is a queued mutation kind.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Valid reports whether o is add or remove.
func (o Op) Valid() bool {
	return o == OpAdd || o == OpRemove
}

// Status returns the toggle status a successful o produces.
func (o Op) Status() ToggleStatus {
	if o == OpRemove {
		return StatusRemoved
	}
	return StatusAdded
}

// Inverse returns the op that undoes o.
func (o Op) Inverse() Op {
	if o == OpAdd {
		return OpRemove
	}
	return OpAdd
}

// OpFor returns the op that flips the current membership.
func OpFor(exists bool) Op {
	if exists {
		return OpRemove
	}
	return OpAdd
}

// QueuedOperation is a mutation not yet confirmed by the remote.
//
// ID, Attempts and LastError are bookkeeping added by the engine; they are
// omitted when empty so queues written without them decode unchanged.
type QueuedOperation struct {
	ID        string    `json:"id,omitempty"`
	ItemID    string    `json:"item_id"`
	ItemType  ItemType  `json:"item_type"`
	Op        Op        `json:"op"`
	QueuedAt  time.Time `json:"queued_at"`
	Attempts  int       `json:"attempts,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Key returns the identity of the favorite the op targets.
func (q QueuedOperation) Key() Key {
	return Key{ItemID: q.ItemID, ItemType: q.ItemType}
}

// Overlay applies pending operations on top of a server-known list. For each
// key only the latest queued op counts: add inserts the key if missing,
// remove drops it. Entries inserted by the overlay carry the op's QueuedAt as
// CreatedAt.
func Overlay(cache []FavoriteEntry, queue []QueuedOperation) []FavoriteEntry {
	latest := make(map[Key]QueuedOperation, len(queue))
	order := make([]Key, 0, len(queue))
	for _, op := range queue {
		if _, seen := latest[op.Key()]; !seen {
			order = append(order, op.Key())
		}
		latest[op.Key()] = op
	}

	out := make([]FavoriteEntry, 0, len(cache)+len(queue))
	present := make(map[Key]struct{}, len(cache))
	for _, e := range cache {
		if op, ok := latest[e.Key()]; ok && op.Op == OpRemove {
			continue
		}
		if _, dup := present[e.Key()]; dup {
			continue
		}
		present[e.Key()] = struct{}{}
		out = append(out, e)
	}
	for _, k := range order {
		op := latest[k]
		if op.Op != OpAdd {
			continue
		}
		if _, ok := present[k]; ok {
			continue
		}
		present[k] = struct{}{}
		out = append(out, FavoriteEntry{ItemID: k.ItemID, ItemType: k.ItemType, CreatedAt: op.QueuedAt})
	}
	return out
}

// Compact keeps only the latest op per key. The survivors are ordered by the
// position of that latest op, so FIFO order between different keys follows
// the most recent intent.
func Compact(queue []QueuedOperation) []QueuedOperation {
	last := make(map[Key]int, len(queue))
	for i, op := range queue {
		last[op.Key()] = i
	}
	out := make([]QueuedOperation, 0, len(last))
	for i, op := range queue {
		if last[op.Key()] == i {
			out = append(out, op)
		}
	}
	return out
}
