// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package localstore persists the favsync agent's two pieces of local state:
// the cached favorites list and the queue of operations the remote has not
// confirmed.
//
// # Layout
//
// Each piece lives in its own slot under a fixed key, stored as a JSON array:
//
//	popfeast_favs_cache  -> [{"item_id":"m1","item_type":"movie","created_at":...}]
//	popfeast_favs_queue  -> [{"item_id":"s1","item_type":"series","op":"add","queued_at":...}]
//
// Slots are written whole on every save. There is no partial update, so a
// reader sees either the previous list or the new one.
//
// # Recovery
//
// A missing slot, a slot that does not decode, or entries that cannot name
// a favorite are dropped and reported as an empty (or shorter) list. This is
// logged at warn level and counted, never returned as an error: favorites
// are not worth failing a request over. Only I/O failures and use after
// Close are errors.
//
// # Implementations
//
//   - BadgerStore: BadgerDB on disk (or in memory) for the agent
//   - MemoryStore: an in-process map for tests and throwaway sessions
package localstore
