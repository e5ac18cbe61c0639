// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package favorites reconciles the local favorites cache, the queue of
// unconfirmed operations, and the favorites server.
//
// # Model
//
// The server is the source of truth. The cache is the last list the server
// returned, patched by confirmed toggles. The queue holds toggles made while
// the server was unreachable, in enqueue order.
//
//	UI ──GetFavorites/ToggleFavorite──▶ Store ──▶ localstore (cache, queue)
//	                                      │
//	                                      └──────▶ remote (LIST, ADD, REMOVE)
//	connectivity ──OnConnectivityRestored──▶ Store.FlushQueue
//
// # Reads
//
// GetFavorites never fails. With preferCache and a non-empty cache it
// answers from the cache and refreshes in the background; otherwise it asks
// the server and falls back to the cache on any error.
//
// # Toggles
//
// Online, a toggle flips the server-side membership and only then patches
// the cache. A server rejection is returned to the caller with nothing
// changed locally. Offline (or when the server cannot be reached) the
// toggle is queued and the cache is left alone; View shows the cache with
// the queue applied on top.
//
// # Flushing
//
// FlushQueue runs when connectivity returns and on demand. It keeps one op
// per item (the latest), sends them one at a time in order, removes the ones
// the server accepted, and refreshes the cache if anything went through.
//
// # Concurrency
//
// Reads and writes of the local slots are serialized inside the Store, so
// concurrent HTTP handlers cannot interleave a read-modify-write. Toggles
// for the same item are not serialized; callers keep an in-flight set per
// item (see the agent package). Background refreshes and flushes run on a
// Store-owned context that Close cancels.
package favorites
