// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package models defines the data structures shared by the Popfeast favorites
server, the favsync agent, and the sync engine.

Key Components:

  - FavoriteEntry: one favorited movie or series, identified by Key
  - QueuedOperation: an add or remove the remote has not confirmed yet
  - ToggleItem / ToggleResult: input and output of a favorite toggle
  - StatusResponse / ErrorResponse: the remote favorites wire format

Identity:

A favorite is identified only by the (item_id, item_type) pair. Key is that
pair as a comparable struct and is used as a map key throughout the engine.
Two entries with the same Key are the same favorite regardless of
created_at.

JSON Layout:

The JSON field names (item_id, item_type, created_at, op, queued_at) are the
persisted layout of the local cache and queue slots as well as the wire
format of the remote service, so renaming them breaks stored state.
*/
package models
