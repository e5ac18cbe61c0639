// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package agent exposes a favorites.Store to local UI code over HTTP.

Endpoints:

	GET  /api/favorites?prefer_cache=&type=   favorites list, never an error
	GET  /api/favorites/view                  cache with pending ops applied
	GET  /api/favorites/pending               queued operations
	GET  /api/favorites/status?id=&type=      {"favorite": bool} for one item
	POST /api/favorites/toggle                ToggleItem -> {"status": ...}
	POST /api/favorites/flush                 run a flush pass now
	GET  /api/connectivity                    online flag and queue depth
	GET  /api/health                          liveness
	GET  /metrics                             Prometheus exposition

Toggles for an item already being toggled are refused with 409, so a
double click cannot send two opposite mutations. A server rejection maps to
502 carrying the server's message; an invalid item maps to 400.
*/
package agent
