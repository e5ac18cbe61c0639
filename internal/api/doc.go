// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package api serves the favorites server HTTP surface over a chi router.

Endpoints:

	GET  /api/health             repository health, 503 when the ping fails
	GET  /api/favorites          every favorite, newest first, never cached
	POST /api/favorites/add      {item_id, item_type} -> {"status":"added"}
	POST /api/favorites/remove   {item_id, item_type} -> {"status":"removed"}
	POST /api/favorites/toggle   {item_id, item_type} -> {"status":"added"|"removed"}
	GET  /metrics                Prometheus exposition

Add and remove are idempotent; toggle flips whatever is stored. Error bodies are {"error": "..."} with 400
for an unusable request, 405 for the wrong method and 500 for storage
failures.
*/
package api
