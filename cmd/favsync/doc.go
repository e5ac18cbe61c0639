// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package main is the favsync agent: the client side of Popfeast favorites.

favsync keeps a BadgerDB cache of the last authoritative favorites list and
a queue of toggles made while the server was unreachable. It probes the
server's health endpoint, flushes the queue when connectivity returns, and
serves a loopback API for the UI to list, view and toggle favorites.

# Application Architecture

	RootSupervisor ("popfeast")
	├── SyncSupervisor ("sync-layer")
	│   ├── connectivity-prober (health probe loop)
	│   └── favorites-flush (periodic retry, FLUSH_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── favsync-http (loopback agent API)

# Configuration

	POPFEAST_API_URL     favorites server base URL
	FAVSYNC_STORE_PATH   BadgerDB directory
	FAVSYNC_STORE_MEMORY keep cache and queue in RAM only
	PROBE_INTERVAL       health probe period
	FLUSH_INTERVAL       periodic flush retry while online
	FAVSYNC_HOST/PORT    agent API listener
*/
package main
