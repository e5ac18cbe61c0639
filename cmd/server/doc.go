// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package main is the entry point for the Popfeast favorites server.

The server owns the authoritative favorites list and exposes the idempotent
LIST, ADD and REMOVE endpoints that favsync agents reconcile against.

# Application Architecture

	RootSupervisor ("popfeast")
	├── SyncSupervisor ("sync-layer")   (unused by the server)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (favorites API, health, metrics)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Repository: DuckDB, or an in-process map when MOCK_MODE=true
 4. Supervisor Tree: Suture v4 process supervision
 5. HTTP Server: Chi router with middleware stack

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests within the supervisor shutdown timeout, then the database is
checkpointed and closed.
*/
package main
