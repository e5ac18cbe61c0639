// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package database persists the favorites server's state.

Two Repository implementations exist:

  - DB stores favorites in DuckDB (duckdb-go/v2). The table is keyed by
    (item_id, item_type), so adding an existing favorite is a no-op and
    removing a missing one deletes nothing. Both succeed.
  - MemoryRepository keeps favorites in a map for mock mode and tests.

Schema:

	CREATE TABLE favorites (
	    item_id    VARCHAR   NOT NULL,
	    item_type  VARCHAR   NOT NULL CHECK (item_type IN ('movie', 'series')),
	    created_at TIMESTAMP NOT NULL,
	    PRIMARY KEY (item_id, item_type)
	)

Lists are ordered newest first. Every query runs with a deadline (30s when
the caller gives none) and is recorded in the popfeast_duckdb_* metrics.
*/
package database
