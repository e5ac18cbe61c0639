// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package supervisor runs Popfeast's long-lived components under a suture v4
supervisor tree.

Tree Layout:

	popfeast (root)
	├── sync-layer      connectivity prober, periodic flush (agent only)
	└── api-layer       HTTP server

Each layer is its own supervisor so a crash loop in one layer backs off
without taking the other down. Supervisor events are logged through
sutureslog into the application's zerolog logger (see logging.NewSlogLogger).

Failure Handling:

A service whose Serve returns is restarted. After FailureThreshold failures
(decaying at FailureDecay per second) the supervisor waits FailureBackoff
before the next restart. On shutdown each service gets ShutdownTimeout to
return.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddSyncService(services.NewLoopService("connectivity-prober", prober))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
