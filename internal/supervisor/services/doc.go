// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package services adapts Popfeast components to suture.Service.
//
//   - HTTPServerService: http.Server's ListenAndServe/Shutdown
//   - LoopService: components with Start(ctx)/Stop(), such as the
//     connectivity prober
//   - FlushService: periodic retry of the favorites queue while online
package services
