// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

/*
Package middleware provides the chi middleware shared by the favorites server
and the local sync agent.

Key Components:

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    chi route pattern
  - Chi: CORS (go-chi/cors) and per-IP rate limiting (go-chi/httprate)

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Group(func(r chi.Router) {
	    r.Use(mw.RateLimit())
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/api/favorites", h.List)
	})
*/
package middleware
