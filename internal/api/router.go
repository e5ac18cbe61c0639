// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/popfeast/internal/middleware"
)

// Router wires the handler into chi.
type Router struct {
	handler *Handler
	mw      *middleware.Chi
}

// NewRouter builds a Router; a nil mw uses middleware defaults.
func NewRouter(handler *Handler, mw *middleware.Chi) *Router {
	if mw == nil {
		mw = middleware.NewChi(nil)
	}
	return &Router{handler: handler, mw: mw}
}

// Setup returns the complete HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/api/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/api/favorites", router.handler.ListFavorites)
		r.Post("/api/favorites/add", router.handler.AddFavorite)
		r.Post("/api/favorites/remove", router.handler.RemoveFavorite)
		r.Post("/api/favorites/toggle", router.handler.ToggleFavorite)
	})

	return r
}
