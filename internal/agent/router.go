// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package agent

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/popfeast/internal/middleware"
	"github.com/tomtom215/popfeast/internal/models"
)

// NewRouter returns the agent's HTTP handler. A nil mw uses middleware
// defaults.
func NewRouter(h *Handler, mw *middleware.Chi) http.Handler {
	if mw == nil {
		mw = middleware.NewChi(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
	})

	r.Get("/api/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/api/connectivity", h.Connectivity)
		r.Route("/api/favorites", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/view", h.View)
			r.Get("/pending", h.Pending)
			r.Get("/status", h.Status)
			r.Post("/toggle", h.Toggle)
			r.Post("/flush", h.Flush)
		})
	})

	return r
}
