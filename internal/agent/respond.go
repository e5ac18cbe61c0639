// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package agent

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(r *http.Request, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("Agent API error")
	}
	respondJSON(w, status, models.ErrorResponse{Error: message})
}
