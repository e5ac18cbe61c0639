// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/popfeast/internal/database"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
	"github.com/tomtom215/popfeast/internal/validation"
)

// healthTimeout bounds the repository ping behind /api/health.
const healthTimeout = 2 * time.Second

// Handler serves favorites from a Repository.
type Handler struct {
	repo    database.Repository
	version string
}

// NewHandler builds a Handler.
func NewHandler(repo database.Repository, version string) *Handler {
	return &Handler{repo: repo, version: version}
}

// Health reports whether the repository answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := models.HealthResponse{Status: "ok", Database: "ok", Version: h.version}
	if err := h.repo.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: repository ping failed")
		resp.Status = "degraded"
		resp.Database = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListFavorites returns every favorite.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListFavorites(r.Context())
	if err != nil {
		respondError(r, w, http.StatusInternalServerError, "failed to list favorites", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// AddFavorite stores a favorite. Repeating it is harmless.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, models.OpAdd)
}

// RemoveFavorite deletes a favorite. Removing a missing one is harmless.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, models.OpRemove)
}

// ToggleFavorite flips a favorite on the server and reports the result as
// "added" or "removed". Unlike add and remove it is not idempotent; offline
// clients queue add and remove instead.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFavoriteRequest(w, r)
	if !ok {
		return
	}

	key := req.Key()
	op, err := h.repo.ToggleFavorite(r.Context(), key)
	if err != nil {
		if errors.Is(err, models.ErrInvalidItem) {
			respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
			return
		}
		respondError(r, w, http.StatusInternalServerError, "failed to toggle favorite", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("item", sanitizeLogValue(key.String())).
		Str("op", string(op)).
		Msg("Favorite toggled")
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: string(op.Status())})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op models.Op) {
	req, ok := decodeFavoriteRequest(w, r)
	if !ok {
		return
	}

	key := req.Key()
	var err error
	if op == models.OpRemove {
		err = h.repo.RemoveFavorite(r.Context(), key)
	} else {
		err = h.repo.AddFavorite(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, models.ErrInvalidItem) {
			respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
			return
		}
		respondError(r, w, http.StatusInternalServerError, "failed to "+string(op)+" favorite", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("item", sanitizeLogValue(key.String())).
		Str("op", string(op)).
		Msg("Favorite updated")
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: string(op.Status())})
}

// decodeFavoriteRequest parses and validates the body, writing the error
// response itself when the request is unusable. An empty body validates as
// a request with no fields.
func decodeFavoriteRequest(w http.ResponseWriter, r *http.Request) (models.FavoriteRequest, bool) {
	var req models.FavoriteRequest

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(r, w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return req, false
		}
		respondError(r, w, http.StatusBadRequest, validation.MsgRequired, err)
		return req, false
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
			return req, false
		}
	}

	req.ItemID = req.Key().ItemID
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(r, w, http.StatusBadRequest, verr.Message(), nil)
		return req, false
	}
	return req, true
}
