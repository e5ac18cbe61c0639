// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package agent

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/popfeast/internal/favorites"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/models"
	"github.com/tomtom215/popfeast/internal/remote"
	"github.com/tomtom215/popfeast/internal/validation"
)

// maxRequestBodySize bounds a toggle body (8KB; display fields ride along).
const maxRequestBodySize = 8 * 1024

// Handler serves the local favorites API.
type Handler struct {
	store *favorites.Store

	mu       sync.Mutex
	inflight map[models.Key]struct{}
}

// NewHandler builds a Handler over store.
func NewHandler(store *favorites.Store) *Handler {
	return &Handler{store: store, inflight: make(map[models.Key]struct{})}
}

// StatusResponse answers /api/favorites/status.
type StatusResponse struct {
	ItemID   string          `json:"item_id"`
	ItemType models.ItemType `json:"item_type"`
	Favorite bool            `json:"favorite"`
}

// ConnectivityResponse answers /api/connectivity.
type ConnectivityResponse struct {
	Online     bool `json:"online"`
	QueueDepth int  `json:"queue_depth"`
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// List returns the favorites list, optionally from cache and narrowed to
// one type.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preferCache, _ := strconv.ParseBool(q.Get("prefer_cache"))

	if t := q.Get("type"); t != "" {
		itemType := models.ItemType(t)
		if !itemType.Valid() {
			respondError(r, w, http.StatusBadRequest, validation.MsgInvalidItemType, nil)
			return
		}
		respondJSON(w, http.StatusOK, h.store.GetFavoritesByType(r.Context(), preferCache, itemType))
		return
	}
	respondJSON(w, http.StatusOK, h.store.GetFavorites(r.Context(), preferCache))
}

// View returns the cache with pending operations applied.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.View(r.Context()))
}

// Pending returns the queued operations.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Pending(r.Context()))
}

// Status reports whether one item is a favorite in the presented view.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := models.NewKey(q.Get("id"), models.ItemType(q.Get("type")))
	if key.ItemID == "" || key.ItemType == "" {
		respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
		return
	}
	if !key.ItemType.Valid() {
		respondError(r, w, http.StatusBadRequest, validation.MsgInvalidItemType, nil)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		ItemID:   key.ItemID,
		ItemType: key.ItemType,
		Favorite: h.store.IsFavorite(r.Context(), key),
	})
}

// Toggle flips one item.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeToggleItem(w, r)
	if !ok {
		return
	}
	key := item.Key()

	if !h.acquire(key) {
		respondError(r, w, http.StatusConflict, "toggle already in progress", nil)
		return
	}
	defer h.release(key)

	res, err := h.store.ToggleFavorite(r.Context(), item)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidItem):
			respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
		case errors.Is(err, favorites.ErrRejected):
			respondError(r, w, http.StatusBadGateway, rejectionMessage(err), nil)
		default:
			respondError(r, w, http.StatusInternalServerError, "failed to toggle favorite", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Flush runs a flush pass and returns its summary.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.FlushQueue(r.Context())
	if err != nil {
		respondError(r, w, http.StatusInternalServerError, "failed to flush queue", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Connectivity reports the connectivity signal and queue depth.
func (h *Handler) Connectivity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConnectivityResponse{
		Online:     h.store.Online(),
		QueueDepth: len(h.store.Pending(r.Context())),
	})
}

// acquire marks key in flight, reporting false when it already was.
func (h *Handler) acquire(key models.Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.inflight[key]; busy {
		return false
	}
	h.inflight[key] = struct{}{}
	return true
}

func (h *Handler) release(key models.Key) {
	h.mu.Lock()
	delete(h.inflight, key)
	h.mu.Unlock()
}

// rejectionMessage returns the server's own error text when it sent one.
func rejectionMessage(err error) string {
	var se *remote.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "favorites server rejected the change"
}

func decodeToggleItem(w http.ResponseWriter, r *http.Request) (models.ToggleItem, bool) {
	var item models.ToggleItem

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(r, w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return item, false
		}
		respondError(r, w, http.StatusBadRequest, validation.MsgRequired, err)
		return item, false
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &item); err != nil {
			respondError(r, w, http.StatusBadRequest, validation.MsgRequired, nil)
			return item, false
		}
	}

	item.ID = item.Key().ItemID
	if verr := validation.ValidateStruct(&item); verr != nil {
		logging.Ctx(r.Context()).Debug().Str("error", verr.Error()).Msg("Rejected toggle request")
		respondError(r, w, http.StatusBadRequest, verr.Message(), nil)
		return item, false
	}
	return item, true
}
