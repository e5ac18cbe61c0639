// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package models

// FavoriteRequest is the body of the remote add and remove endpoints.
type FavoriteRequest struct {
	ItemID   string   `json:"item_id" validate:"required,max=256"`
	ItemType ItemType `json:"item_type" validate:"required,oneof=movie series"`
}

// Key returns the favorite identity named by the request.
func (r FavoriteRequest) Key() Key {
	return NewKey(r.ItemID, r.ItemType)
}

// StatusResponse is the success body of the remote add and remove
// endpoints, e.g. {"status":"added"}.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body of every Popfeast HTTP endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Version  string `json:"version,omitempty"`
}
