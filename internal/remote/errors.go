// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse means the server answered 2xx with a body that does
// not match the contract.
var ErrMalformedResponse = errors.New("malformed favorites response")

// StatusError is a non-2xx answer from the favorites server.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s request failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// ClientError reports a 4xx status: the server is up and refused the input.
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// IsRejection reports whether err is the server answering with an error
// status, as opposed to the server being unreachable.
func IsRejection(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
