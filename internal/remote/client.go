// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package remote talks to the Popfeast favorites server.
//
// Service is the contract the sync engine consumes: LIST returns the
// authoritative favorites, ADD and REMOVE are idempotent. HTTPClient is the
// production implementation and BreakerClient wraps any Service with a
// circuit breaker.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/popfeast/internal/config"
	"github.com/tomtom215/popfeast/internal/models"
)

// Service is the remote favorites contract.
type Service interface {
	// List returns every favorite. Intermediary caches are bypassed.
	List(ctx context.Context) ([]models.FavoriteEntry, error)

	// Add favorites key. Adding an existing favorite succeeds.
	Add(ctx context.Context, key models.Key) error

	// Remove unfavorites key. Removing a missing favorite succeeds.
	Remove(ctx context.Context, key models.Key) error

	// Ping checks that the server answers.
	Ping(ctx context.Context) error
}

// BypassHeader asks caching proxies and service workers in front of the
// favorites server to forward the request.
const BypassHeader = "X-Bypass-Cache"

// maxErrorBodySize limits how much of an error response is read (64KB).
const maxErrorBodySize = 64 * 1024

// HTTPClient implements Service over the favorites REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPClient builds a client for cfg.BaseURL.
func NewHTTPClient(cfg *config.ClientConfig) *HTTPClient {
	return NewHTTPClientWithTransport(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
}

// NewHTTPClientWithTransport builds a client around an existing http.Client.
func NewHTTPClientWithTransport(baseURL string, hc *http.Client) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  hc,
		now:     time.Now,
	}
}

// List implements Service.
func (c *HTTPClient) List(ctx context.Context) ([]models.FavoriteEntry, error) {
	q := url.Values{}
	q.Set("__bypass", "1")
	q.Set("_ts", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/favorites?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set(BypassHeader, "1")

	var list []models.FavoriteEntry
	if err := c.do(req, "list", &list); err != nil {
		return nil, err
	}

	for _, e := range list {
		if err := e.Key().Validate(); err != nil {
			return nil, fmt.Errorf("%w: list entry: %v", ErrMalformedResponse, err)
		}
	}
	if list == nil {
		list = []models.FavoriteEntry{}
	}
	return models.Dedupe(list), nil
}

// Add implements Service.
func (c *HTTPClient) Add(ctx context.Context, key models.Key) error {
	return c.mutate(ctx, models.OpAdd, key)
}

// Remove implements Service.
func (c *HTTPClient) Remove(ctx context.Context, key models.Key) error {
	return c.mutate(ctx, models.OpRemove, key)
}

func (c *HTTPClient) mutate(ctx context.Context, op models.Op, key models.Key) error {
	body, err := json.Marshal(models.FavoriteRequest{ItemID: key.ItemID, ItemType: key.ItemType})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/favorites/"+string(op), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp models.StatusResponse
	if err := c.do(req, string(op), &resp); err != nil {
		return err
	}
	if want := string(op.Status()); resp.Status != want {
		return fmt.Errorf("%w: %s returned status %q, want %q", ErrMalformedResponse, op, resp.Status, want)
	}
	return nil
}

// Ping implements Service.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	return c.do(req, "health", nil)
}

// do sends req and decodes a 2xx body into result (unless nil).
func (c *HTTPClient) do(req *http.Request, op string, result interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(readBodyForError(resp.Body))}
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty %s response", ErrMalformedResponse, op)
		}
		return fmt.Errorf("%w: decode %s response: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

// readBodyForError reads at most maxErrorBodySize bytes.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

// errorMessage prefers the "error" field of a JSON error body and falls
// back to the raw text.
func errorMessage(body []byte) string {
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return strings.TrimSpace(string(body))
}
