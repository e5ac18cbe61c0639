// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/popfeast/internal/config"
	"github.com/tomtom215/popfeast/internal/models"
)

// fakeServer is a minimal favorites server that records what it saw.
type fakeServer struct {
	mu          sync.Mutex
	favorites   []models.FavoriteEntry
	lastHeaders http.Header
	lastQuery   string
	listBody    string
	status      int
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastHeaders = r.Header.Clone()
	f.lastQuery = r.URL.RawQuery
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":"invalid item_type"}`))
		return
	}

	switch r.URL.Path {
	case "/api/health":
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	case "/api/favorites":
		if f.listBody != "" {
			_, _ = w.Write([]byte(f.listBody))
			return
		}
		_ = json.NewEncoder(w).Encode(f.favorites)
	case "/api/favorites/add", "/api/favorites/remove":
		var req models.FavoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Path == "/api/favorites/add" {
			if !models.ContainsKey(f.favorites, req.Key()) {
				f.favorites = append(f.favorites, models.FavoriteEntry{ItemID: req.ItemID, ItemType: req.ItemType, CreatedAt: time.Now().UTC()})
			}
			_, _ = w.Write([]byte(`{"status":"added"}`))
			return
		}
		kept := f.favorites[:0]
		for _, e := range f.favorites {
			if e.Key() != req.Key() {
				kept = append(kept, e)
			}
		}
		f.favorites = kept
		_, _ = w.Write([]byte(`{"status":"removed"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeServer) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(&config.ClientConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestListBypassesCaches(t *testing.T) {
	t.Parallel()

	fake := &fakeServer{favorites: []models.FavoriteEntry{{ItemID: "m1", ItemType: models.ItemTypeMovie}}}
	c := newTestClient(t, fake)

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ItemID != "m1" {
		t.Fatalf("List() = %+v", list)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if got := fake.lastHeaders.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if got := fake.lastHeaders.Get("x-bypass-cache"); got != "1" {
		t.Errorf("x-bypass-cache = %q, want 1", got)
	}
	if fake.lastQuery != "__bypass=1&_ts=1700000000123" {
		t.Errorf("query = %q", fake.lastQuery)
	}
}

func TestAddRemoveIdempotent(t *testing.T) {
	t.Parallel()

	fake := &fakeServer{}
	c := newTestClient(t, fake)
	ctx := context.Background()
	key := models.NewKey("s1", models.ItemTypeSeries)

	for i := 0; i < 2; i++ {
		if err := c.Add(ctx, key); err != nil {
			t.Fatalf("Add #%d: %v", i+1, err)
		}
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("after two adds List() = %+v, want one entry", list)
	}

	for i := 0; i < 2; i++ {
		if err := c.Remove(ctx, key); err != nil {
			t.Fatalf("Remove #%d: %v", i+1, err)
		}
	}
	if list, _ = c.List(ctx); len(list) != 0 {
		t.Errorf("after removes List() = %+v, want empty", list)
	}
}

func TestStatusErrorsAreRejections(t *testing.T) {
	t.Parallel()

	fake := &fakeServer{status: http.StatusBadRequest}
	c := newTestClient(t, fake)

	err := c.Add(context.Background(), models.NewKey("x", models.ItemTypeMovie))
	if !IsRejection(err) {
		t.Fatalf("Add error %v should be a rejection", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest || se.Message != "invalid item_type" {
		t.Errorf("StatusError = %+v", se)
	}
	if !se.ClientError() {
		t.Error("400 should be a client error")
	}
	if StatusCode(err) != http.StatusBadRequest {
		t.Errorf("StatusCode() = %d", StatusCode(err))
	}
}

func TestMalformedResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>captive portal</html>"},
		{"object instead of array", `{"favorites":[]}`},
		{"invalid entry", `[{"item_id":"m1","item_type":"book"}]`},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := &fakeServer{listBody: tt.body}
			if tt.body == "" {
				fake.listBody = " "
			}
			c := newTestClient(t, fake)
			_, err := c.List(context.Background())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("List() error = %v, want ErrMalformedResponse", err)
			}
			if IsRejection(err) {
				t.Error("malformed body must not count as a rejection")
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClientWithTransport(url, &http.Client{Timeout: time.Second})
	err := c.Ping(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if IsRejection(err) {
		t.Errorf("connection error %v must not be a rejection", err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeServer{})
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
