// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/popfeast/internal/config"
	"github.com/tomtom215/popfeast/internal/models"
)

// stubService returns err from every call.
type stubService struct {
	err   error
	calls int
}

func (s *stubService) List(context.Context) ([]models.FavoriteEntry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.FavoriteEntry{{ItemID: "m1", ItemType: models.ItemTypeMovie}}, nil
}

func (s *stubService) Add(context.Context, models.Key) error    { s.calls++; return s.err }
func (s *stubService) Remove(context.Context, models.Key) error { s.calls++; return s.err }
func (s *stubService) Ping(context.Context) error               { s.calls++; return s.err }

func testBreakerConfig() *config.BreakerConfig {
	return &config.BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// TestBreakerOpensOnTransportFailures verifies the circuit opens after ten
// consecutive transport failures and then fails fast.
func TestBreakerOpensOnTransportFailures(t *testing.T) {
	stub := &stubService{err: errors.New("connection refused")}
	b := NewBreakerClient(stub, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = b.Ping(ctx)
	}
	if b.State() != "open" {
		t.Fatalf("State() = %s, want open", b.State())
	}

	calls := stub.calls
	err := b.Add(ctx, models.NewKey("m1", models.ItemTypeMovie))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Add on open circuit = %v, want ErrOpenState", err)
	}
	if IsRejection(err) {
		t.Error("open circuit must not look like a rejection")
	}
	if stub.calls != calls {
		t.Error("open circuit should not reach the wrapped service")
	}
}

// TestBreakerIgnoresClientErrors verifies 4xx answers do not trip the circuit.
func TestBreakerIgnoresClientErrors(t *testing.T) {
	stub := &stubService{err: &StatusError{Op: "add", StatusCode: http.StatusBadRequest, Message: "invalid item_type"}}
	b := NewBreakerClient(stub, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		err := b.Add(ctx, models.NewKey("m1", models.ItemTypeMovie))
		if !IsRejection(err) {
			t.Fatalf("call %d: error %v should pass through as a rejection", i, err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %s, want closed", b.State())
	}
}

func TestBreakerServerErrorsTrip(t *testing.T) {
	stub := &stubService{err: &StatusError{Op: "list", StatusCode: http.StatusInternalServerError}}
	b := NewBreakerClient(stub, testBreakerConfig())

	for i := 0; i < 10; i++ {
		_, _ = b.List(context.Background())
	}
	if b.State() != "open" {
		t.Errorf("State() = %s, want open after repeated 5xx", b.State())
	}
}

func TestBreakerPassesResults(t *testing.T) {
	b := NewBreakerClient(&stubService{}, testBreakerConfig())

	list, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ItemID != "m1" {
		t.Errorf("List() = %+v", list)
	}
}

func TestStateHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		str   string
		val   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
		{gobreaker.State(99), "unknown", -1},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.val {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.val)
		}
	}
}
