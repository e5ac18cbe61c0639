// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/popfeast/internal/favorites"
	"github.com/tomtom215/popfeast/internal/models"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*LoopService)(nil)
	_ suture.Service = (*FlushService)(nil)
)

// mockHTTPServer blocks in ListenAndServe until Shutdown, or fails at once.
type mockHTTPServer struct {
	listenErr error
	started   chan struct{}
	stopCh    chan struct{}
	shutdowns atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.started <- struct{}{}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	close(m.stopCh)
	return nil
}

func TestHTTPServerService(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		srv := newMockHTTPServer()
		svc := NewHTTPServerService("test-http", srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		<-srv.started
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure is returned", func(t *testing.T) {
		t.Parallel()
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address already in use")
		svc := NewHTTPServerService("", srv, 0)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, srv.listenErr) {
			t.Errorf("Serve() = %v, want wrapped listen error", err)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q, want default name", svc.String())
		}
	})
}

// mockLoop records Start and Stop.
type mockLoop struct {
	startErr error
	started  atomic.Int32
	stopped  atomic.Int32
	running  atomic.Bool
}

func (m *mockLoop) Start(context.Context) error {
	m.started.Add(1)
	if m.startErr != nil {
		return m.startErr
	}
	m.running.Store(true)
	return nil
}

func (m *mockLoop) Stop() {
	m.stopped.Add(1)
	m.running.Store(false)
}

func (m *mockLoop) IsRunning() bool { return m.running.Load() }

func TestLoopService(t *testing.T) {
	t.Parallel()

	t.Run("start then stop on cancel", func(t *testing.T) {
		t.Parallel()
		loop := &mockLoop{}
		svc := NewLoopService("prober", loop)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		deadline := time.Now().Add(2 * time.Second)
		for !loop.IsRunning() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		<-done

		if loop.started.Load() != 1 || loop.stopped.Load() != 1 || loop.IsRunning() {
			t.Errorf("start=%d stop=%d running=%v, want 1/1/false", loop.started.Load(), loop.stopped.Load(), loop.IsRunning())
		}
	})

	t.Run("start failure", func(t *testing.T) {
		t.Parallel()
		loop := &mockLoop{startErr: errors.New("boom")}
		err := NewLoopService("prober", loop).Serve(context.Background())
		if !errors.Is(err, loop.startErr) {
			t.Errorf("Serve() = %v, want wrapped start error", err)
		}
		if loop.stopped.Load() != 0 {
			t.Error("Stop called after failed Start")
		}
	})
}

// mockFlusher counts flushes.
type mockFlusher struct {
	mu      sync.Mutex
	online  bool
	pending int
	flushes int
}

func (m *mockFlusher) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *mockFlusher) Pending(context.Context) []models.QueuedOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return make([]models.QueuedOperation, m.pending)
}

func (m *mockFlusher) FlushQueue(context.Context) (favorites.FlushResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	m.pending = 0
	return favorites.FlushResult{}, nil
}

func TestFlushService_Tick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		online  bool
		pending int
		want    int
	}{
		{name: "online with queue", online: true, pending: 2, want: 1},
		{name: "online empty queue", online: true, pending: 0, want: 0},
		{name: "offline with queue", online: false, pending: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &mockFlusher{online: tt.online, pending: tt.pending}
			NewFlushService(f, time.Minute).tick(context.Background())
			if f.flushes != tt.want {
				t.Errorf("flushes = %d, want %d", f.flushes, tt.want)
			}
		})
	}
}

func TestFlushService_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	f := &mockFlusher{online: true, pending: 1}
	svc := NewFlushService(f, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		n := f.flushes
		f.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if f.flushes != 1 {
		t.Errorf("flushes = %d, want 1 (queue emptied after first)", f.flushes)
	}
}
