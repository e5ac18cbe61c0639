// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tomtom215/popfeast/internal/connectivity"
	"github.com/tomtom215/popfeast/internal/localstore"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/metrics"
	"github.com/tomtom215/popfeast/internal/models"
	"github.com/tomtom215/popfeast/internal/remote"
	"golang.org/x/time/rate"
)

// ErrRejected wraps a server refusal of an online toggle.
var ErrRejected = errors.New("favorite change rejected by server")

// Config tunes a Store.
type Config struct {
	// FlushRatePerSecond paces queued sends; 0 disables pacing.
	FlushRatePerSecond float64

	// FlushBurst is the limiter burst. Values below 1 are treated as 1.
	FlushBurst int

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Store is the favorites reconciliation engine. Build one per process with
// New and release it with Close.
type Store struct {
	local   localstore.Store
	remote  remote.Service
	signal  connectivity.Signal
	limiter *rate.Limiter
	now     func() time.Time

	// mu serializes read-modify-write of the cache and queue slots.
	mu sync.Mutex
	// cacheGen increments on every cache write. A refresh that began
	// under an older generation does not overwrite a newer cache.
	cacheGen uint64
	// sending holds a channel per key with a send in flight; it is closed
	// when that send has been settled. Guarded by mu.
	sending map[models.Key]chan struct{}

	flushMu sync.Mutex

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bgMu     sync.Mutex
	bgClosed bool
	bg       sync.WaitGroup

	unsubscribe func()
}

// New builds a Store and subscribes FlushQueue to connectivity restoration.
func New(local localstore.Store, svc remote.Service, signal connectivity.Signal, cfg Config) *Store {
	s := &Store{
		local:   local,
		remote:  svc,
		signal:  signal,
		now:     cfg.Now,
		sending: make(map[models.Key]chan struct{}),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if cfg.FlushRatePerSecond > 0 {
		burst := cfg.FlushBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.FlushRatePerSecond), burst)
	}
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())

	s.unsubscribe = signal.OnConnectivityRestored(func() {
		s.spawn("flush", func(ctx context.Context) {
			if _, err := s.FlushQueue(ctx); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Flush after reconnect failed")
			}
		})
	})
	return s
}

// Online reports the connectivity signal's current reading.
func (s *Store) Online() bool {
	return s.signal.Online()
}

// Wait blocks until detached refreshes and flushes have finished.
func (s *Store) Wait() {
	s.bg.Wait()
}

// Close stops reacting to connectivity, cancels detached work and waits for
// it. It does not close the local store, which the caller owns.
func (s *Store) Close() {
	s.unsubscribe()

	s.bgMu.Lock()
	s.bgClosed = true
	s.bgMu.Unlock()

	s.bgCancel()
	s.bg.Wait()
}

// spawn runs fn on a detached goroutine tied to the Store lifetime. The
// caller never waits for it and its errors only reach the log.
func (s *Store) spawn(task string, fn func(ctx context.Context)) {
	s.bgMu.Lock()
	if s.bgClosed {
		s.bgMu.Unlock()
		return
	}
	s.bg.Add(1)
	s.bgMu.Unlock()

	go func() {
		defer s.bg.Done()
		ctx := logging.ContextWithNewCorrelationID(s.bgCtx)
		logging.Ctx(ctx).Debug().Str("task", task).Msg("Background favorites task started")
		fn(ctx)
	}()
}

// loadCache reads the cache, treating storage errors as an empty
// cache. Callers hold mu or accept a racy read.
func (s *Store) loadCache(ctx context.Context) []models.FavoriteEntry {
	cache, err := s.local.LoadCache(context.WithoutCancel(ctx))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Reading favorites cache failed, using empty cache")
		return []models.FavoriteEntry{}
	}
	return cache
}

func (s *Store) loadQueue(ctx context.Context) []models.QueuedOperation {
	queue, err := s.local.LoadQueue(context.WithoutCancel(ctx))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Reading favorites queue failed, using empty queue")
		return []models.QueuedOperation{}
	}
	return queue
}

// saveCacheLocked persists the cache and bumps the generation. mu must be held.
func (s *Store) saveCacheLocked(ctx context.Context, list []models.FavoriteEntry) error {
	s.cacheGen++
	return s.local.SaveCache(context.WithoutCancel(ctx), list)
}

// saveQueueLocked persists the queue. mu must be held.
func (s *Store) saveQueueLocked(ctx context.Context, queue []models.QueuedOperation) error {
	if err := s.local.SaveQueue(context.WithoutCancel(ctx), queue); err != nil {
		return err
	}
	metrics.SetQueueDepth(len(queue))
	return nil
}

// claim waits until no other send for key is in flight and marks key busy.
// The returned func releases it. Sends for one key reach the server in the
// order their claims were granted.
func (s *Store) claim(ctx context.Context, key models.Key) (func(), error) {
	for {
		s.mu.Lock()
		busy, ok := s.sending[key]
		if !ok {
			done := make(chan struct{})
			s.sending[key] = done
			s.mu.Unlock()
			return func() {
				s.mu.Lock()
				delete(s.sending, key)
				s.mu.Unlock()
				close(done)
			}, nil
		}
		s.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Store) newOp(key models.Key, op models.Op) models.QueuedOperation {
	return models.QueuedOperation{
		ID:       uuid.NewString(),
		ItemID:   key.ItemID,
		ItemType: key.ItemType,
		Op:       op,
		QueuedAt: s.now().UTC(),
	}
}

func (s *Store) send(ctx context.Context, op models.Op, key models.Key) error {
	if op == models.OpRemove {
		return s.remote.Remove(ctx, key)
	}
	return s.remote.Add(ctx, key)
}
