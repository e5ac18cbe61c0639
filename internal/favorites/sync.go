// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/metrics"
	"github.com/tomtom215/popfeast/internal/models"
	"github.com/tomtom215/popfeast/internal/remote"
)

// FlushResult summarizes one FlushQueue pass.
type FlushResult struct {
	// Attempted counts ops sent to the server.
	Attempted int `json:"attempted"`
	// Succeeded counts ops the server accepted.
	Succeeded int `json:"succeeded"`
	// Failed counts ops that stay queued after a send error.
	Failed int `json:"failed"`
	// Compacted counts ops dropped because a later op targeted the same item.
	Compacted int `json:"compacted"`
	// Remaining is the queue length after the pass.
	Remaining int `json:"remaining"`
	// Skipped is set when another flush was already running.
	Skipped bool `json:"skipped,omitempty"`
}

// GetFavorites returns the current favorites list. It never fails: when the
// server cannot answer, the cached list (possibly empty) is returned.
//
// With preferCache and a non-empty cache the cache is returned immediately
// and a refresh runs in the background.
func (s *Store) GetFavorites(ctx context.Context, preferCache bool) []models.FavoriteEntry {
	if preferCache {
		cache := s.loadCache(ctx)
		if len(cache) > 0 {
			metrics.RecordListSource("cache")
			s.refreshInBackground("prefer_cache")
			return cache
		}
	}
	return s.fetch(ctx)
}

// GetFavoritesByType is GetFavorites narrowed to one item type.
func (s *Store) GetFavoritesByType(ctx context.Context, preferCache bool, t models.ItemType) []models.FavoriteEntry {
	return models.FilterByType(s.GetFavorites(ctx, preferCache), t)
}

// View returns the list a user should see: the cache with pending queued
// operations applied.
func (s *Store) View(ctx context.Context) []models.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Overlay(s.loadCache(ctx), s.loadQueue(ctx))
}

// Pending returns the queued operations in enqueue order.
func (s *Store) Pending(ctx context.Context) []models.QueuedOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadQueue(ctx)
}

// IsFavorite reports whether key is in the presented view (cache-preferring
// list with pending operations applied).
func (s *Store) IsFavorite(ctx context.Context, key models.Key) bool {
	list := s.GetFavorites(ctx, true)
	s.mu.Lock()
	queue := s.loadQueue(ctx)
	s.mu.Unlock()
	return models.ContainsKey(models.Overlay(list, queue), key)
}

// fetch asks the server for the list, storing it as the new cache on
// success and falling back to the cache on failure.
func (s *Store) fetch(ctx context.Context) []models.FavoriteEntry {
	gen := s.generation()
	list, err := s.remote.List(ctx)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Favorites list unavailable, serving cache")
		metrics.RecordListSource("fallback")
		return s.loadCache(ctx)
	}
	s.storeAuthoritative(ctx, list, gen)
	metrics.RecordListSource("remote")
	return list
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacheGen
}

// storeAuthoritative replaces the cache with a server list fetched while the
// cache was at generation gen. It reports false when the cache changed in
// the meantime, in which case the list is not written.
func (s *Store) storeAuthoritative(ctx context.Context, list []models.FavoriteEntry, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cacheGen != gen {
		logging.Ctx(ctx).Debug().
			Uint64("fetched_at", gen).
			Uint64("current", s.cacheGen).
			Msg("Discarding stale favorites list")
		return false
	}
	if err := s.saveCacheLocked(ctx, list); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Saving favorites cache failed")
	}
	return true
}

// refreshInBackground replaces the cache with a fresh server list without
// blocking the caller.
func (s *Store) refreshInBackground(reason string) {
	s.spawn("refresh:"+reason, func(ctx context.Context) {
		gen := s.generation()
		list, err := s.remote.List(ctx)
		if err != nil {
			metrics.RecordRefresh("failure")
			logging.Ctx(ctx).Debug().Err(err).Str("reason", reason).Msg("Background favorites refresh failed")
			return
		}
		if !s.storeAuthoritative(ctx, list, gen) {
			metrics.RecordRefresh("stale")
			return
		}
		metrics.RecordRefresh("success")
	})
}

// ToggleFavorite flips the favorite state of item.
//
// Online, the server is asked to add or remove the item and, on success,
// the cache is updated and a refresh is started. A server rejection is
// returned wrapped in ErrRejected and changes nothing locally. When offline,
// or when the server cannot be reached, the flip is queued and the result
// status is "queued"; the cache is left as it was.
func (s *Store) ToggleFavorite(ctx context.Context, item models.ToggleItem) (models.ToggleResult, error) {
	key := item.Key()
	if err := key.Validate(); err != nil {
		metrics.RecordToggle("invalid")
		return models.ToggleResult{}, err
	}
	log := logging.Ctx(ctx).With().Str("item", key.String()).Logger()

	if !s.signal.Online() {
		return s.enqueue(ctx, key)
	}

	// A flush may be sending an older op for this item; ours must land after it.
	release, err := s.claim(ctx, key)
	if err != nil {
		metrics.RecordToggle("error")
		return models.ToggleResult{}, err
	}
	defer release()

	current := s.GetFavorites(ctx, false)
	op := models.OpFor(models.ContainsKey(current, key))

	if err := s.send(ctx, op, key); err != nil {
		if remote.IsRejection(err) {
			metrics.RecordToggle("rejected")
			log.Warn().Err(err).
				Str("op", string(op)).
				Int("status_code", remote.StatusCode(err)).
				Msg("Favorite change rejected")
			return models.ToggleResult{}, fmt.Errorf("%w: %w", ErrRejected, err)
		}
		log.Info().Err(err).Str("op", string(op)).Msg("Favorites server unreachable, queueing change")
		return s.enqueue(ctx, key)
	}

	s.applyConfirmed(ctx, key, op)
	s.refreshInBackground("toggle")

	status := op.Status()
	metrics.RecordToggle(string(status))
	log.Debug().Str("status", string(status)).Msg("Favorite toggled")
	return models.ToggleResult{Status: status}, nil
}

// enqueue records a flip of key for a later flush. Membership is judged on
// the presented view: when an op for key is already queued the new op is its
// inverse and supersedes it, so two offline toggles of the same item cancel
// out. Otherwise the cache decides.
func (s *Store) enqueue(ctx context.Context, key models.Key) (models.ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueue(ctx)
	next := make([]models.QueuedOperation, 0, len(queue)+1)
	var (
		prev       models.Op
		superseded bool
	)
	for _, q := range queue {
		if q.Key() == key {
			prev, superseded = q.Op, true
			continue
		}
		next = append(next, q)
	}

	kind := models.OpFor(models.ContainsKey(s.loadCache(ctx), key))
	if superseded {
		kind = prev.Inverse()
	}
	op := s.newOp(key, kind)
	next = append(next, op)

	if err := s.saveQueueLocked(ctx, next); err != nil {
		metrics.RecordToggle("error")
		return models.ToggleResult{}, fmt.Errorf("queue favorite change: %w", err)
	}

	metrics.RecordToggle(string(models.StatusQueued))
	logging.Ctx(ctx).Info().
		Str("item", key.String()).
		Str("op", string(op.Op)).
		Bool("superseded", superseded).
		Int("queue_depth", len(next)).
		Msg("Favorite change queued")
	return models.ToggleResult{Status: models.StatusQueued}, nil
}

// applyConfirmed patches the cache with an op the server accepted and drops
// queued ops for the same item, which it supersedes.
func (s *Store) applyConfirmed(ctx context.Context, key models.Key, op models.Op) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch(s.loadCache(ctx), key, op, s.now().UTC())
	if err := s.saveCacheLocked(ctx, next); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Saving favorites cache failed")
	}

	queue := s.loadQueue(ctx)
	kept := make([]models.QueuedOperation, 0, len(queue))
	for _, q := range queue {
		if q.Key() != key {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(queue) {
		return
	}
	if err := s.saveQueueLocked(ctx, kept); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Saving favorites queue failed")
	}
}

// FlushQueue sends queued operations to the server in order. Each op the
// server accepts leaves the queue and patches the cache in the same step;
// a refused op stays queued with its attempt count raised and the pass goes
// on. A transport failure also keeps the op but ends the pass: the ops after
// it wait for the next flush, triggered by connectivity restoration or the
// periodic flush loop. When anything was accepted a background refresh is
// started.
//
// Only one flush runs at a time; a call made while one is running returns
// immediately with Skipped set. An online ToggleFavorite for an item whose op
// is being sent waits for that send to settle.
func (s *Store) FlushQueue(ctx context.Context) (FlushResult, error) {
	if !s.flushMu.TryLock() {
		return FlushResult{Skipped: true}, nil
	}
	defer s.flushMu.Unlock()

	start := time.Now()
	log := logging.Ctx(ctx)

	batch, compacted, err := s.compactQueue(ctx)
	if err != nil {
		return FlushResult{}, err
	}
	result := FlushResult{Compacted: compacted}
	if len(batch) == 0 {
		return result, nil
	}

	for _, op := range batch {
		if ctx.Err() != nil {
			break
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}
		}
		outcome, err := s.flushOne(ctx, op)
		if outcome == notSent {
			if ctx.Err() != nil {
				break
			}
			continue
		}

		result.Attempted++
		if outcome == accepted {
			result.Succeeded++
			continue
		}

		result.Failed++
		log.Warn().Err(err).
			Str("item", op.Key().String()).
			Str("op", string(op.Op)).
			Int("attempts", op.Attempts+1).
			Int("status_code", remote.StatusCode(err)).
			Msg("Queued favorite change failed")
		if !remote.IsRejection(err) {
			break
		}
	}

	result.Remaining = len(s.Pending(ctx))
	if result.Succeeded > 0 {
		s.refreshInBackground("flush")
	}

	duration := time.Since(start)
	metrics.RecordFlush(result.Succeeded, result.Failed, duration)
	log.Info().
		Int("attempted", result.Attempted).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("remaining", result.Remaining).
		Dur("duration", duration).
		Msg("Favorites queue flushed")
	return result, nil
}

// sendOutcome is what became of one queued op during a flush.
type sendOutcome int

const (
	notSent sendOutcome = iota
	accepted
	failed
)

// flushOne sends op while holding its item's claim and settles the outcome
// before releasing it. notSent means op left the queue during the pass or
// ctx ended while waiting for the claim.
func (s *Store) flushOne(ctx context.Context, op models.QueuedOperation) (sendOutcome, error) {
	release, err := s.claim(ctx, op.Key())
	if err != nil {
		return notSent, err
	}
	defer release()

	if !s.stillQueued(ctx, op.ID) {
		return notSent, nil
	}
	err = s.send(ctx, op.Op, op.Key())
	s.settle(ctx, op, err)
	if err != nil {
		return failed, err
	}
	return accepted, nil
}

// compactQueue reduces the stored queue to the latest op per item, assigns
// IDs to ops that lack one, and persists the result before anything is sent.
func (s *Store) compactQueue(ctx context.Context) ([]models.QueuedOperation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := s.local.LoadQueue(context.WithoutCancel(ctx))
	if err != nil {
		return nil, 0, fmt.Errorf("load favorites queue: %w", err)
	}
	batch := models.Compact(queue)
	dirty := len(batch) != len(queue)
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = s.newOp(batch[i].Key(), batch[i].Op).ID
			dirty = true
		}
	}
	if dirty {
		if err := s.saveQueueLocked(ctx, batch); err != nil {
			return nil, 0, fmt.Errorf("save compacted favorites queue: %w", err)
		}
	}
	return batch, len(queue) - len(batch), nil
}

// stillQueued reports whether op id is still in the stored queue. A toggle
// made during the flush may have superseded it.
func (s *Store) stillQueued(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.loadQueue(ctx) {
		if q.ID == id {
			return true
		}
	}
	return false
}

// settle records the outcome of sending op. An accepted op leaves the queue
// and patches the cache under one lock, so View never misses it; a failed
// one records the attempt. Other queued ops are untouched.
func (s *Store) settle(ctx context.Context, op models.QueuedOperation, sendErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueue(ctx)
	next := make([]models.QueuedOperation, 0, len(queue))
	for _, q := range queue {
		if q.ID != op.ID {
			next = append(next, q)
			continue
		}
		if sendErr != nil {
			q.Attempts++
			q.LastError = sendErr.Error()
			next = append(next, q)
		}
	}

	if sendErr == nil {
		cache := patch(s.loadCache(ctx), op.Key(), op.Op, s.now().UTC())
		if err := s.saveCacheLocked(ctx, cache); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Saving favorites cache failed")
		}
	}
	if err := s.saveQueueLocked(ctx, next); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Saving favorites queue failed")
	}
}

// patch applies one accepted op to list: a remove drops the entry, an add
// appends it stamped with now unless already present.
func patch(list []models.FavoriteEntry, key models.Key, op models.Op, now time.Time) []models.FavoriteEntry {
	next := make([]models.FavoriteEntry, 0, len(list)+1)
	for _, e := range list {
		if op == models.OpRemove && e.Key() == key {
			continue
		}
		next = append(next, e)
	}
	if op == models.OpAdd && !models.ContainsKey(next, key) {
		next = append(next, models.FavoriteEntry{ItemID: key.ItemID, ItemType: key.ItemType, CreatedAt: now})
	}
	return next
}
