// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/popfeast/internal/config"
	"github.com/tomtom215/popfeast/internal/logging"
)

// Pinger is the part of the remote service the prober needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober is a Signal fed by periodic health checks.
//
// It starts offline, so the first successful probe after Start counts as a
// restoration. That lets a queue left behind by a previous process flush as
// soon as the server answers.
type Prober struct {
	*state

	pinger   Pinger
	interval time.Duration
	timeout  time.Duration

	loopMu   sync.Mutex
	cancel   context.CancelFunc
	running  bool
	stopping bool
	stopDone chan struct{}
}

// NewProber builds a stopped Prober.
func NewProber(p Pinger, cfg *config.ConnectivityConfig) *Prober {
	return &Prober{
		state:    newState(false),
		pinger:   p,
		interval: cfg.ProbeInterval,
		timeout:  cfg.ProbeTimeout,
	}
}

// Start probes once immediately and then every interval until Stop or ctx
// is canceled.
func (p *Prober) Start(ctx context.Context) error {
	p.loopMu.Lock()
	for p.stopping {
		done := p.stopDone
		p.loopMu.Unlock()
		<-done
		p.loopMu.Lock()
	}
	if p.running {
		p.loopMu.Unlock()
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.stopDone = make(chan struct{})
	done := p.stopDone
	p.loopMu.Unlock()

	go p.run(loopCtx, done)

	logging.Info().Dur("interval", p.interval).Msg("Connectivity prober started")
	return nil
}

// Stop halts probing and waits for the loop to exit.
func (p *Prober) Stop() {
	p.loopMu.Lock()
	if !p.running || p.stopping {
		p.loopMu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	p.stopping = true
	done := p.stopDone
	p.loopMu.Unlock()

	<-done

	p.loopMu.Lock()
	p.stopping = false
	p.loopMu.Unlock()
	logging.Info().Msg("Connectivity prober stopped")
}

// IsRunning reports whether the loop is active.
func (p *Prober) IsRunning() bool {
	p.loopMu.Lock()
	defer p.loopMu.Unlock()
	return p.running
}

func (p *Prober) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.ProbeNow(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProbeNow(ctx)
		}
	}
}

// ProbeNow runs one health check, updates the state, and returns it. It is
// also the explicit retry hook for callers that know the network changed.
func (p *Prober) ProbeNow(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.pinger.Ping(probeCtx)
	cancel()

	if ctx.Err() != nil {
		// Shutting down; keep the last reading.
		return p.Online()
	}

	online := err == nil
	was := p.Online()
	if p.set(online) {
		logging.Info().Msg("Favorites server reachable again")
	} else if was && !online {
		logging.Warn().Err(err).Msg("Favorites server unreachable, switching to offline mode")
	}
	return online
}
