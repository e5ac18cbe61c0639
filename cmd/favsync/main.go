// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/popfeast/internal/agent"
	"github.com/tomtom215/popfeast/internal/config"
	"github.com/tomtom215/popfeast/internal/connectivity"
	"github.com/tomtom215/popfeast/internal/favorites"
	"github.com/tomtom215/popfeast/internal/localstore"
	"github.com/tomtom215/popfeast/internal/logging"
	"github.com/tomtom215/popfeast/internal/middleware"
	"github.com/tomtom215/popfeast/internal/remote"
	"github.com/tomtom215/popfeast/internal/supervisor"
	"github.com/tomtom215/popfeast/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("server", cfg.Client.BaseURL).
		Str("store_path", cfg.LocalStore.Path).
		Bool("store_in_memory", cfg.LocalStore.InMemory).
		Msg("Starting favsync agent")

	local, err := localstore.Open(storeConfig(&cfg.LocalStore))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open local store")
	}
	defer func() {
		if err := local.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing local store")
		}
	}()

	var svc remote.Service = remote.NewHTTPClient(&cfg.Client)
	if cfg.Breaker.Enabled {
		svc = remote.NewBreakerClient(svc, &cfg.Breaker)
		logging.Info().Msg("Circuit breaker enabled for favorites server calls")
	}

	prober := connectivity.NewProber(svc, &cfg.Connectivity)
	store := favorites.New(local, svc, prober, favorites.Config{
		FlushRatePerSecond: cfg.Flush.RatePerSecond,
		FlushBurst:         cfg.Flush.Burst,
	})
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSyncService(services.NewLoopService("connectivity-prober", prober))
	if cfg.Flush.Interval > 0 {
		tree.AddSyncService(services.NewFlushService(store, cfg.Flush.Interval))
		logging.Info().Dur("interval", cfg.Flush.Interval).Msg("Periodic favorites flush enabled")
	}

	mw := middleware.NewChi(middleware.DefaultChiConfig())
	server := &http.Server{
		Addr:              cfg.AgentAddr(),
		Handler:           agent.NewRouter(agent.NewHandler(store), mw),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService("favsync-http", server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Agent API service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	pending := len(store.Pending(context.Background()))
	logging.Info().Int("queued_ops", pending).Msg("favsync agent stopped")
}

func storeConfig(cfg *config.LocalStoreConfig) *localstore.Config {
	sc := localstore.DefaultConfig()
	sc.Path = cfg.Path
	sc.InMemory = cfg.InMemory
	sc.SyncWrites = cfg.SyncWrites
	if cfg.CloseTimeout > 0 {
		sc.CloseTimeout = cfg.CloseTimeout
	}
	return &sc
}
