// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package config loads Popfeast configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. struct defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, ./config.yaml, /etc/popfeast/config.yaml)
//  3. environment variables from an explicit allow-list (envTransformFunc)
//
// The favorites server reads Server, Database, API and Logging. The favsync
// agent reads Client, Breaker, LocalStore, Connectivity, Flush, Agent and
// Logging. Both binaries load the same struct so a single file can describe
// a local deployment of both.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	API          APIConfig          `koanf:"api"`
	Client       ClientConfig       `koanf:"client"`
	Breaker      BreakerConfig      `koanf:"breaker"`
	LocalStore   LocalStoreConfig   `koanf:"localstore"`
	Connectivity ConnectivityConfig `koanf:"connectivity"`
	Flush        FlushConfig        `koanf:"flush"`
	Agent        AgentConfig        `koanf:"agent"`
	Supervisor   SupervisorConfig   `koanf:"supervisor"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig is the favorites server listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig is the favorites server's DuckDB store.
type DatabaseConfig struct {
	// Path of the DuckDB file; ":memory:" keeps data in process.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// MockMode serves favorites from an in-process map instead of DuckDB.
	MockMode bool `koanf:"mock_mode"`
}

// APIConfig covers HTTP cross-cutting settings of the favorites server.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	CORSMaxAge        int           `koanf:"cors_max_age"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ClientConfig points the agent at the favorites server.
type ClientConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// BreakerConfig tunes the circuit breaker around remote calls.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// LocalStoreConfig is the agent's BadgerDB cache and queue store.
type LocalStoreConfig struct {
	Path         string        `koanf:"path"`
	InMemory     bool          `koanf:"in_memory"`
	SyncWrites   bool          `koanf:"sync_writes"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// ConnectivityConfig tunes the health prober.
type ConnectivityConfig struct {
	ProbeInterval time.Duration `koanf:"probe_interval"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
}

// FlushConfig paces queue flushes. RatePerSecond 0 sends without pacing.
type FlushConfig struct {
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	// Interval retries a non-empty queue while online; 0 disables it and
	// leaves flushing to connectivity restoration and explicit requests.
	Interval time.Duration `koanf:"interval"`
}

// AgentConfig is the agent's loopback API listener.
type AgentConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig feeds logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
