// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"errors"
	"time"
)

// Config controls how the BadgerDB store is opened.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM; state is lost on Close.
	InMemory bool

	// SyncWrites fsyncs every save. The slots are tiny, so the cost is low.
	SyncWrites bool

	// ValueLogFileSize caps each value log file. BadgerDB's 1GB default is
	// far larger than two favorites slots will ever need.
	ValueLogFileSize int64

	// MemTableSize is the BadgerDB memtable size.
	MemTableSize int64

	// CloseTimeout bounds how long Close waits for BadgerDB.
	CloseTimeout time.Duration
}

// DefaultConfig returns settings suited to a single agent process.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/favsync",
		SyncWrites:       true,
		ValueLogFileSize: 16 << 20,
		MemTableSize:     8 << 20,
		CloseTimeout:     5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("localstore path is required unless in-memory mode is enabled")
	}
	if c.ValueLogFileSize < 0 || c.MemTableSize < 0 {
		return errors.New("localstore sizes must not be negative")
	}
	return nil
}
