// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package localstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slotReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popfeast_localstore_reads_total",
		Help: "Slot reads by slot",
	}, []string{"slot"})

	slotWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popfeast_localstore_writes_total",
		Help: "Slot writes by slot",
	}, []string{"slot"})

	slotCorruptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popfeast_localstore_corrupt_total",
		Help: "Slots or entries discarded because they did not decode",
	}, []string{"slot"})

	slotWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "popfeast_localstore_write_latency_seconds",
		Help:    "Slot write latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
