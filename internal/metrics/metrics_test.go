// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// histogramCount reads the sample count of a plain histogram.
func histogramCount(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := FavoritesFlushDuration.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("add"))
	RecordDBQuery("add", 2*time.Millisecond, nil)
	RecordDBQuery("add", 3*time.Millisecond, errors.New("constraint"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("add")) - before; got != 1 {
		t.Errorf("error counter moved by %v, want 1", got)
	}
}

func TestRecordFlush(t *testing.T) {
	okBefore := testutil.ToFloat64(FavoritesFlushOps.WithLabelValues("success"))
	failBefore := testutil.ToFloat64(FavoritesFlushOps.WithLabelValues("failure"))
	countBefore := histogramCount(t)

	RecordFlush(3, 1, 20*time.Millisecond)

	if got := testutil.ToFloat64(FavoritesFlushOps.WithLabelValues("success")) - okBefore; got != 3 {
		t.Errorf("success moved by %v, want 3", got)
	}
	if got := testutil.ToFloat64(FavoritesFlushOps.WithLabelValues("failure")) - failBefore; got != 1 {
		t.Errorf("failure moved by %v, want 1", got)
	}
	if got := histogramCount(t) - countBefore; got != 1 {
		t.Errorf("duration samples moved by %d, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	SetQueueDepth(4)
	if got := testutil.ToFloat64(FavoritesQueueDepth); got != 4 {
		t.Errorf("queue depth = %v, want 4", got)
	}

	restoredBefore := testutil.ToFloat64(ConnectivityRestored)
	SetOnline(true, true)
	if testutil.ToFloat64(ConnectivityOnline) != 1 {
		t.Error("online gauge should be 1")
	}
	SetOnline(false, false)
	if testutil.ToFloat64(ConnectivityOnline) != 0 {
		t.Error("online gauge should be 0")
	}
	if got := testutil.ToFloat64(ConnectivityRestored) - restoredBefore; got != 1 {
		t.Errorf("restored moved by %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests moved by %v, want 1", got)
	}
}
