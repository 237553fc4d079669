// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memento

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName scopes every memento instrument.
const meterName = "aleutian.memento"

// instruments holds the metric instruments created from one MeterProvider.
type instruments struct {
	provider metric.MeterProvider

	snapshotsCreated metric.Int64Counter
	snapshotsAdopted metric.Int64Counter
	savesTotal       metric.Int64Counter
	restoresTotal    metric.Int64Counter
}

var (
	// current is rebuilt whenever the global MeterProvider changes, so a
	// provider installed after the first recording still receives data.
	current       atomic.Pointer[instruments]
	instrumentsMu sync.Mutex
)

// metricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Uses atomic operations for safe concurrent access.
var metricsEnabled atomic.Bool

func init() {
	metricsEnabled.Store(true)
}

// SetMetricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Safe for concurrent use.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

// loadInstruments returns the instruments bound to the current global
// MeterProvider, creating them on first use of that provider.
func loadInstruments() (*instruments, error) {
	provider := otel.GetMeterProvider()
	if inst := current.Load(); inst != nil && inst.provider == provider {
		return inst, nil
	}

	instrumentsMu.Lock()
	defer instrumentsMu.Unlock()

	if inst := current.Load(); inst != nil && inst.provider == provider {
		return inst, nil
	}
	inst, err := newInstruments(provider)
	if err != nil {
		return nil, err
	}
	current.Store(inst)
	return inst, nil
}

// newInstruments creates every instrument on provider.
func newInstruments(provider metric.MeterProvider) (*instruments, error) {
	meter := provider.Meter(meterName)
	inst := &instruments{provider: provider}

	var err error
	inst.snapshotsCreated, err = meter.Int64Counter(
		"memento.snapshots.created",
		metric.WithDescription("Total number of snapshots created by originators"),
	)
	if err != nil {
		return nil, err
	}

	inst.snapshotsAdopted, err = meter.Int64Counter(
		"memento.snapshots.adopted",
		metric.WithDescription("Total number of snapshots adopted by originators"),
	)
	if err != nil {
		return nil, err
	}

	inst.savesTotal, err = meter.Int64Counter(
		"memento.saves",
		metric.WithDescription("Total number of history save operations"),
	)
	if err != nil {
		return nil, err
	}

	inst.restoresTotal, err = meter.Int64Counter(
		"memento.restores",
		metric.WithDescription("Total number of history restore operations"),
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// recordTransition records a snapshot creation or adoption.
func recordTransition(ctx context.Context, kind transition) {
	if !metricsEnabled.Load() {
		return
	}
	inst, err := loadInstruments()
	if err != nil {
		return
	}

	switch kind {
	case transitionCreated:
		inst.snapshotsCreated.Add(ctx, 1)
	case transitionAdopted:
		inst.snapshotsAdopted.Add(ctx, 1)
	}
}

// recordSave records a save. History length is exported by HistoryCollector.
//
// # Inputs
//
//   - ctx: Context for metric recording.
//   - history: Name of the history manager.
func recordSave(ctx context.Context, history string) {
	if !metricsEnabled.Load() {
		return
	}
	inst, err := loadInstruments()
	if err != nil {
		return
	}

	inst.savesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("history", history)))
}

// recordRestore records a restore attempt.
//
// # Inputs
//
//   - ctx: Context for metric recording.
//   - history: Name of the history manager.
//   - strategy: "index" or "snapshot".
//   - restoreErr: Error if the restore was rejected (nil on success).
func recordRestore(ctx context.Context, history, strategy string, restoreErr error) {
	if !metricsEnabled.Load() {
		return
	}
	inst, err := loadInstruments()
	if err != nil {
		return
	}

	inst.restoresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("history", history),
		attribute.String("strategy", strategy),
		attribute.String("status", restoreStatus(restoreErr)),
	))
}

// restoreStatus normalizes a restore outcome to a bounded set.
func restoreStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrSnapshotNotFound):
		return "snapshot_not_found"
	default:
		return "error"
	}
}
