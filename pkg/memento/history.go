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
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHistoryName labels histories created without WithName.
const DefaultHistoryName = "default"

// Restore strategies, used as metric attributes.
const (
	strategyIndex    = "index"
	strategySnapshot = "snapshot"
)

// -----------------------------------------------------------------------------
// HistoryManager
// -----------------------------------------------------------------------------

// HistoryManager owns the chronological sequence of snapshots taken from one
// Originator.
//
// Description:
//
//	Save captures the Originator's current value and appends it. The two
//	restore operations locate an earlier entry, by position or by identity,
//	and make the Originator adopt it. History is append-only: restoring
//	never removes entries, and Count never decreases.
//
//	Every entry was produced through this manager's Save. Entries are never
//	shared with another manager, even one driving the same Originator.
//
// Thread Safety: Safe for concurrent use. Capture and append happen under one
// lock, so history order is creation order. Observers run after the lock is
// released and may call back into the manager.
type HistoryManager[T any] struct {
	mu      sync.RWMutex
	history []*Snapshot[T]
	index   map[uuid.UUID]int // snapshot ID -> position in history

	originator *Originator[T]
	name       string
	tracer     *Tracer
	logger     *slog.Logger
}

// HistoryOption configures a HistoryManager.
type HistoryOption func(*historyOptions)

type historyOptions struct {
	name   string
	tracer *Tracer
	logger *slog.Logger
}

// WithName labels the history in metrics, traces and logs.
func WithName(name string) HistoryOption {
	return func(o *historyOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithTracer sets the tracer used for save and restore spans.
func WithTracer(tracer *Tracer) HistoryOption {
	return func(o *historyOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithLogger sets the structured logger used for rejected restores.
func WithLogger(logger *slog.Logger) HistoryOption {
	return func(o *historyOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewHistoryManager creates an empty history bound to originator.
//
// Inputs:
//   - originator: The originator to save from and restore into. Must not be
//     nil; a nil originator panics.
//   - opts: Optional configuration.
//
// Outputs:
//   - *HistoryManager[T]: Ready-to-use manager with Count() == 0.
func NewHistoryManager[T any](originator *Originator[T], opts ...HistoryOption) *HistoryManager[T] {
	if originator == nil {
		panic("memento: NewHistoryManager called with nil originator")
	}

	options := historyOptions{name: DefaultHistoryName}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.tracer == nil {
		options.tracer = NewTracer(options.logger, true)
	}

	return &HistoryManager[T]{
		index:      make(map[uuid.UUID]int),
		originator: originator,
		name:       options.name,
		tracer:     options.tracer,
		logger:     options.logger.With(slog.String("history", options.name)),
	}
}

// Save captures the originator's current value and appends it.
//
// Equivalent to SaveContext(context.Background()).
func (h *HistoryManager[T]) Save() *Snapshot[T] {
	return h.SaveContext(context.Background())
}

// SaveContext captures the originator's current value and appends it.
//
// Description:
//
//	The new entry is appended before observers are notified, so observers
//	already see it in Count and Snapshots. An observer panic propagates to
//	the caller after the entry has been appended.
//
// Inputs:
//   - ctx: Carries trace context only; Save never blocks or fails.
//
// Outputs:
//   - *Snapshot[T]: The appended snapshot, for a later RestoreBySnapshot.
func (h *HistoryManager[T]) SaveContext(ctx context.Context) *Snapshot[T] {
	ctx, span := h.tracer.StartSave(ctx, h.name, h.Count())

	h.mu.Lock()
	snapshot := h.originator.capture()
	h.index[snapshot.ID()] = len(h.history)
	h.history = append(h.history, snapshot)
	count := len(h.history)
	h.mu.Unlock()

	recordSave(ctx, h.name)
	h.tracer.EndSave(span, snapshot.Info(), count)

	h.originator.announce(transitionCreated, snapshot)
	return snapshot
}

// RestoreByIndex makes the originator adopt the entry at index.
//
// Equivalent to RestoreByIndexContext(context.Background(), index).
func (h *HistoryManager[T]) RestoreByIndex(index int) error {
	return h.RestoreByIndexContext(context.Background(), index)
}

// RestoreByIndexContext makes the originator adopt the entry at index.
//
// Inputs:
//   - ctx: Carries trace context only.
//   - index: Position in chronological save order, starting at 0.
//
// Outputs:
//   - error: *IndexOutOfRangeError if index is outside [0, Count()). The
//     originator is unchanged in that case.
func (h *HistoryManager[T]) RestoreByIndexContext(ctx context.Context, index int) error {
	h.mu.RLock()
	length := len(h.history)
	var snapshot *Snapshot[T]
	if index >= 0 && index < length {
		snapshot = h.history[index]
	}
	h.mu.RUnlock()

	ctx, span := h.tracer.StartRestoreByIndex(ctx, h.name, index, length)

	if snapshot == nil {
		err := &IndexOutOfRangeError{Index: index, Length: length}
		h.reject(ctx, span, strategyIndex, err)
		return err
	}

	h.adopt(ctx, span, strategyIndex, snapshot)
	return nil
}

// RestoreBySnapshot makes the originator adopt a previously saved snapshot.
//
// Equivalent to RestoreBySnapshotContext(context.Background(), snapshot).
func (h *HistoryManager[T]) RestoreBySnapshot(snapshot *Snapshot[T]) error {
	return h.RestoreBySnapshotContext(context.Background(), snapshot)
}

// RestoreBySnapshotContext makes the originator adopt a previously saved
// snapshot.
//
// Description:
//
//	Looks the snapshot up by identity, not by value. A snapshot with an
//	equal value that was not returned by this manager's Save is not found.
//
// Inputs:
//   - ctx: Carries trace context only.
//   - snapshot: A snapshot returned by Save on this manager.
//
// Outputs:
//   - error: *SnapshotNotFoundError if the snapshot is nil or not part of
//     this history. The originator is unchanged in that case.
func (h *HistoryManager[T]) RestoreBySnapshotContext(ctx context.Context, snapshot *Snapshot[T]) error {
	var (
		id      uuid.UUID
		display = snapshot.String()
	)
	if snapshot != nil {
		id = snapshot.ID()
	}

	h.mu.RLock()
	length := len(h.history)
	var match *Snapshot[T]
	if pos, ok := h.index[id]; ok && snapshot != nil {
		match = h.history[pos]
	}
	h.mu.RUnlock()

	ctx, span := h.tracer.StartRestoreBySnapshot(ctx, h.name, display, length)

	if match == nil {
		err := &SnapshotNotFoundError{ID: id, Display: display}
		h.reject(ctx, span, strategySnapshot, err)
		return err
	}

	h.adopt(ctx, span, strategySnapshot, match)
	return nil
}

// Count returns the number of saved snapshots.
func (h *HistoryManager[T]) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.history)
}

// At returns the snapshot at index without restoring it.
//
// Outputs:
//   - *Snapshot[T]: The entry at index.
//   - error: *IndexOutOfRangeError if index is outside [0, Count()).
func (h *HistoryManager[T]) At(index int) (*Snapshot[T], error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if index < 0 || index >= len(h.history) {
		return nil, &IndexOutOfRangeError{Index: index, Length: len(h.history)}
	}
	return h.history[index], nil
}

// Latest returns the most recently saved snapshot.
//
// Outputs:
//   - *Snapshot[T]: The newest entry.
//   - bool: False if nothing was saved yet.
func (h *HistoryManager[T]) Latest() (*Snapshot[T], bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.history) == 0 {
		return nil, false
	}
	return h.history[len(h.history)-1], true
}

// Snapshots returns all entries from oldest to newest.
// The returned slice is a copy; modifications don't affect the history.
func (h *HistoryManager[T]) Snapshots() []*Snapshot[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]*Snapshot[T], len(h.history))
	copy(result, h.history)
	return result
}

// Info returns a read-only description of every entry, oldest first.
func (h *HistoryManager[T]) Info() []SnapshotInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]SnapshotInfo, len(h.history))
	for i, snapshot := range h.history {
		result[i] = snapshot.Info()
	}
	return result
}

// Name returns the label given by WithName.
func (h *HistoryManager[T]) Name() string {
	return h.name
}

// Originator returns the originator this history is bound to.
func (h *HistoryManager[T]) Originator() *Originator[T] {
	return h.originator
}

// adopt finishes a successful restore.
func (h *HistoryManager[T]) adopt(ctx context.Context, span trace.Span, strategy string, snapshot *Snapshot[T]) {
	recordRestore(ctx, h.name, strategy, nil)
	h.tracer.EndRestore(span, snapshot.Info(), nil)

	h.originator.AdoptSnapshot(snapshot)
}

// reject finishes a failed restore. Nothing is mutated.
func (h *HistoryManager[T]) reject(ctx context.Context, span trace.Span, strategy string, err error) {
	recordRestore(ctx, h.name, strategy, err)
	h.tracer.EndRestore(span, SnapshotInfo{}, err)

	LoggerWithTrace(ctx, h.logger).Debug("restore rejected",
		slog.String("strategy", strategy),
		slog.String("error", err.Error()),
	)
}
