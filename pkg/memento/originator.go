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
	"sync"
)

// transition names the two snapshot-mediated state changes.
type transition string

const (
	transitionCreated transition = "created"
	transitionAdopted transition = "adopted"
)

// -----------------------------------------------------------------------------
// Originator
// -----------------------------------------------------------------------------

// Originator owns the current value of type T.
//
// Description:
//
//	The Originator starts Uninitialized, holding the zero value of T.
//	SetState moves it to Initialized without producing a snapshot or a
//	notification. CreateSnapshot and AdoptSnapshot convert between the live
//	value and snapshots, write one line to the LineLogger and notify every
//	observer.
//
//	The Originator has no knowledge of history; any number of
//	HistoryManagers may drive it.
//
// Thread Safety: Safe for concurrent use. Observers and the LineLogger run
// without any Originator lock held.
type Originator[T any] struct {
	mu          sync.RWMutex
	state       T
	initialized bool

	observers observerList[T]
	lines     LineLogger
}

// OriginatorOption configures an Originator.
type OriginatorOption func(*originatorOptions)

type originatorOptions struct {
	lines LineLogger
}

// WithLineLogger sets the LineLogger that receives one line per transition.
// A nil logger is ignored.
func WithLineLogger(lines LineLogger) OriginatorOption {
	return func(o *originatorOptions) {
		if lines != nil {
			o.lines = lines
		}
	}
}

// NewOriginator creates an Uninitialized originator.
//
// Inputs:
//   - opts: Optional configuration. Without WithLineLogger, lines go to
//     slog.Default() at Info level.
//
// Outputs:
//   - *Originator[T]: Ready-to-use originator holding the zero value of T.
func NewOriginator[T any](opts ...OriginatorOption) *Originator[T] {
	options := originatorOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.lines == nil {
		options.lines = NewSlogLineLogger(nil)
	}
	return &Originator[T]{lines: options.lines}
}

// SetState replaces the current value.
//
// This is the bootstrap path: it does not create a snapshot, does not
// notify observers and does not log.
func (o *Originator[T]) SetState(state T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = state
	o.initialized = true
}

// State returns the current value.
func (o *Originator[T]) State() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Initialized reports whether a value was ever set or adopted.
//
// CreateSnapshot works either way; callers that want to refuse snapshots
// of the zero value can check this first.
func (o *Originator[T]) Initialized() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.initialized
}

// CreateSnapshot captures the current value.
//
// Description:
//
//	Wraps the current value (the zero value of T when Uninitialized) in a new
//	snapshot, logs it, notifies every observer in registration order and
//	returns it. An observer panic propagates to the caller.
//
// Outputs:
//   - *Snapshot[T]: The new snapshot. Never nil.
func (o *Originator[T]) CreateSnapshot() *Snapshot[T] {
	snapshot := o.capture()
	o.announce(transitionCreated, snapshot)
	return snapshot
}

// AdoptSnapshot makes the snapshot's value the current value.
//
// Description:
//
//	Sets the current value to snapshot.State(), marks the originator
//	Initialized, logs the transition and notifies every observer with the
//	same snapshot. An observer panic propagates to the caller; the state
//	change has already happened by then.
//
// Inputs:
//   - snapshot: The snapshot to adopt. Must not be nil; a nil snapshot
//     panics with ErrNilSnapshot.
func (o *Originator[T]) AdoptSnapshot(snapshot *Snapshot[T]) {
	if snapshot == nil {
		panic(ErrNilSnapshot)
	}

	o.mu.Lock()
	o.state = snapshot.State()
	o.initialized = true
	o.mu.Unlock()

	o.announce(transitionAdopted, snapshot)
}

// Subscribe registers an observer for every CreateSnapshot and
// AdoptSnapshot.
//
// Inputs:
//   - observer: Called synchronously, after any earlier-registered observers.
//     A nil observer is ignored and yields an empty ID.
//
// Outputs:
//   - string: Subscription ID for Unsubscribe.
func (o *Originator[T]) Subscribe(observer Observer[T]) string {
	if observer == nil {
		return ""
	}
	return o.observers.add(observer)
}

// Unsubscribe removes an observer.
//
// Outputs:
//   - bool: True if the subscription was found and removed.
func (o *Originator[T]) Unsubscribe(id string) bool {
	return o.observers.remove(id)
}

// Subscribers returns the number of registered observers.
func (o *Originator[T]) Subscribers() int {
	return o.observers.len()
}

// capture snapshots the current value without logging or notifying.
func (o *Originator[T]) capture() *Snapshot[T] {
	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()

	return NewSnapshot(state)
}

// announce logs a transition, records it and notifies observers.
func (o *Originator[T]) announce(kind transition, snapshot *Snapshot[T]) {
	o.lines.LogLine("snapshot " + string(kind) + ": " + snapshot.String())
	recordTransition(context.Background(), kind)
	o.observers.notify(snapshot)
}
