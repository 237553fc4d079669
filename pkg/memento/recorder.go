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
	"sync"
	"time"
)

// DefaultRecorderCapacity is used when NewRecorder is given a non-positive
// capacity.
const DefaultRecorderCapacity = 100

// Notification is one observed transition.
type Notification[T any] struct {
	Snapshot *Snapshot[T]
	At       time.Time
}

// Recorder is an observer that keeps the most recent notifications.
//
// # Description
//
// Backed by a fixed-size circular buffer. When full, the oldest
// notification is overwritten. Subscribe Observe on an Originator:
//
//	rec := memento.NewRecorder[Character](50)
//	orig.Subscribe(rec.Observe)
//
// # Thread Safety
//
// Safe for concurrent use.
type Recorder[T any] struct {
	mu    sync.Mutex
	data  []Notification[T]
	head  int    // Next write position
	count int    // Current number of notifications held
	total uint64 // Notifications observed since creation or Reset
}

// NewRecorder creates a recorder holding at most capacity notifications.
//
// # Inputs
//
//   - capacity: Maximum number of notifications kept.
//
// # Outputs
//
//   - *Recorder[T]: Ready-to-use recorder.
func NewRecorder[T any](capacity int) *Recorder[T] {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	return &Recorder[T]{
		data: make([]Notification[T], capacity),
	}
}

// Observe records a notification. It satisfies Observer[T].
func (r *Recorder[T]) Observe(snapshot *Snapshot[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[r.head] = Notification[T]{Snapshot: snapshot, At: time.Now()}
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
	r.total++
}

// Notifications returns the held notifications from oldest to newest.
// The returned slice is a copy.
func (r *Recorder[T]) Notifications() []Notification[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}

	result := make([]Notification[T], r.count)
	tail := (r.head - r.count + len(r.data)) % len(r.data)
	if tail+r.count <= len(r.data) {
		copy(result, r.data[tail:tail+r.count])
	} else {
		// Wrapped: tail..end, then start..head
		n := copy(result, r.data[tail:])
		copy(result[n:], r.data[:r.head])
	}
	return result
}

// Len returns the number of notifications held.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the maximum number of notifications held.
func (r *Recorder[T]) Cap() int {
	return len(r.data)
}

// Total returns the number of notifications observed, including those
// already overwritten.
func (r *Recorder[T]) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset drops every held notification and zeroes Total.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.data)
	r.head = 0
	r.count = 0
	r.total = 0
}
