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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// snapshotSeq is the process-wide creation counter for snapshots.
var snapshotSeq atomic.Uint64

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// Snapshot holds one captured value of type T.
//
// Description:
//
//	The captured value is set once by NewSnapshot and never changes. If T
//	contains pointers, maps or slices, the snapshot shares them with the
//	caller; it is only as immutable as T allows.
//
//	Two snapshots are never interchangeable, even when their values are
//	equal. Identity is the ID assigned at creation.
//
// Thread Safety: Safe for concurrent use (immutable after creation).
type Snapshot[T any] struct {
	id        uuid.UUID
	seq       uint64
	createdAt int64 // Unix milliseconds UTC
	state     T
}

// NewSnapshot wraps state in a new snapshot.
//
// Inputs:
//   - state: Any value, including the zero value of T.
//
// Outputs:
//   - *Snapshot[T]: A snapshot with a fresh ID and sequence number.
func NewSnapshot[T any](state T) *Snapshot[T] {
	return &Snapshot[T]{
		id:        uuid.New(),
		seq:       snapshotSeq.Add(1),
		createdAt: time.Now().UnixMilli(),
		state:     state,
	}
}

// State returns the captured value.
func (s *Snapshot[T]) State() T {
	return s.state
}

// ID returns the snapshot's identity.
func (s *Snapshot[T]) ID() uuid.UUID {
	return s.id
}

// Seq returns the process-wide creation order of this snapshot.
// A snapshot with a larger Seq was created later.
func (s *Snapshot[T]) Seq() uint64 {
	return s.seq
}

// CreatedAt returns when the snapshot was created (Unix milliseconds UTC).
func (s *Snapshot[T]) CreatedAt() int64 {
	return s.createdAt
}

// String renders the captured value for display.
//
// Uses T's own String method when T implements fmt.Stringer. The result is
// meant for logs and terminals; it plays no part in identity or equality.
func (s *Snapshot[T]) String() string {
	if s == nil {
		return "<nil snapshot>"
	}
	return fmt.Sprint(s.state)
}

// Info returns a read-only description of the snapshot.
func (s *Snapshot[T]) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:        s.id,
		Seq:       s.seq,
		CreatedAt: s.createdAt,
		Display:   s.String(),
	}
}

// SnapshotInfo describes a snapshot without exposing its value.
// Used for listing history to users.
type SnapshotInfo struct {
	ID        uuid.UUID // Snapshot identity
	Seq       uint64    // Process-wide creation order
	CreatedAt int64     // Unix milliseconds UTC
	Display   string    // Human-readable value
}
