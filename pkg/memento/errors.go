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
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrIndexOutOfRange indicates a restore or lookup by position outside
	// the history.
	ErrIndexOutOfRange = errors.New("history index out of range")

	// ErrSnapshotNotFound indicates a snapshot that was never saved by this
	// history manager.
	ErrSnapshotNotFound = errors.New("snapshot not found in history")

	// ErrNilSnapshot indicates a nil snapshot was passed where one is required.
	ErrNilSnapshot = errors.New("snapshot must not be nil")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// IndexOutOfRangeError provides details about a rejected index.
type IndexOutOfRangeError struct {
	// Index is the requested position.
	Index int

	// Length is the history length at the time of the request.
	Length int
}

// Error implements the error interface.
func (e *IndexOutOfRangeError) Error() string {
	return "history index out of range: index " + strconv.Itoa(e.Index) +
		", length " + strconv.Itoa(e.Length)
}

// Unwrap returns ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// SnapshotNotFoundError identifies a snapshot that could not be located.
type SnapshotNotFoundError struct {
	// ID is the identity of the missing snapshot. uuid.Nil for a nil snapshot.
	ID uuid.UUID

	// Display is the rendered value of the missing snapshot.
	Display string
}

// Error implements the error interface.
func (e *SnapshotNotFoundError) Error() string {
	return "snapshot not found in history: " + e.ID.String() + " (" + e.Display + ")"
}

// Unwrap returns ErrSnapshotNotFound.
func (e *SnapshotNotFoundError) Unwrap() error {
	return ErrSnapshotNotFound
}
