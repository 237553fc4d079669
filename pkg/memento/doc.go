// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memento tracks a single value of any type and keeps an append-only
// history of immutable snapshots of it.
//
// Three types collaborate:
//
//   - Snapshot[T] holds one captured value. It never changes after creation.
//   - Originator[T] owns the current value and converts between the live
//     value and snapshots. It knows nothing about history.
//   - HistoryManager[T] owns the chronological sequence of snapshots taken
//     from one Originator and restores the Originator from any of them.
//
// # Basic Usage
//
//	orig := memento.NewOriginator[Character]()
//	hist := memento.NewHistoryManager(orig)
//
//	orig.SetState(alice)
//	s1 := hist.Save()
//
//	orig.SetState(bob)
//	hist.Save()
//
//	if err := hist.RestoreBySnapshot(s1); err != nil {
//	    return err
//	}
//	// orig.State() == alice, hist.Count() == 2
//
// Restoring never removes entries. Saving after a restore appends a new
// entry holding the restored value.
//
// # Notifications
//
// Every CreateSnapshot and AdoptSnapshot (and therefore every Save and
// successful restore) invokes the registered observers synchronously, in
// registration order, with the snapshot that was produced or adopted.
// Observers are trusted: a panicking observer is not recovered and the panic
// reaches the caller. Observers registered after it are not invoked.
//
// # Errors
//
// Only the restore path can fail:
//
//   - *IndexOutOfRangeError (errors.Is(err, ErrIndexOutOfRange))
//   - *SnapshotNotFoundError (errors.Is(err, ErrSnapshotNotFound))
//
// A failed restore leaves both the Originator and the history untouched.
//
// # Thread Safety
//
// Originator and HistoryManager are safe for concurrent use. Observers run
// outside of all internal locks, so they may call back into either type.
package memento
