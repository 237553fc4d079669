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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
)

// newTestHistory wires a history to a fresh originator with captured lines
// and tracing disabled.
func newTestHistory[T any](opts ...HistoryOption) (*HistoryManager[T], *lineCapture) {
	orig, lines := newTestOriginator[T]()
	opts = append([]HistoryOption{WithTracer(NewTracer(nil, false))}, opts...)
	return NewHistoryManager(orig, opts...), lines
}

func TestNewHistoryManager(t *testing.T) {
	hist, _ := newTestHistory[int]()

	assert.Equal(t, 0, hist.Count())
	assert.Equal(t, DefaultHistoryName, hist.Name())
	assert.NotNil(t, hist.Originator())
	assert.Empty(t, hist.Snapshots())

	_, ok := hist.Latest()
	assert.False(t, ok)
}

func TestNewHistoryManager_NilOriginator(t *testing.T) {
	assert.Panics(t, func() {
		NewHistoryManager[int](nil)
	})
}

func TestNewHistoryManager_Options(t *testing.T) {
	hist, _ := newTestHistory[int](WithName("party"), WithName(""), WithLogger(nil), WithTracer(nil))

	assert.Equal(t, "party", hist.Name())
	assert.NotNil(t, hist.logger)
	assert.NotNil(t, hist.tracer)
}

// TestHistoryManager_CharacterScenario walks the canonical undo session:
// three saves, a restore to the second one, and a fourth save.
func TestHistoryManager_CharacterScenario(t *testing.T) {
	hist, lines := newTestHistory[character.Character]()
	orig := hist.Originator()

	alice := character.New("Alice", 0, 0, 0)
	bob := character.New("Bob", 12, 10, 11)
	christine := character.New("Christine", 25, -4, 0)

	orig.SetState(alice)
	s1 := hist.Save()
	orig.SetState(bob)
	s2 := hist.Save()
	orig.SetState(christine)
	s3 := hist.Save()

	require.Equal(t, 3, hist.Count())
	assert.Equal(t, []*Snapshot[character.Character]{s1, s2, s3}, hist.Snapshots())

	require.NoError(t, hist.RestoreBySnapshot(s2))
	assert.Equal(t, bob, orig.State())
	assert.Equal(t, 3, hist.Count(), "restore never removes entries")

	s4 := hist.Save()
	assert.Equal(t, 4, hist.Count())
	assert.Equal(t, bob, s4.State())
	assert.NotEqual(t, s2.ID(), s4.ID(), "equal values are still distinct entries")

	assert.Equal(t, []string{
		"snapshot created: " + alice.String(),
		"snapshot created: " + bob.String(),
		"snapshot created: " + christine.String(),
		"snapshot adopted: " + bob.String(),
		"snapshot created: " + bob.String(),
	}, lines.lines)
}

func TestHistoryManager_SaveCapturesCurrentValue(t *testing.T) {
	hist, _ := newTestHistory[int]()
	hist.Originator().SetState(7)

	s := hist.Save()
	hist.Originator().SetState(8)

	assert.Equal(t, 7, s.State())
	latest, ok := hist.Latest()
	require.True(t, ok)
	assert.Same(t, s, latest)
}

func TestHistoryManager_SaveUninitialized(t *testing.T) {
	hist, _ := newTestHistory[character.Character]()

	s := hist.Save()

	assert.Equal(t, character.Character{}, s.State())
	assert.Equal(t, 1, hist.Count())
}

func TestHistoryManager_SaveNotifiesAfterAppend(t *testing.T) {
	hist, _ := newTestHistory[int]()

	var countSeen int
	hist.Originator().Subscribe(func(*Snapshot[int]) {
		countSeen = hist.Count()
	})

	hist.Save()
	assert.Equal(t, 1, countSeen)
}

func TestHistoryManager_RestoreByIndex(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()
	for _, v := range []int{10, 20, 30} {
		orig.SetState(v)
		hist.Save()
	}

	tests := []struct {
		name  string
		index int
		want  int
	}{
		{"first", 0, 10},
		{"middle", 1, 20},
		{"last", 2, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, hist.RestoreByIndex(tt.index))
			assert.Equal(t, tt.want, orig.State())
			assert.Equal(t, 3, hist.Count())
		})
	}
}

func TestHistoryManager_RestoreByIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		saves int
		index int
	}{
		{"empty history", 0, 0},
		{"negative", 2, -1},
		{"equal to count", 2, 2},
		{"far past end", 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist, lines := newTestHistory[int]()
			orig := hist.Originator()
			for i := 0; i < tt.saves; i++ {
				orig.SetState(i + 1)
				hist.Save()
			}
			orig.SetState(42)
			linesBefore := len(lines.lines)

			err := hist.RestoreByIndex(tt.index)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)

			var rangeErr *IndexOutOfRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.index, rangeErr.Index)
			assert.Equal(t, tt.saves, rangeErr.Length)

			assert.Equal(t, 42, orig.State(), "failed restore leaves state unchanged")
			assert.Equal(t, tt.saves, hist.Count())
			assert.Len(t, lines.lines, linesBefore, "failed restore does not log or notify")
		})
	}
}

func TestHistoryManager_RestoreBySnapshotNotFound(t *testing.T) {
	hist, _ := newTestHistory[int]()
	other, _ := newTestHistory[int]()

	hist.Originator().SetState(1)
	hist.Save()
	hist.Originator().SetState(2)

	other.Originator().SetState(1)
	foreign := other.Save()

	tests := []struct {
		name     string
		snapshot *Snapshot[int]
		wantID   uuid.UUID
	}{
		{"saved by another history", foreign, foreign.ID()},
		{"nil", nil, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hist.RestoreBySnapshot(tt.snapshot)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSnapshotNotFound)

			var notFound *SnapshotNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.wantID, notFound.ID)

			assert.Equal(t, 2, hist.Originator().State())
			assert.Equal(t, 1, hist.Count())
		})
	}
}

func TestHistoryManager_RestoreBySnapshotIsByIdentity(t *testing.T) {
	hist, _ := newTestHistory[character.Character]()
	orig := hist.Originator()

	bob := character.New("Bob", 12, 10, 11)
	orig.SetState(bob)
	saved := hist.Save()
	orig.SetState(character.New("Alice", 0, 0, 0))

	lookalike := NewSnapshot(bob)
	err := hist.RestoreBySnapshot(lookalike)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.Equal(t, "Alice", orig.State().Name)

	require.NoError(t, hist.RestoreBySnapshot(saved))
	assert.Equal(t, bob, orig.State())
}

func TestHistoryManager_RestoreOnEmptyHistory(t *testing.T) {
	hist, _ := newTestHistory[int]()

	assert.ErrorIs(t, hist.RestoreByIndex(0), ErrIndexOutOfRange)
	assert.ErrorIs(t, hist.RestoreBySnapshot(NewSnapshot(0)), ErrSnapshotNotFound)
	assert.False(t, hist.Originator().Initialized())
}

func TestHistoryManager_RestoreNotifiesAdoption(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()
	orig.SetState(5)
	saved := hist.Save()
	orig.SetState(6)

	rec := NewRecorder[int](10)
	orig.Subscribe(rec.Observe)

	require.NoError(t, hist.RestoreByIndex(0))

	got := rec.Notifications()
	require.Len(t, got, 1)
	assert.Same(t, saved, got[0].Snapshot)
}

func TestHistoryManager_CountIsMonotonic(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()

	last := hist.Count()
	step := func() {
		c := hist.Count()
		assert.GreaterOrEqual(t, c, last)
		last = c
	}

	for i := 0; i < 5; i++ {
		orig.SetState(i)
		hist.Save()
		step()
		_ = hist.RestoreByIndex(i / 2)
		step()
		_ = hist.RestoreByIndex(-1)
		step()
	}
	assert.Equal(t, 5, last)
}

func TestHistoryManager_At(t *testing.T) {
	hist, _ := newTestHistory[string]()
	hist.Originator().SetState("a")
	first := hist.Save()

	got, err := hist.At(0)
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = hist.At(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = hist.At(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestHistoryManager_SnapshotsIsCopy(t *testing.T) {
	hist, _ := newTestHistory[int]()
	hist.Save()

	list := hist.Snapshots()
	list[0] = nil

	got, err := hist.At(0)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestHistoryManager_Info(t *testing.T) {
	hist, _ := newTestHistory[character.Character]()
	orig := hist.Originator()

	orig.SetState(character.New("Alice", 0, 0, 0))
	s1 := hist.Save()
	orig.SetState(character.New("Bob", 12, 10, 11))
	s2 := hist.Save()

	info := hist.Info()
	require.Len(t, info, 2)
	assert.Equal(t, s1.ID(), info[0].ID)
	assert.Equal(t, s2.ID(), info[1].ID)
	assert.Less(t, info[0].Seq, info[1].Seq)
	assert.Equal(t, "Bob (agility: 12, charisma: 10, strength: 11)", info[1].Display)
}

func TestHistoryManager_ObserverPanicOnSave(t *testing.T) {
	hist, lines := newTestHistory[int]()
	orig := hist.Originator()
	orig.SetState(1)

	var second bool
	orig.Subscribe(func(*Snapshot[int]) { panic("boom") })
	orig.Subscribe(func(*Snapshot[int]) { second = true })

	assert.PanicsWithValue(t, "boom", func() {
		hist.Save()
	})

	assert.Equal(t, 1, hist.Count(), "entry is appended before observers run")
	assert.False(t, second)
	assert.Len(t, lines.lines, 1)

	// The manager stays usable after the panic.
	orig.SetState(2)
	assert.Panics(t, func() { hist.Save() })
	assert.Equal(t, 2, hist.Count())
}

func TestHistoryManager_ObserverMayCallBack(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()

	var infos [][]SnapshotInfo
	orig.Subscribe(func(*Snapshot[int]) {
		infos = append(infos, hist.Info())
	})

	orig.SetState(1)
	hist.Save()
	require.NoError(t, hist.RestoreByIndex(0))

	require.Len(t, infos, 2)
	assert.Len(t, infos[0], 1)
	assert.Len(t, infos[1], 1)
}

func TestHistoryManager_ContextVariants(t *testing.T) {
	hist, _ := newTestHistory[int]()
	ctx := context.Background()

	hist.Originator().SetState(3)
	s := hist.SaveContext(ctx)
	hist.Originator().SetState(4)

	require.NoError(t, hist.RestoreByIndexContext(ctx, 0))
	assert.Equal(t, 3, hist.Originator().State())

	hist.Originator().SetState(4)
	require.NoError(t, hist.RestoreBySnapshotContext(ctx, s))
	assert.Equal(t, 3, hist.Originator().State())

	err := hist.RestoreByIndexContext(ctx, 9)
	var rangeErr *IndexOutOfRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestHistoryManager_ConcurrentSaves(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()

	const workers = 8
	const perWorker = 50

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				orig.SetState(w*perWorker + i)
				hist.Save()
				_ = hist.RestoreByIndex(hist.Count() / 2)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	snapshots := hist.Snapshots()
	require.Len(t, snapshots, workers*perWorker)

	seen := make(map[uuid.UUID]bool, len(snapshots))
	for i, s := range snapshots {
		assert.False(t, seen[s.ID()], "duplicate snapshot in history")
		seen[s.ID()] = true
		if i > 0 {
			assert.Less(t, snapshots[i-1].Seq(), s.Seq(), "history order is creation order")
		}
	}
}

func TestHistoryManager_ConcurrentObservers(t *testing.T) {
	hist, _ := newTestHistory[int]()
	orig := hist.Originator()

	var mu sync.Mutex
	var notified int
	orig.Subscribe(func(*Snapshot[int]) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 25; i++ {
				hist.Save()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 100, hist.Count())
	assert.Equal(t, 100, notified)
}

func TestHistoryManager_SeparateInstances(t *testing.T) {
	a, _ := newTestHistory[int](WithName("a"))
	b, _ := newTestHistory[int](WithName("b"))

	a.Save()
	a.Save()
	b.Save()

	assert.Equal(t, 2, a.Count())
	assert.Equal(t, 1, b.Count())
}

func TestHistoryManager_SharedOriginatorKeepsEntriesApart(t *testing.T) {
	orig, _ := newTestOriginator[int]()
	a := NewHistoryManager(orig, WithName("a"), WithTracer(NewTracer(nil, false)))
	b := NewHistoryManager(orig, WithName("b"), WithTracer(NewTracer(nil, false)))

	orig.SetState(7)
	fromA := a.Save()
	fromB := b.Save()
	orig.SetState(8)

	err := b.RestoreBySnapshot(fromA)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, a.RestoreBySnapshot(fromB), ErrSnapshotNotFound)
	assert.Equal(t, 8, orig.State(), "rejected restores leave the shared originator alone")

	require.NoError(t, a.RestoreBySnapshot(fromA))
	assert.Equal(t, 7, orig.State())

	assert.Equal(t, 1, a.Count())
	assert.Equal(t, 1, b.Count())
	assert.NotEqual(t, fromA.ID(), fromB.ID())
}
