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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverList_AddRemove(t *testing.T) {
	var l observerList[int]

	id1 := l.add(func(*Snapshot[int]) {})
	id2 := l.add(func(*Snapshot[int]) {})

	require.NotEqual(t, id1, id2)
	assert.Equal(t, 2, l.len())

	assert.True(t, l.remove(id1))
	assert.False(t, l.remove(id1))
	assert.False(t, l.remove("missing"))
	assert.Equal(t, 1, l.len())
}

func TestObserverList_NotifyEmpty(t *testing.T) {
	var l observerList[int]

	// Should not panic
	l.notify(NewSnapshot(1))
}

func TestObserverList_SubscribeDuringNotify(t *testing.T) {
	var l observerList[int]

	var calls []string
	l.add(func(*Snapshot[int]) {
		calls = append(calls, "outer")
		l.add(func(*Snapshot[int]) { calls = append(calls, "late") })
	})

	l.notify(NewSnapshot(1))
	assert.Equal(t, []string{"outer"}, calls, "observers added during notify wait for the next one")

	calls = nil
	l.notify(NewSnapshot(2))
	assert.Equal(t, []string{"outer", "late"}, calls)
}

func TestObserverList_UnsubscribeDuringNotify(t *testing.T) {
	var l observerList[int]

	var calls []string
	var secondID string
	l.add(func(*Snapshot[int]) {
		calls = append(calls, "first")
		l.remove(secondID)
	})
	secondID = l.add(func(*Snapshot[int]) { calls = append(calls, "second") })

	l.notify(NewSnapshot(1))
	assert.Equal(t, []string{"first", "second"}, calls, "the running notify keeps its view")

	calls = nil
	l.notify(NewSnapshot(2))
	assert.Equal(t, []string{"first"}, calls)
}

func TestObserverList_PassesSnapshot(t *testing.T) {
	var l observerList[string]
	s := NewSnapshot("x")

	var got *Snapshot[string]
	l.add(func(snap *Snapshot[string]) { got = snap })
	l.notify(s)

	assert.Same(t, s, got)
}
