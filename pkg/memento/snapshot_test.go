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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
)

func TestNewSnapshot(t *testing.T) {
	alice := character.New("Alice", 0, 0, 0)
	s := NewSnapshot(alice)

	assert.Equal(t, alice, s.State())
	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.NotZero(t, s.Seq())
	assert.NotZero(t, s.CreatedAt())
}

func TestSnapshot_ZeroValue(t *testing.T) {
	s := NewSnapshot[character.Character](character.Character{})
	assert.Equal(t, character.Character{}, s.State())

	var p *int
	sp := NewSnapshot(p)
	assert.Nil(t, sp.State())
}

func TestSnapshot_EqualValuesAreDistinct(t *testing.T) {
	bob := character.New("Bob", 12, 10, 11)
	a := NewSnapshot(bob)
	b := NewSnapshot(bob)

	assert.Equal(t, a.State(), b.State())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Less(t, a.Seq(), b.Seq())
}

func TestSnapshot_String(t *testing.T) {
	t.Run("uses Stringer", func(t *testing.T) {
		s := NewSnapshot(character.New("Bob", 12, 10, 11))
		assert.Equal(t, "Bob (agility: 12, charisma: 10, strength: 11)", s.String())
	})

	t.Run("plain values", func(t *testing.T) {
		assert.Equal(t, "42", NewSnapshot(42).String())
		assert.Equal(t, "", NewSnapshot("").String())
	})

	t.Run("nil snapshot", func(t *testing.T) {
		var s *Snapshot[int]
		assert.Equal(t, "<nil snapshot>", s.String())
	})
}

func TestSnapshot_Info(t *testing.T) {
	s := NewSnapshot(7)
	info := s.Info()

	assert.Equal(t, s.ID(), info.ID)
	assert.Equal(t, s.Seq(), info.Seq)
	assert.Equal(t, s.CreatedAt(), info.CreatedAt)
	assert.Equal(t, "7", info.Display)
}
