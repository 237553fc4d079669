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
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIndexOutOfRangeError(t *testing.T) {
	err := &IndexOutOfRangeError{Index: 3, Length: 2}

	assert.Equal(t, "history index out of range: index 3, length 2", err.Error())
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.False(t, errors.Is(err, ErrSnapshotNotFound))

	wrapped := fmt.Errorf("restore step 4: %w", err)
	var target *IndexOutOfRangeError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 3, target.Index)
	assert.Equal(t, 2, target.Length)
}

func TestSnapshotNotFoundError(t *testing.T) {
	id := uuid.MustParse("6f1c2a8e-4b1d-4a53-9d6e-0c5b3f7a9e21")
	err := &SnapshotNotFoundError{ID: id, Display: "Bob"}

	assert.Equal(t, "snapshot not found in history: "+id.String()+" (Bob)", err.Error())
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
	assert.False(t, errors.Is(err, ErrIndexOutOfRange))
}
