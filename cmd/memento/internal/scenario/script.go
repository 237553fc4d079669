// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scenario runs YAML scripts of save and restore steps against a
// character history.
//
// A script looks like:
//
//	name: undo a respec
//	steps:
//	  - op: set
//	    character: {name: Alice, agility: 0, charisma: 0, strength: 0}
//	  - op: save
//	    label: start
//	  - op: set
//	    character: {name: Bob, agility: 12, charisma: 10, strength: 11}
//	  - op: restore
//	    label: start
//	  - op: expect
//	    character: {name: Alice, agility: 0, charisma: 0, strength: 0}
//	  - op: restore_index
//	    index: 7
//	    expect_error: index_out_of_range
//	  - op: expect_count
//	    count: 1
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
)

// Op names a step operation.
type Op string

const (
	OpSet          Op = "set"
	OpSave         Op = "save"
	OpRestore      Op = "restore"
	OpRestoreIndex Op = "restore_index"
	OpExpect       Op = "expect"
	OpExpectCount  Op = "expect_count"
)

// Expected restore failures.
const (
	ExpectIndexOutOfRange  = "index_out_of_range"
	ExpectSnapshotNotFound = "snapshot_not_found"
)

// Script is a named list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step is one script operation. Which fields apply depends on Op:
//
//   - set, expect: Character
//   - save: optional Label
//   - restore: Label of an earlier save, or Character to restore a snapshot
//     that was never saved
//   - restore_index: Index
//   - expect_count: Count
//
// ExpectError is only valid on restore and restore_index.
type Step struct {
	Op          Op                   `yaml:"op" validate:"required,oneof=set save restore restore_index expect expect_count"`
	Label       string               `yaml:"label,omitempty" validate:"omitempty,max=64"`
	Character   *character.Character `yaml:"character,omitempty"`
	Index       *int                 `yaml:"index,omitempty"`
	Count       *int                 `yaml:"count,omitempty" validate:"omitempty,gte=0"`
	ExpectError string               `yaml:"expect_error,omitempty" validate:"omitempty,oneof=index_out_of_range snapshot_not_found"`
}

// ErrInvalidScript is wrapped by every error Validate returns.
var ErrInvalidScript = errors.New("invalid script")

var scriptValidate = validator.New()

// LoadScript reads and validates the script at path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	script, err := ParseScript(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return script, nil
}

// ParseScript decodes and validates a script. Unknown keys are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	var script Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks tags, per-op required fields, characters and labels.
// Step numbers in messages start at 1.
func (s *Script) Validate() error {
	if err := scriptValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	labels := make(map[string]int)
	for i, step := range s.Steps {
		n := i + 1
		if err := step.validate(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v", ErrInvalidScript, n, step.Op, err)
		}
		switch step.Op {
		case OpSave:
			if step.Label == "" {
				continue
			}
			if prev, ok := labels[step.Label]; ok {
				return fmt.Errorf("%w: step %d: label %q already used by step %d", ErrInvalidScript, n, step.Label, prev)
			}
			labels[step.Label] = n
		case OpRestore:
			if step.Label == "" {
				continue
			}
			if _, ok := labels[step.Label]; !ok {
				return fmt.Errorf("%w: step %d: label %q is not saved by an earlier step", ErrInvalidScript, n, step.Label)
			}
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Op {
	case OpSet, OpExpect:
		if s.Character == nil {
			return errors.New("character is required")
		}
		if err := s.Character.Validate(); err != nil {
			return err
		}
	case OpRestore:
		if (s.Label == "") == (s.Character == nil) {
			return errors.New("exactly one of label and character is required")
		}
		if s.Character != nil {
			if err := s.Character.Validate(); err != nil {
				return err
			}
		}
	case OpRestoreIndex:
		if s.Index == nil {
			return errors.New("index is required")
		}
	case OpExpectCount:
		if s.Count == nil {
			return errors.New("count is required")
		}
	}

	if s.ExpectError != "" && s.Op != OpRestore && s.Op != OpRestoreIndex {
		return errors.New("expect_error only applies to restore steps")
	}
	return nil
}
