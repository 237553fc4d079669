// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package character defines the game character record used by the memento
// CLI and its tests.
package character

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Attribute bounds accepted by Validate.
const (
	MinAttribute = -100
	MaxAttribute = 100
)

// characterValidate is the validator instance for character records.
var characterValidate = validator.New()

// Character is a named record with three numeric attributes.
//
// Character is a plain value: copies are independent, which makes it safe
// to snapshot without deep copying.
type Character struct {
	Name     string `yaml:"name" json:"name" validate:"required,max=64"`
	Agility  int    `yaml:"agility" json:"agility" validate:"gte=-100,lte=100"`
	Charisma int    `yaml:"charisma" json:"charisma" validate:"gte=-100,lte=100"`
	Strength int    `yaml:"strength" json:"strength" validate:"gte=-100,lte=100"`
}

// New creates a character.
func New(name string, agility, charisma, strength int) Character {
	return Character{
		Name:     name,
		Agility:  agility,
		Charisma: charisma,
		Strength: strength,
	}
}

// String renders the character for logs and terminals.
func (c Character) String() string {
	return fmt.Sprintf("%s (agility: %d, charisma: %d, strength: %d)",
		c.Name, c.Agility, c.Charisma, c.Strength)
}

// Validate checks the name and attribute bounds.
//
// # Outputs
//
//   - error: validator.ValidationErrors describing every failed field, or nil.
func (c Character) Validate() error {
	return characterValidate.Struct(c)
}
