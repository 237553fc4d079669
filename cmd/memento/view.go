// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
	"github.com/AleutianAI/AleutianMemento/pkg/memento"
	"github.com/AleutianAI/AleutianMemento/pkg/ux"
)

// printHistory renders every entry. The entry matching current, if any, is
// highlighted.
func printHistory(p *ux.Printer, hist *memento.HistoryManager[character.Character], current *memento.Snapshot[character.Character]) {
	highlight := -1
	rows := make([][]string, 0, hist.Count())
	for i, info := range hist.Info() {
		if current != nil && info.ID == current.ID() {
			highlight = i
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatUint(info.Seq, 10),
			time.UnixMilli(info.CreatedAt).UTC().Format("15:04:05.000"),
			info.Display,
		})
	}
	p.Table([]string{"#", "SEQ", "CREATED", "STATE"}, rows, highlight)
}

// printNotifications renders what a recorder observed, oldest first.
func printNotifications(p *ux.Printer, rec *memento.Recorder[character.Character]) {
	rows := make([][]string, 0, rec.Len())
	for _, n := range rec.Notifications() {
		rows = append(rows, []string{
			strconv.FormatUint(n.Snapshot.Seq(), 10),
			n.Snapshot.String(),
		})
	}
	p.Table([]string{"SEQ", "SNAPSHOT"}, rows, -1)
}
