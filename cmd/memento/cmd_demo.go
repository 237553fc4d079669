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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
	"github.com/AleutianAI/AleutianMemento/pkg/memento"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the Alice, Bob and Christine undo walkthrough",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd)
		},
	}
}

// runDemo saves three characters, restores the second by snapshot, saves
// again and finally shows that an out-of-range restore is rejected.
func (a *app) runDemo(cmd *cobra.Command) error {
	ctx := cmd.Context()
	p := a.printer
	hist, recorder := a.newHistory()
	orig := hist.Originator()

	p.Title("Saving characters")
	party := []character.Character{
		character.New("Alice", 0, 0, 0),
		character.New("Bob", 12, 10, 11),
		character.New("Christine", 25, -4, 0),
	}
	saved := make([]*memento.Snapshot[character.Character], 0, len(party))
	for i, c := range party {
		orig.SetState(c)
		saved = append(saved, hist.SaveContext(ctx))
		p.Step(i+1, "saved "+c.String())
	}
	bob := saved[1]

	p.Title("Restoring Bob")
	p.Info(fmt.Sprintf("restoring snapshot seq %d by identity", bob.Seq()))
	if err := hist.RestoreBySnapshotContext(ctx, bob); err != nil {
		return err
	}
	p.Success("current state: " + orig.State().String())

	latest := hist.SaveContext(ctx)
	printHistory(p, hist, latest)
	p.KeyValue("count", fmt.Sprint(hist.Count()))

	p.Title("Restoring index 10")
	if err := hist.RestoreByIndexContext(ctx, 10); err != nil {
		p.Error(err.Error())
	} else {
		return fmt.Errorf("restore of index 10 unexpectedly succeeded")
	}
	p.Box("Final state", orig.State().String())

	p.Title("Notifications")
	printNotifications(p, recorder)
	return nil
}
