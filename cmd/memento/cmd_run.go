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

	"github.com/AleutianAI/AleutianMemento/cmd/memento/internal/scenario"
)

func newRunCmd(a *app) *cobra.Command {
	var showHistory bool

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Execute a YAML scenario script",
		Long: `run executes the steps of a scenario script in order:
set, save, restore, restore_index, expect and expect_count.
The run stops at the first failing step and exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scenario.LoadScript(args[0])
			if err != nil {
				return err
			}

			p := a.printer
			hist, _ := a.newHistory()
			runner := scenario.NewRunner(hist,
				scenario.WithRunnerLogger(a.logger.Slog()),
				scenario.WithStepHook(func(res scenario.StepResult) {
					p.Step(res.Step, fmt.Sprintf("%s %s", res.Op, res.Detail))
					if res.Err != nil {
						p.Warning("rejected as expected: " + res.Err.Error())
					}
				}),
			)

			if script.Name != "" {
				p.Title(script.Name)
			}
			p.Muted(args[0])
			result, err := runner.Run(cmd.Context(), script)
			if err != nil {
				p.Error(err.Error())
				return err
			}

			if showHistory {
				printHistory(p, hist, nil)
			}
			p.Success(fmt.Sprintf("%d steps passed", result.Steps))
			p.KeyValue(
				"count", fmt.Sprint(result.Count),
				"final state", result.Final.String(),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHistory, "history", false, "print the history table after the run")
	return cmd
}
