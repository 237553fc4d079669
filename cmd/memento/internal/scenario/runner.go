// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/AleutianAI/AleutianMemento/pkg/character"
	"github.com/AleutianAI/AleutianMemento/pkg/memento"
)

// Runner errors.
var (
	// ErrExpectationFailed is returned when an expect or expect_count step
	// does not match.
	ErrExpectationFailed = errors.New("expectation failed")

	// ErrUnexpectedSuccess is returned when a restore step with
	// expect_error succeeds.
	ErrUnexpectedSuccess = errors.New("restore succeeded but an error was expected")

	// ErrUnexpectedError is returned when a restore step fails with a
	// different error than expect_error names.
	ErrUnexpectedError = errors.New("restore failed with an unexpected error")
)

// StepError reports the step that stopped a run.
type StepError struct {
	Step int // 1-based
	Op   Op
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepResult describes one completed step.
type StepResult struct {
	Step   int // 1-based
	Op     Op
	Detail string

	// Err is the restore error a step expected and received.
	Err error

	// Snapshot is the saved or adopted snapshot, if any.
	Snapshot *memento.Snapshot[character.Character]
}

// Result summarizes a completed run.
type Result struct {
	Steps int
	Count int
	Final character.Character
}

// Runner executes scripts against one history. Labels persist across Run
// calls on the same Runner.
//
// Thread Safety: Not safe for concurrent Run calls.
type Runner struct {
	history *memento.HistoryManager[character.Character]
	labels  map[string]*memento.Snapshot[character.Character]
	logger  *slog.Logger
	onStep  func(StepResult)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStepHook calls fn after every completed step.
func WithStepHook(fn func(StepResult)) RunnerOption {
	return func(r *Runner) {
		r.onStep = fn
	}
}

// WithRunnerLogger sets the logger. Defaults to slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner over history.
func NewRunner(history *memento.HistoryManager[character.Character], opts ...RunnerOption) *Runner {
	r := &Runner{
		history: history,
		labels:  make(map[string]*memento.Snapshot[character.Character]),
		logger:  slog.Default(),
		onStep:  func(StepResult) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the history the runner drives.
func (r *Runner) History() *memento.HistoryManager[character.Character] {
	return r.history
}

// Run executes every step in order and stops at the first failure.
//
// Outputs:
//   - Result: Summary of the run, valid when err is nil.
//   - error: *StepError wrapping the cause, or ctx.Err() if ctx is done
//     between steps.
func (r *Runner) Run(ctx context.Context, script *Script) (Result, error) {
	logger := r.logger.With(slog.String("script", script.Name))
	logger.Info("running script", slog.Int("steps", len(script.Steps)))

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		res, err := r.exec(ctx, step)
		if err != nil {
			stepErr := &StepError{Step: i + 1, Op: step.Op, Err: err}
			logger.Warn("script failed", slog.String("error", stepErr.Error()))
			return Result{}, stepErr
		}
		res.Step = i + 1
		res.Op = step.Op
		r.onStep(res)
	}

	result := Result{
		Steps: len(script.Steps),
		Count: r.history.Count(),
		Final: r.history.Originator().State(),
	}
	logger.Info("script finished", slog.Int("count", result.Count))
	return result, nil
}

func (r *Runner) exec(ctx context.Context, step Step) (StepResult, error) {
	orig := r.history.Originator()

	switch step.Op {
	case OpSet:
		orig.SetState(*step.Character)
		return StepResult{Detail: step.Character.String()}, nil

	case OpSave:
		snapshot := r.history.SaveContext(ctx)
		if step.Label != "" {
			r.labels[step.Label] = snapshot
		}
		detail := fmt.Sprintf("#%d %s", r.history.Count()-1, snapshot)
		if step.Label != "" {
			detail += " as " + strconv.Quote(step.Label)
		}
		return StepResult{Detail: detail, Snapshot: snapshot}, nil

	case OpRestore:
		var target *memento.Snapshot[character.Character]
		var detail string
		if step.Label != "" {
			snapshot, ok := r.labels[step.Label]
			if !ok {
				return StepResult{}, fmt.Errorf("label %q was not saved", step.Label)
			}
			target = snapshot
			detail = strconv.Quote(step.Label)
		} else {
			target = memento.NewSnapshot(*step.Character)
			detail = "unsaved " + target.String()
		}
		err := r.history.RestoreBySnapshotContext(ctx, target)
		return r.restoreResult(step, detail, target, err)

	case OpRestoreIndex:
		err := r.history.RestoreByIndexContext(ctx, *step.Index)
		var adopted *memento.Snapshot[character.Character]
		if err == nil {
			adopted, _ = r.history.At(*step.Index)
		}
		return r.restoreResult(step, "index "+strconv.Itoa(*step.Index), adopted, err)

	case OpExpect:
		got := orig.State()
		if got != *step.Character {
			return StepResult{}, fmt.Errorf("%w: state is %s, want %s", ErrExpectationFailed, got, step.Character)
		}
		return StepResult{Detail: got.String()}, nil

	case OpExpectCount:
		got := r.history.Count()
		if got != *step.Count {
			return StepResult{}, fmt.Errorf("%w: count is %d, want %d", ErrExpectationFailed, got, *step.Count)
		}
		return StepResult{Detail: strconv.Itoa(got)}, nil
	}

	return StepResult{}, fmt.Errorf("unknown op %q", step.Op)
}

// restoreResult reconciles a restore outcome with the step's expect_error.
func (r *Runner) restoreResult(step Step, detail string, target *memento.Snapshot[character.Character], err error) (StepResult, error) {
	if step.ExpectError == "" {
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{Detail: detail, Snapshot: target}, nil
	}

	if err == nil {
		return StepResult{}, fmt.Errorf("%w: %s", ErrUnexpectedSuccess, step.ExpectError)
	}
	if !matchesExpected(err, step.ExpectError) {
		return StepResult{}, fmt.Errorf("%w: want %s, got %w", ErrUnexpectedError, step.ExpectError, err)
	}
	return StepResult{Detail: detail, Err: err}, nil
}

func matchesExpected(err error, expected string) bool {
	switch expected {
	case ExpectIndexOutOfRange:
		return errors.Is(err, memento.ErrIndexOutOfRange)
	case ExpectSnapshotNotFound:
		return errors.Is(err, memento.ErrSnapshotNotFound)
	default:
		return false
	}
}
