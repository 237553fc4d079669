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
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMemento/cmd/memento/config"
	"github.com/AleutianAI/AleutianMemento/cmd/memento/internal/telemetry"
	"github.com/AleutianAI/AleutianMemento/pkg/character"
	"github.com/AleutianAI/AleutianMemento/pkg/logging"
	"github.com/AleutianAI/AleutianMemento/pkg/memento"
	"github.com/AleutianAI/AleutianMemento/pkg/ux"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// skipSetup marks commands that run without config, logger or telemetry.
const skipSetup = "memento/skip-setup"

// app is the state shared by commands after PersistentPreRunE.
type app struct {
	configPath string
	outputMode string
	logLevel   string

	cfg       config.Config
	logger    *logging.Logger
	printer   *ux.Printer
	telemetry *telemetry.Providers
	collector *memento.HistoryCollector
}

// execute runs the CLI with args and always releases what setup acquired,
// even when the command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if terr := a.teardown(stdout); err == nil {
		err = terr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "memento",
		Short: "Save and restore snapshots of a game character",
		Long: `memento keeps an append-only history of character snapshots.
Every save appends; restoring by index or by snapshot makes the character
adopt an earlier value without removing anything from the history.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] == "true" {
				a.printer = newPrinter(cmd.OutOrStdout(), a.outputMode)
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&a.outputMode, "output", "auto", "output style: auto, styled, plain")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level from the config file")

	root.AddCommand(
		newDemoCmd(a),
		newRunCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newPrinter(w io.Writer, mode string) *ux.Printer {
	if m, ok := ux.ParseMode(mode); ok {
		return ux.NewPrinterWithMode(w, m)
	}
	return ux.NewPrinter(w)
}

// setup loads config and builds the logger, printer and telemetry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		JSON:    cfg.Log.JSON,
		LogDir:  cfg.Log.Dir,
		Service: cfg.Telemetry.ServiceName,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger.Slog())

	a.printer = newPrinter(cmd.OutOrStdout(), a.outputMode)

	a.telemetry, err = telemetry.Setup(cmd.Context(), cfg.Telemetry, telemetry.Options{
		Output:  cmd.OutOrStdout(),
		Version: version,
		Global:  true,
	})
	if err != nil {
		return err
	}

	a.collector = memento.NewHistoryCollector()
	if a.telemetry.Registry != nil {
		if err := a.telemetry.Registry.Register(a.collector); err != nil {
			return fmt.Errorf("register history collector: %w", err)
		}
	}
	return nil
}

// teardown prints Prometheus metrics if enabled, then flushes telemetry and
// closes the logger.
func (a *app) teardown(out io.Writer) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.telemetry != nil {
		if a.telemetry.Registry != nil {
			a.printer.Title("Metrics")
			keep(a.telemetry.WritePrometheus(out))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		keep(a.telemetry.Shutdown(ctx))
	}
	if a.logger != nil {
		keep(a.logger.Close())
	}
	a.telemetry = nil
	a.logger = nil
	return firstErr
}

// newHistory builds the character history described by the config and
// tracks it for Prometheus.
func (a *app) newHistory() (*memento.HistoryManager[character.Character], *memento.Recorder[character.Character]) {
	orig := memento.NewOriginator[character.Character](memento.WithLineLogger(a.logger))
	recorder := memento.NewRecorder[character.Character](a.cfg.History.RecorderCapacity)
	orig.Subscribe(recorder.Observe)

	hist := memento.NewHistoryManager(orig,
		memento.WithName(a.cfg.History.Name),
		memento.WithLogger(a.logger.Slog()),
		memento.WithTracer(memento.NewTracerFromProvider(a.telemetry.Tracer, a.logger.Slog(), a.telemetry.TracesEnabled())),
	)
	a.collector.Track(hist.Name(), hist.Count)
	return hist, recorder
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the memento version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printer.KeyValue("memento", version)
			return nil
		},
	}
}
