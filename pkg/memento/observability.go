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
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const mementoTracerName = "aleutian.memento"

// Span names for history operations.
const (
	spanSave              = "memento.save"
	spanRestoreByIndex    = "memento.restore_by_index"
	spanRestoreBySnapshot = "memento.restore_by_snapshot"
)

// Tracer provides OpenTelemetry tracing for history operations.
//
// # Description
//
// Wraps an OpenTelemetry tracer with history-specific span creation and
// attribute management. When disabled, returns noop spans for zero overhead.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a tracer backed by the global TracerProvider.
//
// # Inputs
//
//   - logger: Logger for structured logging. Uses slog.Default() if nil.
//   - enabled: Whether tracing is enabled. When false, uses noop spans.
//
// # Outputs
//
//   - *Tracer: Ready-to-use tracer instance.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	return NewTracerFromProvider(otel.GetTracerProvider(), logger, enabled)
}

// NewTracerFromProvider creates a tracer backed by the given provider.
//
// # Inputs
//
//   - tp: Provider to create spans from. Uses the global provider if nil.
//   - logger: Logger for structured logging. Uses slog.Default() if nil.
//   - enabled: Whether tracing is enabled. When false, uses noop spans.
//
// # Outputs
//
//   - *Tracer: Ready-to-use tracer instance.
func NewTracerFromProvider(tp trace.TracerProvider, logger *slog.Logger, enabled bool) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{
		tracer:  tp.Tracer(mementoTracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartSave starts a span for a save operation.
//
// # Inputs
//
//   - ctx: Parent context for span creation.
//   - history: Name of the history manager.
//   - count: History length before the save.
//
// # Outputs
//
//   - context.Context: Context with span attached.
//   - trace.Span: The created span. Caller must call EndSave.
func (t *Tracer) StartSave(ctx context.Context, history string, count int) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	ctx, span := t.tracer.Start(ctx, spanSave,
		trace.WithAttributes(
			attribute.String("history.name", history),
			attribute.Int("history.count", count),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	t.logger.DebugContext(ctx, "saving snapshot",
		slog.String("history", history),
		slog.Int("count", count),
	)

	return ctx, span
}

// EndSave completes a save span.
//
// # Inputs
//
//   - span: The span to end.
//   - info: The saved snapshot.
//   - count: History length after the save.
func (t *Tracer) EndSave(span trace.Span, info SnapshotInfo, count int) {
	if span == nil {
		return
	}
	defer span.End()

	span.SetStatus(codes.Ok, "")
	span.SetAttributes(
		attribute.String("snapshot.id", info.ID.String()),
		attribute.Int64("snapshot.seq", int64(info.Seq)),
		attribute.Int("history.count_after", count),
	)
}

// StartRestoreByIndex starts a span for a restore by position.
//
// # Inputs
//
//   - ctx: Parent context for span creation.
//   - history: Name of the history manager.
//   - index: Requested position.
//   - count: Current history length.
//
// # Outputs
//
//   - context.Context: Context with span attached.
//   - trace.Span: The created span. Caller must call EndRestore.
func (t *Tracer) StartRestoreByIndex(ctx context.Context, history string, index, count int) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	return t.tracer.Start(ctx, spanRestoreByIndex,
		trace.WithAttributes(
			attribute.String("history.name", history),
			attribute.Int("history.count", count),
			attribute.Int("restore.index", index),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRestoreBySnapshot starts a span for a restore by identity.
//
// # Inputs
//
//   - ctx: Parent context for span creation.
//   - history: Name of the history manager.
//   - display: Rendered value of the requested snapshot.
//   - count: Current history length.
//
// # Outputs
//
//   - context.Context: Context with span attached.
//   - trace.Span: The created span. Caller must call EndRestore.
func (t *Tracer) StartRestoreBySnapshot(ctx context.Context, history, display string, count int) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	return t.tracer.Start(ctx, spanRestoreBySnapshot,
		trace.WithAttributes(
			attribute.String("history.name", history),
			attribute.Int("history.count", count),
			attribute.String("restore.snapshot", truncateForTrace(display, 100)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndRestore completes a restore span.
//
// # Inputs
//
//   - span: The span to end.
//   - info: The adopted snapshot (ignored on error).
//   - err: Error if the restore was rejected.
func (t *Tracer) EndRestore(span trace.Span, info SnapshotInfo, err error) {
	if span == nil {
		return
	}
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "")
	span.SetAttributes(
		attribute.String("snapshot.id", info.ID.String()),
		attribute.Int64("snapshot.seq", int64(info.Seq)),
	)
}

// truncateForTrace truncates a string for use in span attributes.
// Prevents excessive memory usage from long strings.
//
// If maxLen is less than 4, returns at most maxLen characters without suffix.
func truncateForTrace(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		if maxLen <= 0 {
			return ""
		}
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// LoggerWithTrace returns a logger with trace context fields.
//
// # Inputs
//
//   - ctx: Context that may contain trace information.
//   - logger: Base logger to extend.
//
// # Outputs
//
//   - *slog.Logger: Logger with trace_id and span_id if available.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}
