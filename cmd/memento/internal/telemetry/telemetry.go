// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry sets up OpenTelemetry providers for the memento CLI.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AleutianAI/AleutianMemento/cmd/memento/config"
	"github.com/AleutianAI/AleutianMemento/pkg/memento"
)

// ErrUnknownExporter is returned for an exporter name Setup does not know.
var ErrUnknownExporter = errors.New("unknown exporter")

// Options controls where stdout exporters write and whether providers are
// installed globally.
type Options struct {
	// Output receives stdout trace and metric exports. Default: os.Stdout.
	Output io.Writer

	// Version is reported as service.version.
	Version string

	// Global installs the providers with otel.SetTracerProvider and
	// otel.SetMeterProvider.
	Global bool
}

// Providers holds the configured providers. Tracer and Meter are never nil;
// they are noop providers when the matching signal is disabled.
type Providers struct {
	Tracer   oteltrace.TracerProvider
	Meter    otelmetric.MeterProvider
	Registry *prometheus.Registry // nil unless metrics is prometheus

	tracesEnabled  bool
	metricsEnabled bool
	shutdownFuncs  []func(context.Context) error
}

// TracesEnabled reports whether a trace exporter is configured.
func (p *Providers) TracesEnabled() bool {
	return p.tracesEnabled
}

// MetricsEnabled reports whether a metric exporter is configured.
func (p *Providers) MetricsEnabled() bool {
	return p.metricsEnabled
}

// Setup builds providers for cfg.
//
// Description:
//
//	traces:  none -> noop provider; stdout -> stdouttrace; otlp -> OTLP gRPC
//	         exporter to cfg.OTLPEndpoint (insecure).
//	metrics: none -> memento metrics disabled; stdout -> stdoutmetric with a
//	         periodic reader flushed on Shutdown; prometheus -> otel
//	         Prometheus exporter registered on a private Registry.
//
// Outputs:
//   - *Providers: Call Shutdown on exit.
//   - error: ErrUnknownExporter or an exporter construction error.
//
// Thread Safety: Call once at startup.
func Setup(ctx context.Context, cfg config.TelemetryConfig, opts Options) (*Providers, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", opts.Version),
	)

	p := &Providers{
		Tracer: noop.NewTracerProvider(),
		Meter:  metricnoop.NewMeterProvider(),
	}

	// --- TRACES ---
	if cfg.Traces != config.BackendNone {
		tp, err := initTracer(ctx, cfg, opts.Output, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		p.Tracer = tp
		p.tracesEnabled = true
		p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)
		if opts.Global {
			otel.SetTracerProvider(tp)
		}
	}

	// --- METRICS ---
	memento.SetMetricsEnabled(cfg.Metrics != config.BackendNone)
	if cfg.Metrics != config.BackendNone {
		mp, reg, err := initMeter(cfg, opts.Output, res)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		p.Meter = mp
		p.Registry = reg
		p.metricsEnabled = true
		p.shutdownFuncs = append(p.shutdownFuncs, mp.Shutdown)
		if opts.Global {
			otel.SetMeterProvider(mp)
		}
	}

	return p, nil
}

// Shutdown flushes and stops every provider. Errors are joined.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdownFuncs = nil
	return errors.Join(errs...)
}

// WritePrometheus writes everything gathered from the Prometheus registry in
// text exposition format. It writes nothing when metrics is not prometheus.
func (p *Providers) WritePrometheus(w io.Writer) error {
	if p.Registry == nil {
		return nil
	}
	families, err := p.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func initTracer(ctx context.Context, cfg config.TelemetryConfig, out io.Writer, res *resource.Resource) (*trace.TracerProvider, error) {
	switch cfg.Traces {
	case config.BackendOTLP:
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		return trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
			trace.WithSampler(trace.AlwaysSample()),
		), nil

	case config.BackendStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		// Synchronous so spans print in operation order
		return trace.NewTracerProvider(
			trace.WithSyncer(exporter),
			trace.WithResource(res),
			trace.WithSampler(trace.AlwaysSample()),
		), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Traces)
	}
}

func initMeter(cfg config.TelemetryConfig, out io.Writer, res *resource.Resource) (*metric.MeterProvider, *prometheus.Registry, error) {
	switch cfg.Metrics {
	case config.BackendPrometheus:
		reg := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		), reg, nil

	case config.BackendStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(exporter)),
		), nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Metrics)
	}
}
