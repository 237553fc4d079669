// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the memento CLI configuration.
package config

// DefaultPath is read when --config is not given. A missing file at the
// default path is not an error.
const DefaultPath = "memento.yaml"

// Telemetry backend names.
const (
	BackendNone       = "none"
	BackendStdout     = "stdout"
	BackendOTLP       = "otlp"
	BackendPrometheus = "prometheus"
)

// Config is the root of memento.yaml.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`

	// JSON writes stderr logs as JSON instead of text.
	JSON bool `yaml:"json"`

	// Dir enables an additional JSON log file in this directory.
	Dir string `yaml:"dir,omitempty"`
}

// HistoryConfig controls the history driven by demo and run.
type HistoryConfig struct {
	// Name labels the history in logs, spans and metrics.
	Name string `yaml:"name" validate:"required,max=64"`

	// RecorderCapacity bounds the notification recorder.
	RecorderCapacity int `yaml:"recorder_capacity" validate:"gte=1,lte=10000"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" validate:"required"`

	// Traces is one of none, stdout, otlp.
	Traces string `yaml:"traces" validate:"required,oneof=none stdout otlp"`

	// OTLPEndpoint is the host:port of an OTLP gRPC collector. Required
	// when Traces is otlp.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Traces otlp,omitempty,hostname_port"`

	// Metrics is one of none, stdout, prometheus. With prometheus, the
	// gathered metrics are printed in text exposition format on exit.
	Metrics string `yaml:"metrics" validate:"required,oneof=none stdout prometheus"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Name:             "characters",
			RecorderCapacity: 100,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "memento",
			Traces:      BackendNone,
			Metrics:     BackendNone,
		},
	}
}
