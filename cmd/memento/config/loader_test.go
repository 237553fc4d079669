// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
log:
  level: debug
history:
  name: party
telemetry:
  traces: otlp
  otlp_endpoint: localhost:4317
  metrics: prometheus
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "party", cfg.History.Name)
	assert.Equal(t, 100, cfg.History.RecorderCapacity, "missing fields keep defaults")
	assert.Equal(t, BackendOTLP, cfg.Telemetry.Traces)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, BackendPrometheus, cfg.Telemetry.Metrics)
	assert.Equal(t, "memento", cfg.Telemetry.ServiceName)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("history:\n  nmae: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmae")
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
		rule  string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level", "oneof"},
		{"empty history name", "history:\n  name: \"\"\n", "history.name", "required"},
		{"capacity too small", "history:\n  recorder_capacity: 0\n", "history.recorder_capacity", "gte"},
		{"capacity too large", "history:\n  recorder_capacity: 10001\n", "history.recorder_capacity", "lte"},
		{"bad traces", "telemetry:\n  traces: jaeger\n", "telemetry.traces", "oneof"},
		{"bad metrics", "telemetry:\n  metrics: statsd\n", "telemetry.metrics", "oneof"},
		{"otlp without endpoint", "telemetry:\n  traces: otlp\n", "telemetry.otlp_endpoint", "required_if"},
		{"malformed endpoint", "telemetry:\n  traces: otlp\n  otlp_endpoint: not-a-host-port\n", "telemetry.otlp_endpoint", "hostname_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.rule, verr.Fields[0].Rule)
			assert.Contains(t, err.Error(), "invalid config: "+tt.field)
		})
	}
}

func TestLoad_MissingDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memento.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  json: true\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_InvalidFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memento.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memento.yaml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, Default(), cfg)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestWriteDefault_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memento.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0600))

	err := WriteDefault(path, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, WriteDefault(path, true))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestMarshal_OmitsEmptyOptionalFields(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "recorder_capacity: 100")
	assert.NotContains(t, out, "otlp_endpoint")
	assert.NotContains(t, out, "dir:")
}
