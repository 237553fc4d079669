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

import "log/slog"

// LineLogger receives one human-readable line per snapshot transition.
//
// The Originator calls LogLine after every CreateSnapshot and AdoptSnapshot.
// Implementations must not call back into the Originator that owns them.
type LineLogger interface {
	LogLine(line string)
}

// LineLoggerFunc adapts a function to LineLogger.
type LineLoggerFunc func(line string)

// LogLine calls f(line).
func (f LineLoggerFunc) LogLine(line string) {
	f(line)
}

// slogLineLogger writes lines as Info records.
type slogLineLogger struct {
	logger *slog.Logger
}

// NewSlogLineLogger returns a LineLogger that writes each line as an Info
// record on logger. Uses slog.Default() if logger is nil.
func NewSlogLineLogger(logger *slog.Logger) LineLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLineLogger{logger: logger}
}

// LogLine implements LineLogger.
func (l *slogLineLogger) LogLine(line string) {
	l.logger.Info(line, slog.String("component", "memento"))
}

// NopLineLogger returns a LineLogger that discards every line.
func NopLineLogger() LineLogger {
	return LineLoggerFunc(func(string) {})
}
