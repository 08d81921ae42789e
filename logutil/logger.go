// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import "log/slog"

// ComponentLogger provides component-scoped structured logging.
type ComponentLogger struct {
	slogger   *slog.Logger
	component string
}

// NewLogger creates a logger scoped to a named component. Create it after
// Setup has run; it keeps the handler that was current at creation.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   Logger().With("component", component),
		component: component,
	}
}

// WithPid returns a logger tagged with the process that is logging.
func (l *ComponentLogger) WithPid(pid int) *ComponentLogger {
	return l.WithFields("pid", pid)
}

// WithRole returns a logger tagged with the lifecycle branch, e.g. "parent".
func (l *ComponentLogger) WithRole(role string) *ComponentLogger {
	return l.WithFields("role", role)
}

// WithFields returns a new logger with additional key-value pairs.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	return &ComponentLogger{
		slogger:   l.slogger.With(fields...),
		component: l.component,
	}
}

// Component returns the component name for this logger.
func (l *ComponentLogger) Component() string {
	return l.component
}

func (l *ComponentLogger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }
func (l *ComponentLogger) Info(msg string, args ...any)  { l.slogger.Info(msg, args...) }
func (l *ComponentLogger) Warn(msg string, args ...any)  { l.slogger.Warn(msg, args...) }
func (l *ComponentLogger) Error(msg string, args ...any) { l.slogger.Error(msg, args...) }
