// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the diagnostic logger shared by the proclife
// programs, built on log/slog.
//
// Diagnostics always go to standard error so they never mix with a
// program's own output templates on standard output.
//
// # Basic Usage
//
//	// Configure once, from the command's persistent flags
//	logutil.Setup(os.Stderr, debug, logutil.FormatAuto)
//
//	logutil.Debug("spawned child", "pid", pid)
//	logutil.Error("wait failed", "error", err)
//
// # Formats
//
// FormatText and FormatJSON select slog's text or JSON handler. FormatAuto
// picks text when the output is a terminal and JSON otherwise, so piped
// diagnostics stay machine-readable.
//
// # Component loggers
//
//	log := logutil.NewLogger("supervisor").WithPid(os.Getpid())
//	log.Debug("waiting for child", "child", child.Pid)
package logutil
