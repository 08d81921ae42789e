//go:build windows

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import "errors"

// Wait is not supported on Windows.
func (c *Child) Wait() (TerminationStatus, error) {
	if c.collected {
		return TerminationStatus{}, ErrAlreadyCollected
	}
	return TerminationStatus{}, errors.ErrUnsupported
}

// Exec is not supported on Windows: there is no in-place image replacement.
func Exec(path string, argv []string) error {
	return &ExecError{Path: path, Err: errors.ErrUnsupported}
}

// RedirectStdin is not supported on Windows.
func RedirectStdin(path string) error {
	return &RedirectError{Op: "open", Path: path, Err: errors.ErrUnsupported}
}
