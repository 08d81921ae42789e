//go:build !windows

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Wait blocks until this specific child terminates and returns its status.
// It never reaps any other child of the calling process.
func (c *Child) Wait() (TerminationStatus, error) {
	if c.collected {
		return TerminationStatus{}, ErrAlreadyCollected
	}

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(c.Pid, &ws, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return TerminationStatus{}, os.NewSyscallError("wait4", err)
		}
		if wpid == c.Pid {
			break
		}
	}

	c.collected = true
	_ = c.proc.Release()
	return statusFromWait(ws), nil
}

func statusFromWait(ws unix.WaitStatus) TerminationStatus {
	switch {
	case ws.Exited():
		return TerminationStatus{State: StateExited, Code: ws.ExitStatus()}
	case ws.Signaled():
		return TerminationStatus{State: StateSignaled, Signal: ws.Signal()}
	default:
		return TerminationStatus{State: StateRunning}
	}
}

// Exec replaces the current process image with the program at path. argv
// includes argv[0]. It only returns on failure.
func Exec(path string, argv []string) error {
	err := unix.Exec(path, argv, os.Environ())
	return &ExecError{Path: path, Err: err}
}

// RedirectStdin opens path read-only and makes it the process's standard
// input. The temporary descriptor is closed afterwards.
func RedirectStdin(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return &RedirectError{Op: "open", Path: path, Err: err}
	}
	if fd == unix.Stdin {
		return nil
	}
	defer unix.Close(fd)

	if err := dup2(fd, unix.Stdin); err != nil {
		return &RedirectError{Op: "dup2", Path: path, Err: err}
	}
	return nil
}
