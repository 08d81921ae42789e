//go:build !windows

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// Roles the test binary takes when re-executed by Spawn.
const (
	roleExit  = "test-exit"
	roleKill  = "test-kill"
	roleExec  = "test-exec"
	roleStdin = "test-stdin"
)

func TestMain(m *testing.M) {
	if role := TakeRole(); role != "" {
		os.Exit(runRole(role, os.Args[1:]))
	}
	os.Exit(m.Run())
}

func runRole(role string, args []string) int {
	switch role {
	case roleExit:
		code, _ := strconv.Atoi(args[0])
		return code
	case roleKill:
		_ = unix.Kill(os.Getpid(), unix.SIGTERM)
		time.Sleep(time.Minute)
		return 98
	case roleExec:
		err := Exec("/bin/sh", []string{"sh", "-c", args[0]})
		fmt.Fprintln(os.Stderr, err)
		return 127
	case roleStdin:
		if err := RedirectStdin(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if _, err := io.Copy(os.Stdout, os.Stdin); err != nil {
			return 3
		}
		return 0
	}
	return 99
}

func captureFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func readAll(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(data)
}

func TestSpawnWaitExitCode(t *testing.T) {
	for _, code := range []int{0, 1, 3, 42} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			child, err := Spawn(roleExit, []string{strconv.Itoa(code)}, Stdio{})
			require.NoError(t, err)
			assert.Greater(t, child.Pid, 0)

			status, err := child.Wait()
			require.NoError(t, err)
			assert.True(t, status.Exited())
			assert.Equal(t, code, status.Code)
		})
	}
}

func TestSpawnWaitSignaled(t *testing.T) {
	child, err := Spawn(roleKill, nil, Stdio{})
	require.NoError(t, err)

	status, err := child.Wait()
	require.NoError(t, err)
	assert.False(t, status.Exited())
	assert.True(t, status.Signaled())
	assert.Equal(t, syscall.SIGTERM, status.Signal)
}

func TestWaitTwice(t *testing.T) {
	child, err := Spawn(roleExit, []string{"0"}, Stdio{})
	require.NoError(t, err)

	_, err = child.Wait()
	require.NoError(t, err)

	_, err = child.Wait()
	assert.ErrorIs(t, err, ErrAlreadyCollected)
}

func TestWaitReapsChild(t *testing.T) {
	child, err := Spawn(roleExit, []string{"0"}, Stdio{})
	require.NoError(t, err)

	_, err = child.Wait()
	require.NoError(t, err)
	assert.False(t, IsProcessRunning(child.Pid), "collected child should be gone")
}

func TestExecKeepsPid(t *testing.T) {
	out := captureFile(t)
	child, err := Spawn(roleExec, []string{"echo $$; exit 7"}, Stdio{Stdout: out})
	require.NoError(t, err)

	status, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, status.Code)
	assert.Equal(t, strconv.Itoa(child.Pid), strings.TrimSpace(readAll(t, out)))
}

func TestExecFailure(t *testing.T) {
	err := Exec("/nonexistent/program", []string{"program"})

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "/nonexistent/program", execErr.Path)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestRedirectStdin(t *testing.T) {
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("first\nsecond\n"), 0o600))

	out := captureFile(t)
	child, err := Spawn(roleStdin, []string{input}, Stdio{Stdout: out})
	require.NoError(t, err)

	status, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, status.Code)
	assert.Equal(t, "first\nsecond\n", readAll(t, out))
}

func TestRedirectStdinMissingFile(t *testing.T) {
	err := RedirectStdin(filepath.Join(t.TempDir(), "missing"))

	var redirectErr *RedirectError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, "open", redirectErr.Op)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestStatusFromWait(t *testing.T) {
	tests := []struct {
		name string
		ws   unix.WaitStatus
		want TerminationStatus
	}{
		{"exit 0", unix.WaitStatus(0), TerminationStatus{State: StateExited}},
		{"exit 3", unix.WaitStatus(3 << 8), TerminationStatus{State: StateExited, Code: 3}},
		{"sigkill", unix.WaitStatus(9), TerminationStatus{State: StateSignaled, Signal: syscall.SIGKILL}},
		{"stopped", unix.WaitStatus(0x7f | 19<<8), TerminationStatus{State: StateRunning}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromWait(tt.ws))
		})
	}
}
