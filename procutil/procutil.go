// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

// EnvRole is the environment variable that tells a re-executed binary which
// branch of the lifecycle it is running. It is cleared by TakeRole.
const EnvRole = "PROCLIFE_ROLE"

// ErrAlreadyCollected is returned by Wait when the child's status was
// already collected.
var ErrAlreadyCollected = errors.New("child status already collected")

// State is the resolution of a child's TerminationStatus.
type State int

const (
	// StateRunning means no termination has been observed.
	StateRunning State = iota
	// StateExited means the child exited normally with a code.
	StateExited
	// StateSignaled means the child was terminated by a signal.
	StateSignaled
)

func (s State) String() string {
	switch s {
	case StateExited:
		return "exited"
	case StateSignaled:
		return "signaled"
	default:
		return "running"
	}
}

// TerminationStatus is the resolved outcome of a wait.
type TerminationStatus struct {
	State  State
	Code   int
	Signal syscall.Signal
}

// Exited reports whether the child exited normally.
func (s TerminationStatus) Exited() bool {
	return s.State == StateExited
}

// Signaled reports whether the child was terminated by a signal.
func (s TerminationStatus) Signaled() bool {
	return s.State == StateSignaled
}

func (s TerminationStatus) String() string {
	switch s.State {
	case StateExited:
		return fmt.Sprintf("exited with code %d", s.Code)
	case StateSignaled:
		return fmt.Sprintf("terminated by signal %d (%s)", int(s.Signal), s.Signal)
	default:
		return "running"
	}
}

// SpawnError reports that a child process could not be created.
type SpawnError struct {
	Role string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to create %s process: %v", e.Role, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExecError reports that replacing the process image failed. The calling
// process is still running its old image.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// RedirectError reports that standard input could not be redirected.
type RedirectError struct {
	Op   string
	Path string
	Err  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// Stdio holds the descriptors a child inherits. Nil fields fall back to the
// parent's own standard streams.
type Stdio struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// In returns the standard input, defaulting to os.Stdin.
func (s Stdio) In() *os.File {
	if s.Stdin != nil {
		return s.Stdin
	}
	return os.Stdin
}

// Out returns the standard output, defaulting to os.Stdout.
func (s Stdio) Out() *os.File {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

// Err returns the standard error, defaulting to os.Stderr.
func (s Stdio) Err() *os.File {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}

func (s Stdio) files() []*os.File {
	return []*os.File{s.In(), s.Out(), s.Err()}
}

// Child is the parent's handle on a created child process.
type Child struct {
	// Pid is the child's process identifier; always > 0.
	Pid int

	proc      *os.Process
	collected bool
}

// TakeRole returns the role this process was spawned with and removes the
// marker from the environment. It returns "" for a process started by a user.
func TakeRole() string {
	role := os.Getenv(EnvRole)
	if role != "" {
		_ = os.Unsetenv(EnvRole)
	}
	return role
}

// Spawn creates a child by re-executing the current binary with the given
// role and arguments. The child keeps the parent's argv[0].
func Spawn(role string, args []string, stdio Stdio) (*Child, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, &SpawnError{Role: role, Err: err}
	}

	argv := append([]string{os.Args[0]}, args...)
	proc, err := os.StartProcess(exe, argv, &os.ProcAttr{
		Env:   roleEnv(os.Environ(), role),
		Files: stdio.files(),
	})
	if err != nil {
		return nil, &SpawnError{Role: role, Err: err}
	}

	return &Child{Pid: proc.Pid, proc: proc}, nil
}

func roleEnv(environ []string, role string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, EnvRole+"=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, EnvRole+"="+role)
}

// IsProcessRunning checks if a process with the given PID exists.
// An exited child that has not been waited for still exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 || pid > math.MaxInt32 {
		return false
	}

	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return exists
}

// ProcessInfo describes a running process.
type ProcessInfo struct {
	Pid     int
	Name    string
	Cmdline string
}

// Describe looks up the name and command line of a running process.
func Describe(pid int) (ProcessInfo, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return ProcessInfo{}, fmt.Errorf("invalid pid %d", pid)
	}

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ProcessInfo{}, fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}

	name, err := p.Name()
	if err != nil {
		return ProcessInfo{}, fmt.Errorf("failed to read name of process %d: %w", pid, err)
	}
	// cmdline can be unreadable for processes owned by other users
	cmdline, _ := p.Cmdline()

	return ProcessInfo{Pid: pid, Name: name, Cmdline: cmdline}, nil
}
