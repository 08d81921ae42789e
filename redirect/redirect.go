// Package redirect implements redirected execution: a child process points
// its standard input at a fixed file with dup2 and replaces itself with the
// system sort utility, while the parent waits and propagates the exit code.
package redirect

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jongio/proclife/logutil"
	"github.com/jongio/proclife/metrics"
	"github.com/jongio/proclife/procutil"
)

const (
	// DefaultInput is the program's own source, relative to the repository root.
	DefaultInput = "redirect/redirect.go"
	// DefaultSort is the line-sorting utility the child becomes.
	DefaultSort = "/usr/bin/sort"

	// ChildRole is the role marker of the redirecting child.
	ChildRole = "redirect-child"

	// exitExecFailed is the child's exit code when sort cannot be executed.
	exitExecFailed = 127
	// exitSignalBase is added to a signal number to form an exit code.
	exitSignalBase = 128
)

// Config is the redirect program's configuration.
type Config struct {
	DisplayName string
	Input       string
	SortPath    string

	MetricsFile string
	ForwardArgs []string
}

// DefaultConfig returns the configuration for a program invoked as argv0.
func DefaultConfig(argv0 string) Config {
	return Config{
		DisplayName: argv0,
		Input:       DefaultInput,
		SortPath:    DefaultSort,
	}
}

func (c Config) childArgs() []string {
	args := []string{
		"--input=" + c.Input,
		"--sort=" + c.SortPath,
		"--display-name=" + c.DisplayName,
	}
	return append(args, c.ForwardArgs...)
}

// Run is the parent branch. It creates the child, waits for it
// unconditionally and returns the exit code this program must end with.
func Run(cfg Config, stdio procutil.Stdio) (int, error) {
	log := logutil.NewLogger("redirect").WithPid(os.Getpid()).WithRole("parent")
	rec := metrics.New(filepath.Base(os.Args[0]))
	defer func() {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("metrics not written", "error", err)
		}
	}()

	child, err := procutil.Spawn(ChildRole, cfg.childArgs(), stdio)
	if err != nil {
		rec.SpawnFailed()
		return 1, err
	}
	rec.ChildSpawned()

	name := cfg.DisplayName + "_parent"
	fmt.Fprintf(stdio.Out(), "%s sees child (%d)\n", name, child.Pid)

	start := time.Now()
	status, err := child.Wait()
	if err != nil {
		return 1, fmt.Errorf("failed to wait for child %d: %w", child.Pid, err)
	}
	rec.ChildCollected(status, time.Since(start))
	log.Debug("child collected", "child", child.Pid, "status", status.String())

	switch {
	case status.Signaled():
		fmt.Fprintf(stdio.Err(), "%s sees child (%d) return abnormally.\n", name, child.Pid)
		return exitSignalBase + int(status.Signal), nil
	case status.Code != 0:
		fmt.Fprintf(stdio.Err(), "%s sees error in child: %d\n", name, status.Code)
		return status.Code, nil
	}
	return 0, nil
}

// RunChild is the child branch. On success it never returns: the process
// becomes sort reading cfg.Input as standard input. Any return carries the
// exit code for the failure, which has already been reported.
func RunChild(cfg Config, stdio procutil.Stdio) int {
	log := logutil.NewLogger("redirect").WithPid(os.Getpid()).WithRole("child")
	name := cfg.DisplayName + "_child"

	if err := procutil.RedirectStdin(cfg.Input); err != nil {
		fmt.Fprintf(stdio.Err(), "%s cannot redirect input: %v\n", name, err)
		return 1
	}
	log.Debug("stdin redirected", "input", cfg.Input)

	log.Debug("replacing image", "path", cfg.SortPath)
	err := procutil.Exec(cfg.SortPath, []string{cfg.SortPath})
	fmt.Fprintf(stdio.Err(), "%s %v\n", name, err)
	return exitExecFailed
}
