// Package supervisor implements the fork/wait demonstration programs: a
// parent creates exactly one child, both run their own loop, and the parent
// collects and reports the child's termination status.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jongio/proclife/logutil"
	"github.com/jongio/proclife/metrics"
	"github.com/jongio/proclife/procutil"
)

// Defaults for the loop shape.
const (
	DefaultLoops         = 25
	DefaultSleepEvery    = 10
	DefaultSleepInterval = 10 * time.Millisecond
	DefaultDelayUnit     = time.Millisecond

	// WaitLiteral as the first argument makes the parent wait before its loop.
	WaitLiteral = "wait"
)

// Workload selects what parent and child print.
type Workload int

const (
	// Counting: the parent counts up, the child counts down.
	Counting Workload = iota
	// Alphabet: both print alphabets a character at a time with random delays.
	Alphabet
)

func (w Workload) String() string {
	if w == Alphabet {
		return "alphabet"
	}
	return "counting"
}

// ChildRole is the role marker children of this workload are spawned with.
func (w Workload) ChildRole() string {
	return "supervisor-" + w.String() + "-child"
}

// Config is the supervisor's view of its arguments. The child re-parses the
// same values from the arguments the parent spawns it with.
type Config struct {
	WaitFirst     bool
	ChildExitCode int
	DisplayName   string

	Workload      Workload
	Loops         int
	SleepEvery    int
	SleepInterval time.Duration
	DelayUnit     time.Duration

	MetricsFile string
	ForwardArgs []string
}

// ParseArgs builds a Config from argv: [program, "wait"?, code?, display?].
// Any first argument other than "wait" leaves WaitFirst off.
func ParseArgs(argv []string) (Config, error) {
	if len(argv) == 0 {
		return Config{}, fmt.Errorf("missing program path")
	}

	cfg := Config{
		DisplayName:   argv[0],
		Loops:         DefaultLoops,
		SleepEvery:    DefaultSleepEvery,
		SleepInterval: DefaultSleepInterval,
		DelayUnit:     DefaultDelayUnit,
	}

	cfg.WaitFirst = len(argv) > 1 && argv[1] == WaitLiteral
	if len(argv) > 2 {
		code, err := strconv.Atoi(argv[2])
		if err != nil {
			return Config{}, fmt.Errorf("invalid child exit code %q: %w", argv[2], err)
		}
		cfg.ChildExitCode = code
	}
	if len(argv) > 3 {
		cfg.DisplayName = argv[3]
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would make the loops or the exit meaningless.
func (c Config) Validate() error {
	if c.ChildExitCode < 0 || c.ChildExitCode > 255 {
		return fmt.Errorf("invalid child exit code %d: must be between 0 and 255", c.ChildExitCode)
	}
	if c.Loops < 0 {
		return fmt.Errorf("invalid loop count %d: must not be negative", c.Loops)
	}
	if c.SleepEvery <= 0 {
		return fmt.Errorf("invalid sleep cadence %d: must be positive", c.SleepEvery)
	}
	if c.SleepInterval < 0 || c.DelayUnit < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// childArgs renders the Config so the child parses identical values.
func (c Config) childArgs() []string {
	args := []string{
		"--loops=" + strconv.Itoa(c.Loops),
		"--sleep-every=" + strconv.Itoa(c.SleepEvery),
		"--sleep-interval=" + c.SleepInterval.String(),
		"--delay-unit=" + c.DelayUnit.String(),
	}
	args = append(args, c.ForwardArgs...)

	waitArg := "nowait"
	if c.WaitFirst {
		waitArg = WaitLiteral
	}
	return append(args, "--", waitArg, strconv.Itoa(c.ChildExitCode), c.DisplayName)
}

// Run is the parent branch: create the child, run the parent loop before or
// after waiting, and report the collected status. Exactly one wait is issued
// for the child whatever happens to the parent loop.
func Run(cfg Config, stdio procutil.Stdio) (procutil.TerminationStatus, error) {
	log := logutil.NewLogger("supervisor").WithPid(os.Getpid()).WithRole("parent")
	rec := metrics.New(filepath.Base(os.Args[0]))
	defer writeMetrics(log, rec, cfg.MetricsFile)

	child, err := procutil.Spawn(cfg.Workload.ChildRole(), cfg.childArgs(), stdio)
	if err != nil {
		rec.SpawnFailed()
		return procutil.TerminationStatus{}, err
	}
	rec.ChildSpawned()

	name := cfg.DisplayName + "_parent"
	out := stdio.Out()
	fmt.Fprintf(out, "%s sees child (%d)\n", name, child.Pid)
	traceChild(log, child.Pid)

	var status procutil.TerminationStatus
	collect := func() error {
		log.Debug("waiting for child", "child", child.Pid)
		start := time.Now()
		s, err := child.Wait()
		if err != nil {
			return fmt.Errorf("failed to wait for child %d: %w", child.Pid, err)
		}
		status = s
		rec.ChildCollected(s, time.Since(start))
		log.Debug("child collected", "child", child.Pid, "status", s.String())
		return nil
	}

	if cfg.WaitFirst {
		if err := collect(); err != nil {
			return status, err
		}
	}

	loopErr := parentLoop(out, name, cfg)

	if !cfg.WaitFirst {
		if err := collect(); err != nil {
			return status, err
		}
	}
	if loopErr != nil {
		return status, fmt.Errorf("failed to write output: %w", loopErr)
	}

	if status.Exited() {
		fmt.Fprintf(out, "%s sees child (%d) return %d\n", name, child.Pid, status.Code)
	} else {
		fmt.Fprintf(out, "%s sees child (%d) return abnormally.\n", name, child.Pid)
	}
	return status, nil
}

// RunChild is the child branch. It returns the exit code the child process
// must end with; the child never waits on anything.
func RunChild(cfg Config, stdio procutil.Stdio) int {
	log := logutil.NewLogger("supervisor").WithPid(os.Getpid()).WithRole("child")
	log.Debug("child started", "loops", cfg.Loops, "exit_code", cfg.ChildExitCode)

	if err := childLoop(stdio.Out(), cfg.DisplayName+"_child", cfg); err != nil {
		log.Error("failed to write output", "error", err)
	}
	return cfg.ChildExitCode
}

func parentLoop(out *os.File, name string, cfg Config) error {
	if cfg.Workload == Alphabet {
		return alphabetLoop(out, upperAlphabet, cfg.Loops, parentDelay(cfg.DelayUnit))
	}
	return countLoop(out, name, cfg, 0, 1)
}

func childLoop(out *os.File, name string, cfg Config) error {
	if cfg.Workload == Alphabet {
		return alphabetLoop(out, lowerAlphabet, cfg.Loops, cfg.DelayUnit)
	}
	return countLoop(out, name, cfg, cfg.Loops, -1)
}

// traceChild logs what the OS reports about a fresh child. The child may
// already have exited, so lookup failures are only traced.
func traceChild(log *logutil.ComponentLogger, pid int) {
	if !logutil.IsDebugEnabled() {
		return
	}
	info, err := procutil.Describe(pid)
	if err != nil {
		log.Debug("child not inspectable", "child", pid, "error", err)
		return
	}
	log.Debug("child created", "child", pid, "name", info.Name, "cmdline", info.Cmdline)
}

func writeMetrics(log *logutil.ComponentLogger, rec *metrics.Recorder, path string) {
	if err := rec.WriteTextfile(path); err != nil {
		log.Warn("metrics not written", "error", err)
	}
}
