// Package handoff implements a pair of programs that take turns replacing
// their own process image with each other while carrying a counter forward
// in their arguments.
//
// A program named counterA counts loops times and then execs counterB from
// the same directory with the loop count and the next counter value, and
// counterB does the same back. The pid never changes; only the image does.
package handoff

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jongio/proclife/logutil"
	"github.com/jongio/proclife/procutil"
)

// Default positional values.
const (
	DefaultLoops = 10
	DefaultStart = 0
)

// Config is the handoff program's view of its arguments.
type Config struct {
	// Executable is argv[0] as invoked; the partner is derived from it.
	Executable  string
	Loops       int
	Start       int
	DisplayName string

	// StopAt ends the chain once the counter reaches it. 0 hands off forever.
	StopAt int
	// ForwardArgs are extra flags passed on to the partner.
	ForwardArgs []string
}

// ParseArgs builds a Config from argv: [program, loops?, start?, display?].
func ParseArgs(argv []string) (Config, error) {
	if len(argv) == 0 {
		return Config{}, fmt.Errorf("missing program path")
	}

	cfg := Config{
		Executable:  argv[0],
		Loops:       DefaultLoops,
		Start:       DefaultStart,
		DisplayName: Stem(argv[0]),
	}

	if len(argv) > 1 {
		loops, err := strconv.Atoi(argv[1])
		if err != nil {
			return Config{}, fmt.Errorf("invalid loop count %q: %w", argv[1], err)
		}
		if loops < 0 {
			return Config{}, fmt.Errorf("invalid loop count %d: must not be negative", loops)
		}
		cfg.Loops = loops
	}
	if len(argv) > 2 {
		start, err := strconv.Atoi(argv[2])
		if err != nil {
			return Config{}, fmt.Errorf("invalid start value %q: %w", argv[2], err)
		}
		cfg.Start = start
	}
	if len(argv) > 3 {
		cfg.DisplayName = argv[3]
	}
	return cfg, nil
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Partner returns the sibling executable of path: same directory, stem with
// its trailing 'A' and 'B' swapped. Any extension is dropped.
//
// Partner panics when the stem does not end in 'A' or 'B'; the pair is
// always installed under such names.
func Partner(path string) string {
	stem := Stem(path)
	if stem == "" {
		panic(fmt.Sprintf("handoff: cannot derive partner of %q", path))
	}

	var last byte
	switch stem[len(stem)-1] {
	case 'A':
		last = 'B'
	case 'B':
		last = 'A'
	default:
		panic(fmt.Sprintf("handoff: program name %q must end in A or B", stem))
	}

	return filepath.Join(filepath.Dir(path), stem[:len(stem)-1]+string(last))
}

// Count writes one line per loop and returns the counter value the partner
// should continue from.
func Count(w io.Writer, cfg Config, pid int) (int, error) {
	counter := cfg.Start
	for i := 0; i < cfg.Loops; i++ {
		if _, err := fmt.Fprintf(w, "%s(%d): counts %d\n", cfg.DisplayName, pid, counter); err != nil {
			return counter, err
		}
		counter++
	}
	return counter, nil
}

// PartnerArgv is the argument vector the partner is exec'd with. Flags come
// first and the counters follow "--", so a negative counter stays positional.
func (c Config) PartnerArgv(partner string, next int) []string {
	argv := []string{partner}
	if c.StopAt > 0 {
		argv = append(argv, "--stop-at="+strconv.Itoa(c.StopAt))
	}
	argv = append(argv, c.ForwardArgs...)
	return append(argv, "--", strconv.Itoa(c.Loops), strconv.Itoa(next))
}

// Run counts, flushes and replaces the process with the partner. It returns
// nil only when StopAt ended the chain; every other return is a failed
// handoff and the caller must exit non-zero.
func Run(cfg Config, stdout io.Writer) error {
	log := logutil.NewLogger("handoff").WithPid(os.Getpid())

	out := bufio.NewWriter(stdout)
	next, err := Count(out, cfg, os.Getpid())
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	// exec discards anything still buffered
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	if cfg.StopAt > 0 && next >= cfg.StopAt {
		log.Debug("stop value reached", "counter", next, "stop_at", cfg.StopAt)
		return nil
	}

	self, err := resolveSelf(cfg.Executable)
	if err != nil {
		return err
	}
	partner := Partner(self)
	argv := cfg.PartnerArgv(partner, next)

	log.Debug("handing off", "partner", partner, "argv", argv)
	return procutil.Exec(partner, argv)
}

// resolveSelf finds the running program when it was started through PATH,
// since a bare name has no directory to find the partner in.
func resolveSelf(argv0 string) (string, error) {
	if strings.ContainsRune(argv0, filepath.Separator) {
		return argv0, nil
	}
	path, err := exec.LookPath(argv0)
	if err != nil {
		return "", fmt.Errorf("failed to locate %s: %w", argv0, err)
	}
	return path, nil
}
