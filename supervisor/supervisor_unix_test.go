//go:build !windows

package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/procutil"
	"github.com/jongio/proclife/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// envSelfKill makes a spawned child terminate itself with SIGKILL.
const envSelfKill = "SUPERVISOR_TEST_SELF_KILL"

func TestMain(m *testing.M) {
	switch os.Getenv(procutil.EnvRole) {
	case Counting.ChildRole():
		if os.Getenv(envSelfKill) != "" {
			_ = unix.Kill(os.Getpid(), unix.SIGKILL)
			time.Sleep(time.Minute)
		}
		os.Exit(cmdutil.Execute(NewCommand("letusfork", Counting)))
	case Alphabet.ChildRole():
		os.Exit(cmdutil.Execute(NewCommand("mixitup", Alphabet)))
	}
	os.Exit(m.Run())
}

func testConfig() Config {
	return Config{
		DisplayName:   "sup",
		Workload:      Counting,
		Loops:         5,
		SleepEvery:    2,
		SleepInterval: time.Millisecond,
		DelayUnit:     time.Microsecond,
	}
}

func TestRunReportsChildExitCode(t *testing.T) {
	for _, code := range []int{0, 3, 255} {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			cfg := testConfig()
			cfg.ChildExitCode = code
			out := testutil.OutputFile(t)

			status, err := Run(cfg, procutil.Stdio{Stdout: out})
			require.NoError(t, err)
			assert.True(t, status.Exited())
			assert.Equal(t, code, status.Code)

			output := testutil.ReadOutput(t, out)
			assert.Equal(t, 5, strings.Count(output, "sup_parent counts "))
			assert.Equal(t, 5, strings.Count(output, "sup_child counts "))
			assert.Contains(t, output, "sup_child counts 5\n")
			assert.Contains(t, output, "sup_child counts 1\n")
			assert.NotContains(t, output, "sup_child counts 0\n")
			assert.Contains(t, output, fmt.Sprintf(") return %d\n", code))
		})
	}
}

func TestRunWaitFirstRunsChildBeforeParent(t *testing.T) {
	cfg := testConfig()
	cfg.WaitFirst = true
	out := testutil.OutputFile(t)

	_, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)

	output := testutil.ReadOutput(t, out)
	lastChild := strings.LastIndex(output, "sup_child counts")
	firstParent := strings.Index(output, "sup_parent counts")
	require.GreaterOrEqual(t, lastChild, 0)
	require.GreaterOrEqual(t, firstParent, 0)
	assert.Less(t, lastChild, firstParent, "child must finish before the parent loop starts:\n%s", output)
}

// headerRE matches the parent's first report line. It is a single write,
// so it is never split by child output even though its position may vary.
var headerRE = regexp.MustCompile(`sup_parent sees child \((\d+)\)\n`)

func cutHeader(t *testing.T, output string) (string, int) {
	t.Helper()
	m := headerRE.FindStringSubmatch(output)
	require.NotNil(t, m, "no header in %q", output)
	pid, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	return strings.Replace(output, m[0], "", 1), pid
}

func TestRunReportLines(t *testing.T) {
	cfg := testConfig()
	cfg.WaitFirst = true
	cfg.ChildExitCode = 6
	out := testutil.OutputFile(t)

	_, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)

	body, pid := cutHeader(t, testutil.ReadOutput(t, out))
	assert.Greater(t, pid, 0)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, fmt.Sprintf("sup_parent sees child (%d) return 6", pid), lines[10])
	assert.False(t, procutil.IsProcessRunning(pid), "child must be collected")
}

func TestRunAbnormalChild(t *testing.T) {
	t.Setenv(envSelfKill, "1")
	cfg := testConfig()
	cfg.ChildExitCode = 2
	out := testutil.OutputFile(t)

	status, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)
	assert.False(t, status.Exited())
	assert.True(t, status.Signaled())
	assert.Equal(t, unix.SIGKILL, status.Signal)

	output := testutil.ReadOutput(t, out)
	assert.Contains(t, output, ") return abnormally.\n")
	assert.NotContains(t, output, "return 2")
}

func TestRunAlphabetWaitFirst(t *testing.T) {
	cfg := testConfig()
	cfg.Workload = Alphabet
	cfg.WaitFirst = true
	cfg.Loops = 2
	out := testutil.OutputFile(t)

	_, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)

	body, pid := cutHeader(t, testutil.ReadOutput(t, out))
	want := strings.Repeat(lowerAlphabet+"\n", 2) +
		strings.Repeat(upperAlphabet+"\n", 2) +
		fmt.Sprintf("sup_parent sees child (%d) return 0\n", pid)
	assert.Equal(t, want, body)
}

func TestRunAlphabetInterleaved(t *testing.T) {
	cfg := testConfig()
	cfg.Workload = Alphabet
	cfg.Loops = 2
	cfg.ChildExitCode = 1
	out := testutil.OutputFile(t)

	status, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)
	assert.Equal(t, 1, status.Code)

	body, pid := cutHeader(t, testutil.ReadOutput(t, out))
	footer := fmt.Sprintf("sup_parent sees child (%d) return 1\n", pid)
	require.True(t, strings.HasSuffix(body, footer), "footer missing from %q", body)
	body = strings.TrimSuffix(body, footer)

	var upper, lower, newlines int
	for _, r := range body {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= 'a' && r <= 'z':
			lower++
		case r == '\n':
			newlines++
		}
	}
	assert.Equal(t, 52, upper)
	assert.Equal(t, 52, lower)
	assert.Equal(t, 4, newlines)
}

func TestRunWritesMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.ChildExitCode = 3
	cfg.MetricsFile = filepath.Join(t.TempDir(), "supervisor.prom")
	out := testutil.OutputFile(t)

	_, err := Run(cfg, procutil.Stdio{Stdout: out})
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "proclife_children_spawned_total")
	assert.Contains(t, string(data), "proclife_child_exit_code")
	assert.Regexp(t, `proclife_child_exit_code\{[^}]*\} 3`, string(data))
}

func TestCommandEndToEnd(t *testing.T) {
	cmd := NewCommand("letusfork", Counting)
	cmd.SetArgs([]string{"--loops=3", "--sleep-interval=1ms", "nowait", "4", "demo"})

	var code int
	output := testutil.CaptureOutput(t, func() error {
		code = cmdutil.Execute(cmd)
		return nil
	})

	assert.Equal(t, 0, code, "the parent exits 0 whatever the child returns")
	assert.Regexp(t, `demo_parent sees child \(\d+\) return 4\n`, output)
	assert.Equal(t, 3, strings.Count(output, "demo_child counts"))
}

func TestCommandRejectsBadArgs(t *testing.T) {
	tests := [][]string{
		{"wait", "abc"},
		{"wait", "1", "name", "extra"},
		{"--sleep-every=0"},
		{"--log-format=xml"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			cmd := NewCommand("letusfork", Counting)
			cmd.SetArgs(args)
			cmd.SetErr(&strings.Builder{})
			assert.Equal(t, 1, cmdutil.Execute(cmd))
		})
	}
}
