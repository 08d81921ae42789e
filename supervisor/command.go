package supervisor

import (
	"errors"
	"fmt"
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/logutil"
	"github.com/jongio/proclife/procutil"
	"github.com/jongio/proclife/version"
	"github.com/spf13/cobra"
)

// NewCommand creates a supervisor program running workload w.
func NewCommand(name string, w Workload) *cobra.Command {
	var (
		logOpts cmdutil.LogOptions
		flags   = Config{
			Loops:         DefaultLoops,
			SleepEvery:    DefaultSleepEvery,
			SleepInterval: DefaultSleepInterval,
			DelayUnit:     DefaultDelayUnit,
		}
	)

	cmd := &cobra.Command{
		Use:   name + " [wait] [child-exit-code] [display-name]",
		Short: "Create one child, run parent and child loops, and collect the child's status",
		Long: fmt.Sprintf(`%s creates one child process. With "wait" as the first argument the
parent waits for the child before running its own loop; otherwise it waits
afterwards. The child exits with child-exit-code (default 0) and the parent
reports what it collected.`, name),
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logOpts.Apply(cmd.ErrOrStderr()); err != nil {
				return err
			}

			cfg, err := ParseArgs(append([]string{os.Args[0]}, args...))
			if err != nil {
				return err
			}
			cfg.Workload = w
			cfg.Loops = flags.Loops
			cfg.SleepEvery = flags.SleepEvery
			cfg.SleepInterval = flags.SleepInterval
			cfg.DelayUnit = flags.DelayUnit
			cfg.MetricsFile = flags.MetricsFile
			cfg.ForwardArgs = logOpts.Args()
			if err := cfg.Validate(); err != nil {
				return err
			}

			stdio := procutil.Stdio{Stdout: os.Stdout, Stderr: os.Stderr}
			if procutil.TakeRole() == w.ChildRole() {
				return cmdutil.Exit(RunChild(cfg, stdio), nil)
			}

			if _, err := Run(cfg, stdio); err != nil {
				var spawnErr *procutil.SpawnError
				if errors.As(err, &spawnErr) {
					logutil.Debug("spawn failed", "error", err)
					fmt.Fprintln(cmd.ErrOrStderr(), "Failure to fork child process.")
					return cmdutil.Exit(1, nil)
				}
				return cmdutil.Exit(1, err)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	logOpts.AddFlags(fs)
	fs.IntVar(&flags.Loops, "loops", flags.Loops, "Iterations of the parent and child loops")
	fs.IntVar(&flags.SleepEvery, "sleep-every", flags.SleepEvery, "Sleep on every n-th counting iteration")
	fs.DurationVar(&flags.SleepInterval, "sleep-interval", flags.SleepInterval, "Pause length of the counting loops")
	fs.DurationVar(&flags.DelayUnit, "delay-unit", flags.DelayUnit, "Unit of the random per-character delay of the alphabet loops")
	fs.StringVar(&flags.MetricsFile, "metrics-file", "", "Write lifecycle metrics to this file in Prometheus textfile format")
	version.New(name).Attach(cmd)
	return cmd
}
