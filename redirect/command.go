package redirect

import (
	"errors"
	"fmt"
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/procutil"
	"github.com/jongio/proclife/version"
	"github.com/spf13/cobra"
)

// NewCommand creates the redirect program.
func NewCommand(name string) *cobra.Command {
	var (
		logOpts cmdutil.LogOptions
		flags   = DefaultConfig("")
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: "Sort a file through a child whose standard input is redirected to it",
		Long: `The child opens the input file read-only, duplicates it onto standard input
and replaces itself with sort. The parent waits for the child and exits with
the child's exit code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logOpts.Apply(cmd.ErrOrStderr()); err != nil {
				return err
			}

			cfg := DefaultConfig(os.Args[0])
			if flags.DisplayName != "" {
				cfg.DisplayName = flags.DisplayName
			}
			cfg.Input = flags.Input
			cfg.SortPath = flags.SortPath
			cfg.MetricsFile = flags.MetricsFile
			cfg.ForwardArgs = logOpts.Args()

			stdio := procutil.Stdio{Stdout: os.Stdout, Stderr: os.Stderr}
			if procutil.TakeRole() == ChildRole {
				return cmdutil.Exit(RunChild(cfg, stdio), nil)
			}

			code, err := Run(cfg, stdio)
			if err != nil {
				var spawnErr *procutil.SpawnError
				if errors.As(err, &spawnErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Failure to fork child process.")
					return cmdutil.Exit(1, nil)
				}
				return cmdutil.Exit(code, err)
			}
			return cmdutil.Exit(code, nil)
		},
	}

	fs := cmd.Flags()
	logOpts.AddFlags(fs)
	fs.StringVar(&flags.Input, "input", flags.Input, "File the child reads as standard input")
	fs.StringVar(&flags.SortPath, "sort", flags.SortPath, "Utility the child replaces itself with")
	fs.StringVar(&flags.MetricsFile, "metrics-file", "", "Write lifecycle metrics to this file in Prometheus textfile format")
	// set by the parent so both processes report under one name
	fs.StringVar(&flags.DisplayName, "display-name", "", "Name used in status lines")
	_ = fs.MarkHidden("display-name")
	version.New(name).Attach(cmd)
	return cmd
}
