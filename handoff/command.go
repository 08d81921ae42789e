package handoff

import (
	"fmt"
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/version"
	"github.com/spf13/cobra"
)

// NewCommand creates the command for one side of the handoff pair.
func NewCommand(name string) *cobra.Command {
	var (
		logOpts cmdutil.LogOptions
		stopAt  int
	)

	cmd := &cobra.Command{
		Use:   name + " [loops] [start] [display-name]",
		Short: "Count, then replace this process with its partner program",
		Long: fmt.Sprintf(`%s prints loops lines counting up from start, then execs its partner
(the same name with the trailing A and B swapped, in the same directory),
passing the loop count and the next counter value.

Defaults: loops=%d, start=%d, display-name=program name.`, name, DefaultLoops, DefaultStart),
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logOpts.Apply(cmd.ErrOrStderr()); err != nil {
				return err
			}

			cfg, err := ParseArgs(append([]string{os.Args[0]}, args...))
			if err != nil {
				return err
			}
			cfg.StopAt = stopAt
			cfg.ForwardArgs = logOpts.Args()

			if err := Run(cfg, cmd.OutOrStdout()); err != nil {
				return cmdutil.Exit(1, fmt.Errorf("%s: handoff failed: %w", cfg.DisplayName, err))
			}
			return nil
		},
	}

	logOpts.AddFlags(cmd.Flags())
	cmd.Flags().IntVar(&stopAt, "stop-at", 0, "Exit instead of handing off once the counter reaches this value (0 = never)")
	version.New(name).Attach(cmd)
	return cmd
}
