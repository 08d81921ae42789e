// Command letusfork creates one child, runs a counting loop in both
// processes and reports how the child terminated.
package main

import (
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/supervisor"
)

func main() {
	cmd := supervisor.NewCommand("letusfork", supervisor.Counting)
	cmd.SetArgs(cmdutil.PositionalNumbers(cmd.Flags(), os.Args[1:]))
	os.Exit(cmdutil.Execute(cmd))
}
