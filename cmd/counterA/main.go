// Command counterA counts a few lines and replaces its own image with its
// partner, passing the counter on as an argument.
package main

import (
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/handoff"
)

func main() {
	cmd := handoff.NewCommand("counterA")
	cmd.SetArgs(cmdutil.PositionalNumbers(cmd.Flags(), os.Args[1:]))
	os.Exit(cmdutil.Execute(cmd))
}
