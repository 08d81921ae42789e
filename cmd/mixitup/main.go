// Command mixitup is letusfork with alphabets written one character at a
// time after random delays, so parent and child output interleaves.
package main

import (
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/supervisor"
)

func main() {
	cmd := supervisor.NewCommand("mixitup", supervisor.Alphabet)
	cmd.SetArgs(cmdutil.PositionalNumbers(cmd.Flags(), os.Args[1:]))
	os.Exit(cmdutil.Execute(cmd))
}
