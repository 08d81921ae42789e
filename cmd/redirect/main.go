// Command redirect sorts a file through a child whose standard input has
// been redirected to it, and exits with the child's exit code.
package main

import (
	"os"

	"github.com/jongio/proclife/cmdutil"
	"github.com/jongio/proclife/redirect"
)

func main() {
	os.Exit(cmdutil.Execute(redirect.NewCommand("redirect")))
}
