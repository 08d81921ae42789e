// Package version provides build information for the proclife programs and
// wires it into their cobra commands as --version.
package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X github.com/jongio/proclife/version.Version=..." at build time.
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds version information for one program.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	Name      string `json:"name"`
}

// New returns the build information for the named program.
func New(name string) *Info {
	return &Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		Name:      name,
	}
}

// String returns a human-readable version string.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s)", i.Name, i.Version, i.GitCommit, i.BuildDate)
}

// Attach enables cobra's --version flag on cmd, printing String().
func (i *Info) Attach(cmd *cobra.Command) {
	cmd.Version = i.Version
	cmd.SetVersionTemplate(i.String() + "\n")
}
