package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jongio/proclife/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExitError carries a process exit code out of a cobra RunE. A nil Err
// means the command already reported the failure itself.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exit returns nil for code 0 and an *ExitError otherwise.
func Exit(code int, err error) error {
	if code == 0 && err == nil {
		return nil
	}
	if code == 0 {
		code = 1
	}
	return &ExitError{Code: code, Err: err}
}

// Execute runs cmd and returns the exit code the process should end with.
// Errors other than a silent *ExitError are printed to the command's stderr.
func Execute(cmd *cobra.Command) int {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

// LogOptions are the logging flags every program accepts.
type LogOptions struct {
	Debug  bool
	Level  string
	Format string
}

// AddFlags registers --debug, --log-level and --log-format on fs.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Debug, "debug", false, "Enable lifecycle tracing on stderr")
	fs.StringVar(&o.Level, "log-level", "info", "Log level: debug, info, warn or error (--debug overrides)")
	fs.StringVar(&o.Format, "log-format", string(logutil.FormatAuto), "Log format: auto, text or json")
}

// Apply configures logutil from the options.
func (o *LogOptions) Apply(w io.Writer) error {
	format, err := logutil.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	logutil.Setup(w, o.Debug, format)
	if !o.Debug && o.Level != "" {
		logutil.SetLevel(logutil.ParseLevel(o.Level))
	}
	return nil
}

// Args renders the options as flags for a spawned or exec'd process, so
// tracing follows the lifecycle across process boundaries.
func (o *LogOptions) Args() []string {
	format := o.Format
	if format == "" {
		format = string(logutil.FormatAuto)
	}
	level := o.Level
	if level == "" {
		level = "info"
	}
	return []string{
		"--debug=" + strconv.FormatBool(o.Debug),
		"--log-level=" + level,
		"--log-format=" + format,
	}
}

// PositionalNumbers reorders args so that negative numbers reach the command
// as positional arguments instead of being parsed as shorthand flags. Flags,
// with their values, move ahead of a "--" and everything else follows it.
// args without a negative number before any "--" are returned unchanged.
func PositionalNumbers(fs *pflag.FlagSet, args []string) []string {
	if !hasNegativeNumber(args) {
		return args
	}

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") || isNegativeNumber(arg) {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		if takesValue(fs, arg) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	out := append(flags, "--")
	return append(out, positional...)
}

func hasNegativeNumber(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if isNegativeNumber(arg) {
			return true
		}
	}
	return false
}

func isNegativeNumber(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(arg)
	return err == nil
}

// takesValue reports whether flag arg consumes the following argument.
func takesValue(fs *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		f = fs.Lookup(arg[2:])
	case len(arg) == 2:
		f = fs.ShorthandLookup(arg[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}
