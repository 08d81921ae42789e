// Package procutil provides the process-lifecycle primitives shared by the
// proclife programs: creating a child, waiting for it, replacing the process
// image and redirecting standard input.
//
// # Process creation
//
// Go cannot fork a running program, so a child is created by re-executing
// the current binary with a role marker in its environment. The child reads
// and clears the marker with TakeRole and branches on it, which gives the
// same two continuations a fork would:
//
//	switch procutil.TakeRole() {
//	case "child":
//	    os.Exit(runChild())
//	}
//	child, err := procutil.Spawn("child", os.Args[1:], procutil.Stdio{})
//	if err != nil {
//	    // CreationFailure: fatal, never retried
//	}
//	status, err := child.Wait()
//
// # Termination status
//
// Wait blocks on the child's pid only and resolves a TerminationStatus: the
// exit code for a normal exit, the signal for an abnormal one.
//
// # Image replacement
//
// Exec never returns on success. Any return is an *ExecError and callers must
// treat it as fatal.
//
// # Process inspection
//
// IsProcessRunning and Describe use github.com/shirou/gopsutil so liveness and
// command-line lookups behave the same on every platform gopsutil supports.
package procutil
