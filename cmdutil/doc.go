// Package cmdutil provides the cobra scaffolding shared by the proclife
// programs: logging flags that are forwarded to spawned or exec'd processes,
// and exit-code propagation from RunE to the process exit status.
package cmdutil
