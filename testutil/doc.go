// Package testutil provides helpers for tests that run real processes:
// capturing what the current process and its children write, and preparing
// input files.
package testutil
