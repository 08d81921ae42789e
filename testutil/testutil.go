package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CaptureOutput runs fn with os.Stdout redirected to a pipe and returns what
// was written. Children spawned inside fn inherit the pipe, so their output
// is captured too once they have exited. The original stdout is always
// restored.
//
// Example:
//
//	out := testutil.CaptureOutput(t, func() error {
//	    return cmd.Execute()
//	})
func CaptureOutput(t *testing.T, fn func() error) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	// drain concurrently so a chatty child cannot fill the pipe and block
	outCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outCh <- buf.String()
	}()

	fnErr := fn()

	if err := w.Close(); err != nil {
		t.Logf("Failed to close pipe writer: %v", err)
	}
	os.Stdout = origStdout

	output := <-outCh
	if fnErr != nil {
		t.Logf("Command error: %v", fnErr)
	}
	return output
}

// OutputFile creates an empty file that a process and its children can share
// as stdout. Writes through the shared descriptor never overwrite each other.
func OutputFile(t *testing.T) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "output-*")
	if err != nil {
		t.Fatalf("Failed to create output file: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// ReadOutput returns everything written to a file from OutputFile.
func ReadOutput(t *testing.T, f *os.File) string {
	t.Helper()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("Failed to read %s: %v", f.Name(), err)
	}
	return string(data)
}

// WriteLines writes lines, each newline-terminated, to name inside dir and
// returns the file's path.
func WriteLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
