// Package testutil provides helpers for CLI tests.
package testutil

import (
	"bytes"
	"io"
	"testing"
)

// ExecResult holds the result of a CLI command execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner is an in-process CLI entry point returning the process exit code.
type Runner func(args []string, stdout, stderr io.Writer) int

// RunCLI runs the CLI in-process with args and captures its output and exit code.
func RunCLI(tb testing.TB, run Runner, args ...string) ExecResult {
	tb.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: code,
	}
}
