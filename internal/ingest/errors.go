package ingest

import (
	"fmt"
	"strings"
)

// CompilerInvocationError reports a descriptor compiler that failed to
// produce descriptor bytes for a source.
type CompilerInvocationError struct {
	Source   string
	Compiler string
	// ExitCode is the process status, or -1 when no process exited.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CompilerInvocationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed for %s", e.Compiler, e.Source)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, "\n%s", stderr)
	}
	return b.String()
}

func (e *CompilerInvocationError) Unwrap() error { return e.Err }

// Error reports descriptor bytes that could not be turned into a schema.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
