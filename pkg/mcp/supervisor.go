package mcp

import (
	"context"
	"io"
)

// ExitResult describes how a supervised process terminated.
type ExitResult struct {
	Code   int
	Signal string
	Err    error
}

// ProcessHandle is the live connection to a supervised MCP server.
// At most one handle is live per Supervisor at a time.
type ProcessHandle struct {
	PID int

	// Stdin is the single writer for outgoing JSON-RPC frames.
	Stdin io.WriteCloser

	// Stdout is the raw byte stream the Framer parses into JSON-RPC
	// frames. Exactly one reader (the Framer) consumes it.
	Stdout io.Reader

	// Exit delivers the terminal ExitResult once, when the process
	// exits, however that happens. The channel is not closed.
	Exit <-chan ExitResult
}

//go:generate go run go.uber.org/mock/mockgen -source=supervisor.go -destination=mock_supervisor_test.go -package=mcp

// Supervisor spawns and owns the lifetime of exactly one MCP server
// process (or container) at a time. It also owns the stderr stream for
// the life of that process: readiness detection against ReadyPattern,
// the StderrWindow byte buffer, and WARN-level logging of each line all
// happen here rather than being re-read by a second consumer, since an
// OS pipe only supports a single reader.
type Supervisor interface {
	// Start spawns the server described by desc and blocks until it is
	// ready: immediately after a successful spawn if desc.ReadyPattern
	// is empty, or until a stderr line matches ReadyPattern, or until
	// desc.StartupTimeout() elapses (StartupError{Reason: StartupTimeout}),
	// or until the process exits early (StartupError{Reason: StartupEarlyExit}).
	Start(ctx context.Context, desc ServerDescriptor) (*ProcessHandle, error)

	// Stop closes stdin, requests graceful termination, waits up to
	// ProcessKillGrace, then escalates to a forced kill. Idempotent.
	Stop() error

	// IsRunning reports whether the supervised process is currently alive.
	IsRunning() bool

	// StderrSince returns the stderr bytes appended since cursor, and the
	// cursor value an equivalent call should use next (the current end
	// of the buffer). Cursors only ever advance.
	StderrSince(cursor int) (data []byte, newCursor int)

	// StderrEnd returns the current end-of-buffer cursor, used by the
	// Test Runner to reset isolation between tests without discarding
	// history already captured.
	StderrEnd() int
}
