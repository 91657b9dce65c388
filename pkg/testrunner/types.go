// Package testrunner orchestrates a suite of JSON-RPC test cases against
// one long-lived MCP server process: per-suite connect, per-test stderr
// isolation, pattern evaluation against both expect.response and
// expect.stderr, and outcome classification.
package testrunner

import (
	"time"

	"github.com/mcptest/mcptest/pkg/pattern"
)

// Outcome classifies one test's result.
type Outcome string

const (
	Pass  Outcome = "pass"
	Fail  Outcome = "fail"
	Error Outcome = "error"
)

// ErrorKind names why a test landed in Error instead of Pass/Fail.
type ErrorKind string

const (
	ErrorStartup     ErrorKind = "startup"
	ErrorHandshake   ErrorKind = "handshake"
	ErrorReadTimeout ErrorKind = "readTimeout"
	ErrorServerDied  ErrorKind = "serverDied"
	ErrorPattern     ErrorKind = "patternError"
	ErrorInternal    ErrorKind = "internal"
)

// Diff is one mismatched path from evaluating a pattern tree.
type Diff struct {
	Path     string
	Expected any
	Actual   any
	Reason   string
}

func (d Diff) String() string {
	path := d.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": " + d.Reason
}

// Suggestion is a Failure Analyzer hint attached to a failure record.
type Suggestion struct {
	Kind      string
	Severity  string
	Original  string
	Corrected string
	Rationale string
}

// TestOutcome is one test case's recorded result.
type TestOutcome struct {
	Name        string
	Outcome     Outcome
	Diffs       []Diff
	ErrorKind   ErrorKind
	Err         error
	Suggestions []Suggestion
	Duration    time.Duration
}

// SuiteOutcome aggregates a suite run.
type SuiteOutcome struct {
	Description string
	Tests       []TestOutcome
	Duration    time.Duration
	Aborted     bool // true when a server death or pattern error cut the suite short
}

// diffsFromResult converts a single failing pattern.Result into a Diff
// slice (always length 1 — kept as a slice since a future composite
// mismatch kind could report more than one path).
func diffsFromResult(r pattern.Result) []Diff {
	return []Diff{{Path: r.Path, Expected: r.Expected, Actual: r.Actual, Reason: r.Reason}}
}
