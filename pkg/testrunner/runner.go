package testrunner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mcptest/mcptest/pkg/config"
	"github.com/mcptest/mcptest/pkg/mcp"
	"github.com/mcptest/mcptest/pkg/pattern"
)

// Client is the subset of *mcp.Client the runner drives a suite through.
// Narrowed to an interface so unit tests can substitute a mock instead of
// spawning a real process.
type Client interface {
	Connect(ctx context.Context) error
	SendMessage(ctx context.Context, method string, params any, expectReply bool, timeout time.Duration) (*mcp.Response, error)
	GetStderr(cursor int) ([]byte, int)
	ClearStderr() int
	Disconnect() error
}

const stderrEmptyToken = "toBeEmpty"

// Runner executes suites against a Client, one process per suite.
type Runner struct {
	requestTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithRequestTimeout overrides the per-test read timeout (default
// mcp.DefaultRequestTimeout).
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Runner) { r.requestTimeout = d }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{requestTimeout: mcp.DefaultRequestTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSuite drives suite's tests in declaration order against client,
// which must already be constructed (but not yet connected) for the
// suite's descriptor. Connect/Disconnect are the Runner's responsibility;
// Disconnect always runs, even when the suite aborts early.
func (r *Runner) RunSuite(ctx context.Context, suite *config.Suite, client Client) *SuiteOutcome {
	start := time.Now()
	out := &SuiteOutcome{Description: suite.Description}
	defer func() { out.Duration = time.Since(start) }()
	defer client.Disconnect()

	if err := client.Connect(ctx); err != nil {
		kind := ErrorStartup
		var hs *mcp.HandshakeError
		if errors.As(err, &hs) {
			kind = ErrorHandshake
		}
		for _, tc := range suite.Tests {
			out.Tests = append(out.Tests, TestOutcome{Name: tc.It, Outcome: Error, ErrorKind: kind, Err: err})
		}
		out.Aborted = true
		return out
	}

	for _, tc := range suite.Tests {
		if out.Aborted {
			out.Tests = append(out.Tests, TestOutcome{Name: tc.It, Outcome: Error, ErrorKind: ErrorServerDied})
			continue
		}
		outcome := r.runTest(ctx, client, tc)
		out.Tests = append(out.Tests, outcome)
		if outcome.Outcome == Error && (outcome.ErrorKind == ErrorServerDied || outcome.ErrorKind == ErrorPattern) {
			out.Aborted = true
		}
	}
	return out
}

func (r *Runner) runTest(ctx context.Context, client Client, tc config.TestCase) (outcome TestOutcome) {
	start := time.Now()
	outcome = TestOutcome{Name: tc.It}
	defer func() { outcome.Duration = time.Since(start) }()

	cursor := client.ClearStderr()

	resp, err := client.SendMessage(ctx, tc.Request.Method, tc.Request.Params, true, r.requestTimeout)
	if err != nil {
		var readTimeout *mcp.ReadTimeout
		var serverDied *mcp.ServerDied
		switch {
		case errors.As(err, &readTimeout):
			outcome.Outcome, outcome.ErrorKind, outcome.Err = Error, ErrorReadTimeout, err
		case errors.As(err, &serverDied):
			outcome.Outcome, outcome.ErrorKind, outcome.Err = Error, ErrorServerDied, err
		default:
			outcome.Outcome, outcome.ErrorKind, outcome.Err = Error, ErrorInternal, err
		}
		return outcome
	}

	stderrBytes, _ := client.GetStderr(cursor)

	respDiffs, respErr := evaluateResponse(tc, resp)
	if respErr != nil {
		return errorOutcome(outcome, respErr)
	}

	stderrDiffs, stderrErr := evaluateStderr(tc, stderrBytes)
	if stderrErr != nil {
		return errorOutcome(outcome, stderrErr)
	}

	diffs := append(respDiffs, stderrDiffs...)
	if len(diffs) > 0 {
		outcome.Outcome = Fail
		outcome.Diffs = diffs
		outcome.Suggestions = Analyze(nil, diffs)
		return outcome
	}

	outcome.Outcome = Pass
	return outcome
}

func errorOutcome(outcome TestOutcome, perr *pattern.PatternError) TestOutcome {
	outcome.Outcome = Error
	outcome.ErrorKind = ErrorPattern
	outcome.Err = perr
	outcome.Suggestions = Analyze(perr, nil)
	return outcome
}

// evaluateResponse evaluates expect.response (if present) against resp,
// re-decoded through JSON so the pattern engine always sees
// map[string]any/[]any/float64/string/bool/nil, matching how it would see
// any other decoded JSON-RPC payload.
func evaluateResponse(tc config.TestCase, resp *mcp.Response) ([]Diff, *pattern.PatternError) {
	if tc.Expect.Response == nil {
		return nil, nil
	}

	actual, err := toGenericJSON(resp)
	if err != nil {
		return nil, &pattern.PatternError{Path: "response", Message: "received response did not round-trip through JSON: " + err.Error()}
	}

	result, perr := pattern.Evaluate(tc.Expect.Response, actual, "response")
	if perr != nil {
		return nil, perr
	}
	if !result.Ok {
		return diffsFromResult(result), nil
	}
	return nil, nil
}

// evaluateStderr evaluates expect.stderr: absent is always satisfied;
// toBeEmpty requires the trimmed window to be empty; a plain string
// (no match: prefix) is byte-equality on trimmed content; otherwise the
// string is treated as a pattern.
func evaluateStderr(tc config.TestCase, captured []byte) ([]Diff, *pattern.PatternError) {
	if tc.Expect.Stderr == nil {
		return nil, nil
	}
	expected, ok := tc.Expect.Stderr.(string)
	if !ok {
		return nil, &pattern.PatternError{Path: "stderr", Message: "expect.stderr must be a string"}
	}

	trimmed := strings.TrimSpace(string(captured))

	if expected == stderrEmptyToken {
		if trimmed == "" {
			return nil, nil
		}
		return []Diff{{Path: "stderr", Expected: stderrEmptyToken, Actual: trimmed, Reason: "stderr window is not empty"}}, nil
	}

	if strings.HasPrefix(expected, "match:") {
		result, perr := pattern.Evaluate(expected, trimmed, "stderr")
		if perr != nil {
			return nil, perr
		}
		if !result.Ok {
			return diffsFromResult(result), nil
		}
		return nil, nil
	}

	if trimmed != expected {
		return []Diff{{Path: "stderr", Expected: expected, Actual: trimmed, Reason: "stderr content does not match"}}, nil
	}
	return nil, nil
}

func toGenericJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
