package testrunner

import (
	"context"
	"testing"
	"time"

	"github.com/mcptest/mcptest/pkg/config"
	"github.com/mcptest/mcptest/pkg/mcp"
)

// fakeClient is a hand-written stand-in for *mcp.Client, scripted per
// test via a queue of canned responses/errors.
type fakeClient struct {
	connectErr error
	replies    []fakeReply
	next       int
	stderr     map[int]string // cursor -> bytes appended since that cursor
	cursor     int
	connected  bool
	closed     bool
}

type fakeReply struct {
	resp *mcp.Response
	err  error
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.connected = true
	return f.connectErr
}

func (f *fakeClient) SendMessage(ctx context.Context, method string, params any, expectReply bool, timeout time.Duration) (*mcp.Response, error) {
	if f.next >= len(f.replies) {
		return &mcp.Response{JSONRPC: "2.0"}, nil
	}
	r := f.replies[f.next]
	f.next++
	return r.resp, r.err
}

func (f *fakeClient) GetStderr(cursor int) ([]byte, int) {
	return []byte(f.stderr[cursor]), f.cursor
}

func (f *fakeClient) ClearStderr() int {
	f.cursor++
	return f.cursor
}

func (f *fakeClient) Disconnect() error {
	f.closed = true
	return nil
}

func successResponse(result string) *mcp.Response {
	return &mcp.Response{JSONRPC: "2.0", Result: []byte(result)}
}

func TestRunSuite_AllPass(t *testing.T) {
	client := &fakeClient{
		replies: []fakeReply{
			{resp: successResponse(`{"tools":[{"name":"echo"}]}`)},
		},
	}
	suite := &config.Suite{
		Description: "tools",
		Tests: []config.TestCase{
			{
				It:      "lists tools",
				Request: config.RawRequest{Method: "tools/list"},
				Expect: config.Expectation{
					Response: map[string]any{"result": map[string]any{"tools": "match:arrayLength:1"}},
				},
			},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if out.Aborted {
		t.Fatalf("suite unexpectedly aborted")
	}
	if len(out.Tests) != 1 || out.Tests[0].Outcome != Pass {
		t.Fatalf("expected a single passing test, got %+v", out.Tests)
	}
	if !client.closed {
		t.Error("expected Disconnect to be called")
	}
}

func TestRunSuite_MismatchIsFail(t *testing.T) {
	client := &fakeClient{
		replies: []fakeReply{
			{resp: successResponse(`{"tools":[]}`)},
		},
	}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{
				It:      "expects one tool",
				Request: config.RawRequest{Method: "tools/list"},
				Expect: config.Expectation{
					Response: map[string]any{"result": map[string]any{"tools": "match:arrayLength:1"}},
				},
			},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if out.Aborted {
		t.Fatalf("a mismatch must not abort the suite")
	}
	if out.Tests[0].Outcome != Fail {
		t.Fatalf("expected Fail, got %+v", out.Tests[0])
	}
	if len(out.Tests[0].Diffs) == 0 {
		t.Error("expected at least one diff")
	}
}

func TestRunSuite_ReadTimeoutIsRecoverable(t *testing.T) {
	client := &fakeClient{
		replies: []fakeReply{
			{err: &mcp.ReadTimeout{RequestID: "1"}},
			{resp: successResponse(`{}`)},
		},
	}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{It: "times out", Request: config.RawRequest{Method: "slow"}, Expect: config.Expectation{}},
			{It: "still runs", Request: config.RawRequest{Method: "ping"}, Expect: config.Expectation{}},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if out.Aborted {
		t.Fatalf("a read timeout must not abort the suite")
	}
	if out.Tests[0].Outcome != Error || out.Tests[0].ErrorKind != ErrorReadTimeout {
		t.Fatalf("expected first test to error with readTimeout, got %+v", out.Tests[0])
	}
	if out.Tests[1].Outcome != Pass {
		t.Fatalf("expected second test to still run and pass, got %+v", out.Tests[1])
	}
}

func TestRunSuite_ServerDiedAbortsRemainingTests(t *testing.T) {
	client := &fakeClient{
		replies: []fakeReply{
			{resp: successResponse(`{}`)},
			{err: &mcp.ServerDied{ExitCode: 1}},
		},
	}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{It: "first", Request: config.RawRequest{Method: "a"}, Expect: config.Expectation{}},
			{It: "second", Request: config.RawRequest{Method: "b"}, Expect: config.Expectation{}},
			{It: "third", Request: config.RawRequest{Method: "c"}, Expect: config.Expectation{}},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if !out.Aborted {
		t.Fatalf("expected the suite to abort after a server death")
	}
	if out.Tests[0].Outcome != Pass {
		t.Fatalf("first test should still have passed, got %+v", out.Tests[0])
	}
	if out.Tests[1].ErrorKind != ErrorServerDied {
		t.Fatalf("second test should report serverDied, got %+v", out.Tests[1])
	}
	if out.Tests[2].ErrorKind != ErrorServerDied {
		t.Fatalf("remaining tests should all report serverDied, got %+v", out.Tests[2])
	}
}

func TestRunSuite_ConnectFailureErrorsAllTests(t *testing.T) {
	client := &fakeClient{connectErr: &mcp.StartupError{Reason: mcp.StartupTimeout}}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{It: "never runs", Request: config.RawRequest{Method: "a"}, Expect: config.Expectation{}},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if !out.Aborted {
		t.Fatal("expected abort on connect failure")
	}
	if out.Tests[0].Outcome != Error || out.Tests[0].ErrorKind != ErrorStartup {
		t.Fatalf("expected startup error, got %+v", out.Tests[0])
	}
}

func TestRunSuite_StderrToBeEmpty(t *testing.T) {
	client := &fakeClient{
		replies: []fakeReply{{resp: successResponse(`{}`)}},
		stderr:  map[int]string{1: "WARN: leftover noise\n"},
	}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{It: "noisy", Request: config.RawRequest{Method: "a"}, Expect: config.Expectation{Stderr: "toBeEmpty"}},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if out.Tests[0].Outcome != Fail {
		t.Fatalf("expected a stderr mismatch to fail the test, got %+v", out.Tests[0])
	}
}

func TestRunSuite_PatternErrorAbortsSuite(t *testing.T) {
	client := &fakeClient{replies: []fakeReply{{resp: successResponse(`{"x":1}`)}}}
	suite := &config.Suite{
		Tests: []config.TestCase{
			{
				It:      "malformed expectation",
				Request: config.RawRequest{Method: "a"},
				Expect: config.Expectation{
					Response: map[string]any{"result": map[string]any{"x": "match:notarealoperator"}},
				},
			},
			{It: "never runs", Request: config.RawRequest{Method: "b"}, Expect: config.Expectation{}},
		},
	}

	out := New().RunSuite(context.Background(), suite, client)
	if !out.Aborted {
		t.Fatal("expected a pattern error to abort the suite")
	}
	if out.Tests[0].ErrorKind != ErrorPattern {
		t.Fatalf("expected patternError, got %+v", out.Tests[0])
	}
	if len(out.Tests[0].Suggestions) == 0 {
		t.Error("expected a failure analyzer suggestion for an unknown operator")
	}
}
