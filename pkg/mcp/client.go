package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Client is the public entry point surrounding tooling (the test runner,
// the CLI's "send" command, ad-hoc scripts) uses to talk to one MCP
// server for the duration of a suite run.
type Client struct {
	driver *Driver
}

// ClientOption configures a Client at construction time.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *slog.Logger
	clientInfo ClientInfo
}

// WithLogger sets the *slog.Logger used for connection diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = logger }
}

// WithClientInfo overrides the clientInfo advertised during initialize.
func WithClientInfo(info ClientInfo) ClientOption {
	return func(o *clientOptions) { o.clientInfo = info }
}

const (
	defaultClientName    = "mcptest"
	defaultClientVersion = "0.1.0"
)

// NewClient builds a Client for desc, selecting a Supervisor from
// desc.Runtime ("" / "process" for a local child process, "docker" for
// an attached container).
func NewClient(desc ServerDescriptor, opts ...ClientOption) (*Client, error) {
	cfg := clientOptions{
		clientInfo: ClientInfo{Name: defaultClientName, Version: defaultClientVersion},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	supervisor, err := newSupervisor(desc, cfg.logger)
	if err != nil {
		return nil, err
	}

	return &Client{driver: NewDriver(supervisor, desc, cfg.clientInfo, cfg.logger)}, nil
}

func newSupervisor(desc ServerDescriptor, logger *slog.Logger) (Supervisor, error) {
	switch desc.Runtime {
	case "", "process":
		return NewProcessSupervisor(logger), nil
	case "docker":
		return NewDockerSupervisor(logger)
	default:
		return nil, fmt.Errorf("mcp: unknown runtime %q", desc.Runtime)
	}
}

// Connect spawns the server and completes the initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	return c.driver.Connect(ctx)
}

// ListTools performs tools/list.
func (c *Client) ListTools(ctx context.Context) (*ToolsListResult, error) {
	return c.driver.ListTools(ctx)
}

// CallTool performs tools/call.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolCallResult, error) {
	return c.driver.CallTool(ctx, name, arguments)
}

// SendMessage writes an arbitrary JSON-RPC request built from method and
// params. If expectReply is true the request is given a fresh id and
// SendMessage waits up to timeout for the matching response; if it is
// false the request is sent as a notification and SendMessage returns
// immediately. This is the low-level escape hatch tests use to exercise
// malformed or non-standard requests that ListTools/CallTool can't express.
func (c *Client) SendMessage(ctx context.Context, method string, params any, expectReply bool, timeout time.Duration) (*Response, error) {
	var raw json.RawMessage
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshaling params: %w", err)
		}
	}
	return c.driver.SendRaw(ctx, method, raw, expectReply, timeout)
}

// ServerInfo returns the server's self-reported identity.
func (c *Client) ServerInfo() ServerInfo {
	return c.driver.ServerInfo()
}

// GetStderr returns all stderr bytes captured since cursor (0 for the
// whole history) and the cursor to pass on the next call.
func (c *Client) GetStderr(cursor int) ([]byte, int) {
	return c.driver.StderrSince(cursor)
}

// ClearStderr advances the stderr cursor to the current end of the
// buffer without discarding the underlying history, isolating whatever
// the next test captures from what came before it.
func (c *Client) ClearStderr() int {
	return c.driver.StderrEnd()
}

// ClearAllBuffers returns the current end-of-buffer stderr cursor, exactly
// as ClearStderr does. It does not drop unclaimed stdout frames or the
// Noise() history.
func (c *Client) ClearAllBuffers() int {
	return c.driver.StderrEnd()
}

// Noise returns stdout lines the server wrote that didn't parse as
// JSON-RPC, useful for the failure analyzer when a test's expected
// response never arrives.
func (c *Client) Noise() []string {
	return c.driver.Noise()
}

// State reports the driver's lifecycle state (mainly for diagnostics and
// tests; the Test Runner drives behavior off returned errors, not this).
func (c *Client) State() string {
	return c.driver.State()
}

// Disconnect tears down the connection.
func (c *Client) Disconnect() error {
	return c.driver.Disconnect()
}
