package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcptest/mcptest/pkg/logging"
)

// driverState is the Protocol Driver's lifecycle: a server moves through
// these states in order on a successful connect, and can land in Failed
// from Starting or Initializing.
type driverState int32

const (
	stateStopped driverState = iota
	stateStarting
	stateInitializing
	stateInitialized
	stateClosing
	stateFailed
)

func (s driverState) String() string {
	switch s {
	case stateStopped:
		return "stopped"
	case stateStarting:
		return "starting"
	case stateInitializing:
		return "initializing"
	case stateInitialized:
		return "initialized"
	case stateClosing:
		return "closing"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Driver drives a single MCP server through spawn, handshake, and the
// tools/list and tools/call operations the test runner needs, over
// whichever Supervisor implements the configured transport.
type Driver struct {
	supervisor Supervisor
	desc       ServerDescriptor
	logger     *slog.Logger
	clientInfo ClientInfo

	requestID atomic.Int64

	mu         sync.RWMutex
	state      driverState
	router     *Router
	framer     *Framer
	handle     *ProcessHandle
	serverInfo ServerInfo
}

// NewDriver creates a Driver for desc, using supervisor to spawn it.
// clientInfo is advertised during the initialize handshake.
func NewDriver(supervisor Supervisor, desc ServerDescriptor, clientInfo ClientInfo, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Driver{
		supervisor: supervisor,
		desc:       desc,
		clientInfo: clientInfo,
		logger:     logger,
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.String()
}

// Connect spawns the server, waits for readiness (delegated to the
// Supervisor), and performs the initialize/initialized handshake.
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.state != stateStopped {
		d.mu.Unlock()
		return fmt.Errorf("mcp: driver already %s", d.state)
	}
	d.state = stateStarting
	d.mu.Unlock()

	handle, err := d.supervisor.Start(ctx, d.desc)
	if err != nil {
		d.setState(stateFailed)
		return err
	}

	router := NewRouter(handle.Stdin)
	framer := NewFramer(handle.Stdout, router, d.logger)
	go framer.Run()
	go d.watchExit(handle.Exit, router)

	d.mu.Lock()
	d.router = router
	d.framer = framer
	d.handle = handle
	d.state = stateInitializing
	d.mu.Unlock()

	if err := d.handshake(ctx); err != nil {
		d.setState(stateFailed)
		return &HandshakeError{Err: err}
	}

	d.setState(stateInitialized)
	return nil
}

func (d *Driver) handshake(ctx context.Context) error {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		ClientInfo:      d.clientInfo,
		Capabilities:    Capabilities{Tools: &ToolsCapability{}},
	}

	var result struct {
		ServerInfo   *ServerInfo   `json:"serverInfo"`
		Capabilities *Capabilities `json:"capabilities"`
	}
	if err := d.call(ctx, "initialize", params, &result, d.desc.StartupTimeout()); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if result.ServerInfo == nil || result.Capabilities == nil {
		return fmt.Errorf("initialize: result is missing serverInfo or capabilities")
	}

	d.mu.Lock()
	d.serverInfo = *result.ServerInfo
	d.mu.Unlock()

	return d.notify(ctx, "notifications/initialized", nil)
}

func (d *Driver) watchExit(exit <-chan ExitResult, router *Router) {
	res, ok := <-exit
	if !ok {
		return
	}

	d.mu.Lock()
	wasClosing := d.state == stateClosing
	if d.state != stateStopped {
		d.state = stateFailed
	}
	d.mu.Unlock()

	if wasClosing {
		return
	}
	router.CloseWith(&ServerDied{ExitCode: res.Code, Signal: res.Signal})
}

func (d *Driver) setState(s driverState) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// ServerInfo returns the server's self-reported identity, valid once
// Connect has returned successfully.
func (d *Driver) ServerInfo() ServerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.serverInfo
}

// ListTools performs a tools/list request.
func (d *Driver) ListTools(ctx context.Context) (*ToolsListResult, error) {
	var result ToolsListResult
	if err := d.call(ctx, "tools/list", nil, &result, DefaultRequestTimeout); err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	return &result, nil
}

// CallTool performs a tools/call request.
func (d *Driver) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolCallResult, error) {
	params := ToolCallParams{Name: name, Arguments: arguments}
	var result ToolCallResult
	if err := d.call(ctx, "tools/call", params, &result, DefaultRequestTimeout); err != nil {
		return nil, fmt.Errorf("tools/call: %w", err)
	}
	return &result, nil
}

// SendRaw writes an arbitrary JSON-RPC request (method/params chosen by
// the caller, e.g. a test exercising a non-standard or malformed
// message) and, if expectReply is true, waits for the matching response.
func (d *Driver) SendRaw(ctx context.Context, method string, params json.RawMessage, expectReply bool, timeout time.Duration) (*Response, error) {
	d.mu.RLock()
	router := d.router
	d.mu.RUnlock()
	if router == nil {
		return nil, ErrNotConnected
	}

	id := d.requestID.Add(1)
	idBytes, _ := json.Marshal(id)
	rawID := json.RawMessage(idBytes)

	req := Request{JSONRPC: "2.0", Method: method, Params: params}
	if expectReply {
		req.ID = &rawID
	}

	if err := router.Send(req); err != nil {
		return nil, err
	}
	if !expectReply {
		return nil, nil
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return router.Read(ctx, string(rawID), timeout)
}

// call performs a request/response round trip and decodes the result
// into v (if non-nil and the server replied with a result).
func (d *Driver) call(ctx context.Context, method string, params any, v any, timeout time.Duration) error {
	d.mu.RLock()
	router := d.router
	d.mu.RUnlock()
	if router == nil {
		return ErrNotConnected
	}

	id := d.requestID.Add(1)
	idBytes, _ := json.Marshal(id)
	rawID := json.RawMessage(idBytes)

	var paramsBytes json.RawMessage
	if params != nil {
		var err error
		paramsBytes, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshaling params: %w", err)
		}
	}

	req := Request{JSONRPC: "2.0", ID: &rawID, Method: method, Params: paramsBytes}

	d.logger.Debug("sending request", "method", method, "id", id)
	if err := router.Send(req); err != nil {
		return err
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	resp, err := router.Read(ctx, string(rawID), timeout)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if v != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, v); err != nil {
			return fmt.Errorf("unmarshaling result: %w", err)
		}
	}
	return nil
}

// notify sends a JSON-RPC notification (no id, no response expected).
func (d *Driver) notify(ctx context.Context, method string, params any) error {
	d.mu.RLock()
	router := d.router
	d.mu.RUnlock()
	if router == nil {
		return ErrNotConnected
	}

	var paramsBytes json.RawMessage
	if params != nil {
		var err error
		paramsBytes, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshaling params: %w", err)
		}
	}
	return router.Send(Request{JSONRPC: "2.0", Method: method, Params: paramsBytes})
}

// StderrSince returns stderr bytes captured since cursor and the cursor
// to pass next.
func (d *Driver) StderrSince(cursor int) ([]byte, int) {
	return d.supervisor.StderrSince(cursor)
}

// StderrEnd returns the current stderr cursor, used to isolate the next
// test's stderr window without discarding history already captured.
func (d *Driver) StderrEnd() int {
	return d.supervisor.StderrEnd()
}

// Noise returns stdout lines the Framer could not parse as JSON-RPC.
func (d *Driver) Noise() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.framer == nil {
		return nil
	}
	return d.framer.Noise()
}

// Disconnect tears down the connection: closes stdin, stops the
// supervised process/container, and cancels any outstanding reads.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	if d.state == stateStopped {
		d.mu.Unlock()
		return nil
	}
	d.state = stateClosing
	router := d.router
	d.mu.Unlock()

	err := d.supervisor.Stop()
	if router != nil {
		router.CloseWith(ErrCancelled)
	}

	d.setState(stateStopped)
	return err
}
