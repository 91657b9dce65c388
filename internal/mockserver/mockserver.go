// Package mockserver is an in-repo fixture MCP server with which the
// transport/protocol and test-execution engines can be exercised
// end-to-end without requiring an external server binary. No other
// package imports it: the pkg/mcp tests drive small sh scripts and the
// pkg/testrunner tests use a hand-written fake client. It speaks the same
// line-delimited stdio JSON-RPC protocol a real server would, with a
// small, deterministic set of tools.
package mockserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Request is a decoded JSON-RPC 2.0 request line.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an encoded JSON-RPC 2.0 response line.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

// Tool is an MCP tool definition as returned by tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Behavior controls a Server's scripted misbehavior, letting tests of the
// supervisor/driver/runner exercise startup-failure, slow-response, and
// noisy-stderr code paths without a second fixture binary.
type Behavior struct {
	// ReadyLine is written to stderr once at startup, for readiness-
	// pattern tests. Empty means readiness is declared on spawn alone.
	ReadyLine string
	// StderrOnCall, keyed by tool name, is written to stderr immediately
	// before that tool's call result is returned.
	StderrOnCall map[string]string
	// SilentMethods never receive a response, simulating a server that
	// drops a request (exercises ReadTimeout).
	SilentMethods map[string]bool
}

var builtinTools = []Tool{
	{
		Name:        "echo",
		Description: "Echoes back the input message",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []string{"message"},
		},
	},
	{
		Name:        "add",
		Description: "Adds two numbers together",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
	},
}

// Server is a single-connection mock MCP server driving one stdin/stdout
// (plus stderr) triple.
type Server struct {
	behavior Behavior

	mu    sync.Mutex
	tools []Tool
}

// New creates a Server with the built-in echo/add tools.
func New(behavior Behavior) *Server {
	return &Server{behavior: behavior, tools: builtinTools}
}

// Run reads JSON-RPC request lines from r and writes response lines to w
// until r reaches EOF or ctx-less cancellation isn't needed because the
// caller closes r. Diagnostic lines are written to errw. Run returns the
// first unrecoverable read error (io.EOF is not reported as an error).
func (s *Server) Run(r io.Reader, w io.Writer, errw io.Writer) error {
	if s.behavior.ReadyLine != "" {
		fmt.Fprintln(errw, s.behavior.ReadyLine)
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeLine(w, Response{JSONRPC: "2.0", Error: &Error{Code: -32700, Message: "parse error"}})
			continue
		}
		if s.behavior.SilentMethods[req.Method] {
			continue
		}
		resp := s.handle(req, errw)
		if resp != nil {
			writeLine(w, *resp)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}

func (s *Server) handle(req Request, errw io.Writer) *Response {
	switch req.Method {
	case "initialize":
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]any{
				"protocolVersion": "2024-11-05",
				"serverInfo":      map[string]any{"name": "mockserver", "version": "0.1.0"},
				"capabilities":    map[string]any{"tools": map[string]any{}},
			},
		}

	case "notifications/initialized":
		return nil

	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: toolsListResult{Tools: s.tools}}

	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return &Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: -32602, Message: "invalid params"}}
		}
		if line, ok := s.behavior.StderrOnCall[params.Name]; ok {
			fmt.Fprintln(errw, line)
		}
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: callTool(params)}

	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]string{"status": "ok"}}

	default:
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: -32601, Message: "method not found"}}
	}
}

func callTool(params toolCallParams) toolCallResult {
	switch params.Name {
	case "echo":
		msg, _ := params.Arguments["message"].(string)
		return toolCallResult{Content: []content{{Type: "text", Text: "Echo: " + msg}}}
	case "add":
		a, _ := params.Arguments["a"].(float64)
		b, _ := params.Arguments["b"].(float64)
		return toolCallResult{Content: []content{{Type: "text", Text: fmt.Sprintf("Result: %v", a+b)}}}
	default:
		return toolCallResult{
			Content: []content{{Type: "text", Text: "unknown tool: " + params.Name}},
			IsError: true,
		}
	}
}

func writeLine(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	w.Write(data)
	w.Write([]byte("\n"))
}
