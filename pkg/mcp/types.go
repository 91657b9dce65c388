// Package mcp implements the transport and protocol engine that drives an
// MCP server over a child-process stdio (or container-attach) transport:
// process lifecycle, line-delimited JSON framing, request/response
// correlation, and the initialize/initialized handshake.
package mcp

import (
	"encoding/json"
	"time"

	"github.com/mcptest/mcptest/pkg/jsonrpc"
)

// JSON-RPC 2.0 types, re-exported from pkg/jsonrpc so callers of this
// package don't need a second import for the wire shape.
type Request = jsonrpc.Request
type Response = jsonrpc.Response
type Error = jsonrpc.Error

const (
	ParseError     = jsonrpc.ParseError
	InvalidRequest = jsonrpc.InvalidRequest
	MethodNotFound = jsonrpc.MethodNotFound
	InvalidParams  = jsonrpc.InvalidParams
	InternalError  = jsonrpc.InternalError
)

// NewErrorResponse creates a JSON-RPC error response.
var NewErrorResponse = jsonrpc.NewErrorResponse

// NewSuccessResponse creates a JSON-RPC success response.
var NewSuccessResponse = jsonrpc.NewSuccessResponse

// ProtocolVersion is the MCP protocol version this client advertises
// during the initialize handshake. Compatibility with whatever version
// the server replies with is not validated beyond shape (presence of
// serverInfo and capabilities) — see Driver.handshake.
const ProtocolVersion = "2024-11-05"

// Default timing constants.
const (
	// DefaultStartupTimeout is used when a ServerDescriptor omits
	// StartupTimeoutMs.
	DefaultStartupTimeout = 5 * time.Second

	// DefaultRequestTimeout bounds how long a single test's request
	// waits for a matching response before failing with ReadTimeout.
	DefaultRequestTimeout = 10 * time.Second

	// ProcessKillGrace is how long Supervisor.Stop waits for a graceful
	// exit after closing stdin / sending SIGTERM before escalating to a
	// forced kill.
	ProcessKillGrace = 250 * time.Millisecond
)

// MaxFrameSize bounds a single stdout/stdin JSON-RPC line.
const MaxFrameSize = 4 * 1024 * 1024

// ClientInfo identifies this harness to the server during initialize.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo identifies the server, returned in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities describes what the client/server can do.
type Capabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// InitializeParams is sent as params of the "initialize" request.
type InitializeParams struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ClientInfo      ClientInfo   `json:"clientInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// InitializeResult is the result of a successful "initialize" request.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// Tool is an MCP tool definition as returned by tools/list.
type Tool struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolsListResult is the result of a "tools/list" request.
type ToolsListResult struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// ToolCallParams is sent as params of a "tools/call" request.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolCallResult is the result of a "tools/call" request.
type ToolCallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is one item of tool call result content.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewTextContent creates a text content item.
func NewTextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ServerDescriptor is the launch descriptor consumed from the config
// collaborator (pkg/config). It is not owned by this package.
type ServerDescriptor struct {
	Name             string            `yaml:"name" json:"name"`
	Command          string            `yaml:"command" json:"command"`
	Args             []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Cwd              string            `yaml:"cwd,omitempty" json:"cwd,omitempty"`
	Env              map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	StartupTimeoutMs int               `yaml:"startupTimeoutMs,omitempty" json:"startupTimeoutMs,omitempty"`
	ReadyPattern     string            `yaml:"readyPattern,omitempty" json:"readyPattern,omitempty"`

	// Runtime selects the Supervisor implementation. "" or "process"
	// (the default) launches Command as a local child process;
	// "docker" launches Image as an attached container instead.
	Runtime string `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Image   string `yaml:"image,omitempty" json:"image,omitempty"`

	// Ports are additional docker-runtime port bindings in
	// "hostPort:containerPort[/proto]" form, for servers under test that
	// also listen on a TCP port alongside their MCP stdio transport
	// (e.g. a sidecar health endpoint). Ignored by ProcessSupervisor.
	Ports []string `yaml:"ports,omitempty" json:"ports,omitempty"`
}

// StartupTimeout resolves the configured startup timeout, applying the
// §6 default of 5000ms when unset.
func (d ServerDescriptor) StartupTimeout() time.Duration {
	if d.StartupTimeoutMs <= 0 {
		return DefaultStartupTimeout
	}
	return time.Duration(d.StartupTimeoutMs) * time.Millisecond
}
