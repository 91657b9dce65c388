package mcp

import (
	"context"
	"testing"
	"time"
)

// echoServerScript is a minimal sh-based MCP server stand-in: it reads
// exactly the three lines a successful Connect + ListTools exchange
// writes (initialize, notifications/initialized, tools/list) and answers
// the two that expect a reply with canned results.
const echoServerScript = `
read -r _init
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"echo","version":"1.0"},"capabilities":{}}}'
read -r _notif
read -r _list
printf '%s\n' '{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"ping","inputSchema":{}}]}}'
cat >/dev/null
`

func newEchoDriver(t *testing.T) *Driver {
	t.Helper()
	sup := NewProcessSupervisor(nil)
	desc := ServerDescriptor{Command: "sh", Args: []string{"-c", echoServerScript}}
	return NewDriver(sup, desc, ClientInfo{Name: "mcptest-test", Version: "0.0.0"}, nil)
}

func TestDriver_ConnectPerformsHandshake(t *testing.T) {
	d := newEchoDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer d.Disconnect()

	if d.State() != "initialized" {
		t.Fatalf("expected state initialized, got %s", d.State())
	}
	if got := d.ServerInfo().Name; got != "echo" {
		t.Fatalf("expected server name echo, got %s", got)
	}
}

func TestDriver_ListToolsAfterConnect(t *testing.T) {
	d := newEchoDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer d.Disconnect()

	result, err := d.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(result.Tools) != 1 || result.Tools[0].Name != "ping" {
		t.Fatalf("unexpected tools result: %+v", result.Tools)
	}
}

func TestDriver_ConnectFailsOnBadCommand(t *testing.T) {
	sup := NewProcessSupervisor(nil)
	desc := ServerDescriptor{Command: "/nonexistent/binary"}
	d := NewDriver(sup, desc, ClientInfo{Name: "mcptest-test"}, nil)

	err := d.Connect(context.Background())
	if err == nil {
		t.Fatal("expected Connect to fail")
	}
	if _, ok := err.(*StartupError); !ok {
		t.Fatalf("expected *StartupError, got %T", err)
	}
	if d.State() != "failed" {
		t.Fatalf("expected state failed, got %s", d.State())
	}
}

func TestDriver_HandshakeUsesStartupTimeoutNotDefaultRequestTimeout(t *testing.T) {
	// The server delays its initialize reply past the descriptor's short
	// startup timeout but well inside DefaultRequestTimeout (10s); if
	// handshake() ever goes back to using DefaultRequestTimeout for the
	// initialize wait, this test would hang for 10s instead of failing
	// in well under a second.
	const slowInitScript = `
sleep 1
read -r _init
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"slow","version":"1.0"},"capabilities":{}}}'
cat >/dev/null
`
	sup := NewProcessSupervisor(nil)
	desc := ServerDescriptor{
		Command:          "sh",
		Args:             []string{"-c", slowInitScript},
		StartupTimeoutMs: 100,
	}
	d := NewDriver(sup, desc, ClientInfo{Name: "mcptest-test"}, nil)
	defer d.Disconnect()

	start := time.Now()
	err := d.Connect(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected Connect to fail once the startup timeout elapses")
	}
	if elapsed >= 2*time.Second {
		t.Fatalf("handshake took %s; expected it to time out near the 100ms startup timeout, not DefaultRequestTimeout", elapsed)
	}
}

func TestDriver_CannotConnectTwice(t *testing.T) {
	d := newEchoDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer d.Disconnect()

	if err := d.Connect(ctx); err == nil {
		t.Fatal("expected second Connect to fail")
	}
}
