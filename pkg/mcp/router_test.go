package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func rawID(id int) *json.RawMessage {
	b, _ := json.Marshal(id)
	raw := json.RawMessage(b)
	return &raw
}

func TestRouter_SendWritesNewlineDelimitedJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRouter(&buf)

	if err := r.Send(Request{JSONRPC: "2.0", ID: rawID(1), Method: "tools/list"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := buf.String(); got != `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n" {
		t.Fatalf("unexpected wire output: %q", got)
	}
}

func TestRouter_ReadMatchesByID(t *testing.T) {
	r := NewRouter(&bytes.Buffer{})

	done := make(chan struct{})
	var got *Response
	var err error
	go func() {
		got, err = r.Read(context.Background(), "2", time.Second)
		close(done)
	}()

	r.Deliver(&Response{JSONRPC: "2.0", ID: rawID(1)})
	r.Deliver(&Response{JSONRPC: "2.0", ID: rawID(2)})

	<-done
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(*got.ID) != "2" {
		t.Fatalf("expected id 2, got %s", *got.ID)
	}
}

func TestRouter_ReadClaimsAlreadyUnclaimedFrame(t *testing.T) {
	r := NewRouter(&bytes.Buffer{})
	r.Deliver(&Response{JSONRPC: "2.0", ID: rawID(5)})

	got, err := r.Read(context.Background(), "5", time.Second)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(*got.ID) != "5" {
		t.Fatalf("expected id 5, got %s", *got.ID)
	}
}

func TestRouter_NoIDReadDrainsFIFO(t *testing.T) {
	r := NewRouter(&bytes.Buffer{})
	r.Deliver(&Response{JSONRPC: "2.0", ID: rawID(1)})
	r.Deliver(&Response{JSONRPC: "2.0", ID: rawID(2)})

	first, err := r.Read(context.Background(), "", time.Second)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(*first.ID) != "1" {
		t.Fatalf("expected id 1 first, got %s", *first.ID)
	}

	second, err := r.Read(context.Background(), "", time.Second)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(*second.ID) != "2" {
		t.Fatalf("expected id 2 second, got %s", *second.ID)
	}
}

func TestRouter_ReadTimesOut(t *testing.T) {
	r := NewRouter(&bytes.Buffer{})

	_, err := r.Read(context.Background(), "1", 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	rt, ok := err.(*ReadTimeout)
	if !ok {
		t.Fatalf("expected *ReadTimeout, got %T", err)
	}
	if rt.RequestID != "1" {
		t.Fatalf("expected RequestID 1, got %s", rt.RequestID)
	}
}

func TestRouter_CloseWithResolvesPendingReads(t *testing.T) {
	r := NewRouter(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() {
		_, err := r.Read(context.Background(), "1", time.Second)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	sentinel := &ServerDied{ExitCode: 1}
	r.CloseWith(sentinel)

	select {
	case err := <-done:
		if err != sentinel {
			t.Fatalf("expected sentinel error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not return after CloseWith")
	}

	if _, err := r.Read(context.Background(), "2", time.Second); err != sentinel {
		t.Fatalf("expected reads after close to fail immediately, got %v", err)
	}
}
