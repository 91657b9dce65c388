package mcp

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFramer_DeliversParsedFrames(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"result":{}}` + "\n"

	router := NewRouter(nil)
	framer := NewFramer(strings.NewReader(input), router, nil)
	go framer.Run()

	got, err := router.Read(context.Background(), "1", time.Second)
	if err != nil {
		t.Fatalf("Read id 1: %v", err)
	}
	if string(*got.ID) != "1" {
		t.Fatalf("expected id 1, got %s", *got.ID)
	}

	got, err = router.Read(context.Background(), "2", time.Second)
	if err != nil {
		t.Fatalf("Read id 2: %v", err)
	}
	if string(*got.ID) != "2" {
		t.Fatalf("expected id 2, got %s", *got.ID)
	}

	select {
	case <-framer.Done():
	case <-time.After(time.Second):
		t.Fatal("framer did not finish after EOF")
	}
}

func TestFramer_RecordsNonJSONLinesAsNoise(t *testing.T) {
	input := "server starting up\n" +
		`{"jsonrpc":"2.0","id":1,"result":{}}` + "\n" +
		"a stray debug print\n"

	router := NewRouter(nil)
	framer := NewFramer(strings.NewReader(input), router, nil)
	framer.Run()

	noise := framer.Noise()
	if len(noise) != 2 {
		t.Fatalf("expected 2 noise lines, got %d: %v", len(noise), noise)
	}
	if noise[0] != "server starting up" || noise[1] != "a stray debug print" {
		t.Fatalf("unexpected noise content: %v", noise)
	}
}
