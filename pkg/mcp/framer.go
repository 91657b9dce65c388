package mcp

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mcptest/mcptest/pkg/logging"
)

// maxNoiseLines bounds how many non-JSON stdout lines the Framer retains
// for diagnostics; older lines are dropped once the limit is reached.
const maxNoiseLines = 200

// Framer turns a server's raw stdout byte stream into JSON-RPC frames,
// delivering each to a Router. Lines that don't parse as JSON-RPC are
// protocol noise (banners, stray prints) rather than a fatal condition;
// they're logged and kept for the failure analyzer instead of being
// dropped silently.
type Framer struct {
	r      io.Reader
	router *Router
	logger *slog.Logger

	noise *logging.LogBuffer
	done  chan struct{}
}

// NewFramer creates a Framer reading from r and delivering parsed frames
// to router. A nil logger falls back to discarding.
func NewFramer(r io.Reader, router *Router, logger *slog.Logger) *Framer {
	return &Framer{
		r:      r,
		router: router,
		logger: logger,
		noise:  logging.NewLogBuffer(maxNoiseLines),
		done:   make(chan struct{}),
	}
}

// Run scans r line by line until EOF or a read error, parsing each line
// as a JSON-RPC response. It returns once the stream closes; the caller
// is expected to run it in its own goroutine for the life of the
// connection.
func (f *Framer) Run() {
	defer close(f.done)

	scanner := bufio.NewScanner(f.r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			f.recordNoise(string(line))
			continue
		}
		cp := resp
		f.router.Deliver(&cp)
	}
}

// Done is closed once Run has returned (the stdout stream ended).
func (f *Framer) Done() <-chan struct{} { return f.done }

func (f *Framer) recordNoise(line string) {
	if f.logger != nil {
		f.logger.Info("server stdout", "line", line)
	}
	f.noise.Add(logging.BufferedEntry{Message: line})
}

// Noise returns stdout lines that did not parse as JSON-RPC, oldest
// first.
func (f *Framer) Noise() []string {
	entries := f.noise.GetRecent(0)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
