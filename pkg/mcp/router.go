package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Router correlates JSON-RPC frames read from a server's stdout with the
// reads that are waiting for them. A read can name the id it expects, or
// (for the "send then read whatever comes back" style of test) ask for
// the next frame regardless of id.
//
// Frames are delivered to Router.Deliver by the Framer as they're parsed.
// A frame whose id matches a waiting id-specific read resolves that read
// immediately. Otherwise it resolves the oldest pending no-id read, if
// any. Otherwise it's stored, in arrival order, in an unclaimed buffer
// until some later read claims it. Symmetrically, a new read first checks
// the unclaimed buffer before it actually waits.
type Router struct {
	writeMu sync.Mutex
	w       io.Writer

	mu          sync.Mutex
	pendingByID map[string]*pendingRead
	pendingAny  []*pendingRead
	unclaimed   []*Response
	closeErr    error
}

type pendingRead struct {
	ch chan readResult
}

type readResult struct {
	frame *Response
	err   error
}

// NewRouter creates a Router that writes outgoing frames to w.
func NewRouter(w io.Writer) *Router {
	return &Router{
		w:           w,
		pendingByID: make(map[string]*pendingRead),
	}
}

// Send marshals req as a single JSON-RPC line and writes it.
func (r *Router) Send(req Request) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.w == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mcp: marshaling request: %w", err)
	}
	data = append(data, '\n')
	if _, err := r.w.Write(data); err != nil {
		return fmt.Errorf("mcp: writing request: %w", err)
	}
	return nil
}

// Deliver hands a frame parsed from the server's stdout to the router.
func (r *Router) Deliver(frame *Response) {
	id := idKey(frame.ID)

	r.mu.Lock()
	if id != "" {
		if pr, ok := r.pendingByID[id]; ok {
			delete(r.pendingByID, id)
			r.mu.Unlock()
			pr.ch <- readResult{frame: frame}
			return
		}
	}
	if len(r.pendingAny) > 0 {
		pr := r.pendingAny[0]
		r.pendingAny = r.pendingAny[1:]
		r.mu.Unlock()
		pr.ch <- readResult{frame: frame}
		return
	}
	r.unclaimed = append(r.unclaimed, frame)
	r.mu.Unlock()
}

// Read waits for a frame. If expectedID is non-empty, it waits
// specifically for the response with that id; otherwise it returns
// whichever frame arrives (or is already unclaimed) next.
func (r *Router) Read(ctx context.Context, expectedID string, timeout time.Duration) (*Response, error) {
	r.mu.Lock()
	if r.closeErr != nil {
		err := r.closeErr
		r.mu.Unlock()
		return nil, err
	}

	if expectedID != "" {
		for i, f := range r.unclaimed {
			if idKey(f.ID) == expectedID {
				r.unclaimed = append(r.unclaimed[:i], r.unclaimed[i+1:]...)
				r.mu.Unlock()
				return f, nil
			}
		}
		pr := &pendingRead{ch: make(chan readResult, 1)}
		r.pendingByID[expectedID] = pr
		r.mu.Unlock()
		return r.wait(ctx, pr, timeout, expectedID, func() { r.cancelByID(expectedID) })
	}

	if len(r.unclaimed) > 0 {
		f := r.unclaimed[0]
		r.unclaimed = r.unclaimed[1:]
		r.mu.Unlock()
		return f, nil
	}
	pr := &pendingRead{ch: make(chan readResult, 1)}
	r.pendingAny = append(r.pendingAny, pr)
	r.mu.Unlock()
	return r.wait(ctx, pr, timeout, "", func() { r.cancelAny(pr) })
}

func (r *Router) wait(ctx context.Context, pr *pendingRead, timeout time.Duration, expectedID string, cancel func()) (*Response, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pr.ch:
		return res.frame, res.err
	case <-timer.C:
		cancel()
		return nil, &ReadTimeout{RequestID: expectedID}
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

func (r *Router) cancelByID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pendingByID, id)
}

func (r *Router) cancelAny(pr *pendingRead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pendingAny {
		if p == pr {
			r.pendingAny = append(r.pendingAny[:i], r.pendingAny[i+1:]...)
			break
		}
	}
}

// CloseWith resolves every pending read with err and makes every future
// Read call return err immediately. Used when the server dies or the
// connection is torn down while reads are outstanding.
func (r *Router) CloseWith(err error) {
	r.mu.Lock()
	r.closeErr = err
	byID := r.pendingByID
	any := r.pendingAny
	r.pendingByID = make(map[string]*pendingRead)
	r.pendingAny = nil
	r.mu.Unlock()

	for _, pr := range byID {
		pr.ch <- readResult{err: err}
	}
	for _, pr := range any {
		pr.ch <- readResult{err: err}
	}
}

func idKey(id *json.RawMessage) string {
	if id == nil {
		return ""
	}
	return string(*id)
}
