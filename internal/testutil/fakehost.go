package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// FakeHost is an in-memory stand-in for the canvas host's debug socket.
//
// It implements the transport interface the connection layer dials: writes
// from the connection are decoded and queued as Requests, and nothing is
// delivered back until the test says so. That puts reply ORDER under test
// control, which is the whole point: correlation must work when replies
// come back out of order.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FakeHost struct {
	mu       sync.Mutex
	requests []Request
	inbound  chan []byte
	auto     json.RawMessage
	closed   bool
}

// Request is one decoded command the connection wrote to the socket.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// NewFakeHost creates a host with room for 64 undelivered replies.
func NewFakeHost() *FakeHost {
	return &FakeHost{inbound: make(chan []byte, 64)}
}

// WriteMessage records the decoded request. In auto-reply mode it also
// queues an immediate success reply.
func (h *FakeHost) WriteMessage(data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("fake host: undecodable request: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("fake host: closed")
	}
	h.requests = append(h.requests, req)
	if h.auto != nil {
		h.inbound <- []byte(fmt.Sprintf(
			`{"id":%d,"result":{"result":{"type":"object","value":%s}}}`,
			req.ID, h.auto))
	}
	return nil
}

// ReadMessage blocks until the test delivers a reply or the host closes.
func (h *FakeHost) ReadMessage() ([]byte, error) {
	data, ok := <-h.inbound
	if !ok {
		return nil, errors.New("fake host: closed")
	}
	return data, nil
}

// Close ends the read side. Idempotent.
func (h *FakeHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	close(h.inbound)
	return nil
}

// AutoReply makes the host answer every subsequent request immediately with
// the given evaluate value. Useful when a test cares about requests, not
// reply ordering.
func (h *FakeHost) AutoReply(value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.auto = mustJSON(value)
}

// Requests returns a copy of every request written so far, in write order.
func (h *FakeHost) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Request, len(h.requests))
	copy(out, h.requests)
	return out
}

// WaitForRequests polls until at least n requests have arrived, then
// returns them all. Gives up after two seconds and returns what it has; the
// caller asserts on the length.
func (h *FakeHost) WaitForRequests(n int) []Request {
	deadline := time.Now().Add(2 * time.Second)
	for {
		reqs := h.Requests()
		if len(reqs) >= n || time.Now().After(deadline) {
			return reqs
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// Deliver queues one raw message for the connection's read loop.
func (h *FakeHost) Deliver(raw string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		panic("testutil: Deliver after Close")
	}
	h.inbound <- []byte(raw)
}

// ReplyValue answers request id with a successful evaluate result carrying
// the given value.
func (h *FakeHost) ReplyValue(id uint64, value any) {
	h.Deliver(fmt.Sprintf(
		`{"id":%d,"result":{"result":{"type":"object","value":%s}}}`,
		id, mustJSON(value)))
}

// ReplyException answers request id with a thrown string value.
func (h *FakeHost) ReplyException(id uint64, message string) {
	h.Deliver(fmt.Sprintf(
		`{"id":%d,"result":{"result":{"type":"undefined"},"exceptionDetails":{"text":"Uncaught","exception":{"value":%s}}}}`,
		id, mustJSON(message)))
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("testutil: unmarshalable reply value: " + err.Error())
	}
	return data
}
