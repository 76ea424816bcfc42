package devtool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultConnectTimeout bounds discovery plus the socket handshake.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds each individual exchange.
	DefaultRequestTimeout = 30 * time.Second
)

// Recorder observes every exchange on a connection. Implementations must be
// safe for concurrent use; the zero fault string means the exchange
// succeeded at the transport level.
type Recorder interface {
	RecordSend(session string, id uint64, method string, params []byte)
	RecordResult(session string, id uint64, result []byte, fault string)
}

type config struct {
	connectTimeout time.Duration
	requestTimeout time.Duration
	recorder       Recorder
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.Default(),
	}
}

// Option configures Connect and NewConn.
type Option func(*config)

// WithConnectTimeout bounds discovery and the socket handshake.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) { c.connectTimeout = d }
}

// WithRequestTimeout bounds how long each send waits for its reply.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) { c.requestTimeout = d }
}

// WithRecorder mirrors every exchange into r.
func WithRecorder(r Recorder) Option {
	return func(c *config) { c.recorder = r }
}

// WithLogger routes connection diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// outcome is what a waiting sender receives: exactly one of reply or err.
type outcome struct {
	reply reply
	err   error
}

// Conn multiplexes tagged request/reply exchanges over one Transport. Many
// goroutines may send concurrently; the read loop hands each reply to the
// goroutine whose request id it carries.
type Conn struct {
	session   string
	transport Transport
	cfg       config

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan outcome
	closed  bool
}

// NewConn wraps an established transport and starts its read loop. Most
// callers want Connect instead; NewConn exists for tests and for callers
// that dial their own socket.
func NewConn(t Transport, opts ...Option) *Conn {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	c := &Conn{
		session:   uuid.Must(uuid.NewV7()).String(),
		transport: t,
		cfg:       cfg,
		pending:   make(map[uint64]chan outcome),
	}
	go c.readLoop()
	return c
}

// Connect discovers an attachable page on the host's debug endpoint, dials
// its socket, and returns a live connection. endpoint is the base HTTP URL
// of the debug server.
func Connect(ctx context.Context, endpoint string, sel Selector, opts ...Option) (*Conn, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout)
	defer cancel()

	targets, err := ListTargets(ctx, endpoint)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{Code: ErrCodeConnectTimeout, Message: "discovery timed out", Err: err}
		}
		return nil, err
	}
	target, err := SelectTarget(targets, sel)
	if err != nil {
		return nil, err
	}

	t, err := dialWebSocket(ctx, target.WebSocketDebuggerURL, cfg.connectTimeout)
	if err != nil {
		return nil, err
	}

	conn := NewConn(t, opts...)
	conn.cfg.logger.Debug("attached to target",
		"session", conn.session,
		"target", target.ID,
		"title", target.Title)
	return conn, nil
}

// Session returns the connection's session token, minted at attach time and
// carried through recorded exchanges.
func (c *Conn) Session() string {
	return c.session
}

// Send ships one command and blocks until its reply arrives, the request
// times out, the context is canceled, or the connection goes away. Safe for
// concurrent use; replies are matched by id, never by order.
func (c *Conn) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, &Error{Code: ErrCodeTransport, Message: "encode params for " + method, Err: err}
		}
		rawParams = encoded
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &Error{Code: ErrCodeNotConnected, Message: "connection is closed"}
	}
	c.nextID++
	id := c.nextID
	ch := make(chan outcome, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(request{ID: id, Method: method, Params: rawParams})
	if err != nil {
		c.forget(id)
		return nil, &Error{Code: ErrCodeTransport, Message: "encode request", Err: err}
	}

	if c.cfg.recorder != nil {
		c.cfg.recorder.RecordSend(c.session, id, method, rawParams)
	}

	if err := c.transport.WriteMessage(payload); err != nil {
		c.forget(id)
		werr := &Error{Code: ErrCodeTransport, Message: "write " + method, Err: err}
		c.record(id, nil, werr.Error())
		return nil, werr
	}

	timer := time.NewTimer(c.cfg.requestTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			c.record(id, nil, out.err.Error())
			return nil, out.err
		}
		c.record(id, out.reply.Result, "")
		return out.reply.Result, nil
	case <-timer.C:
		c.forget(id)
		terr := &Error{
			Code:    ErrCodeRequestTimeout,
			Message: fmt.Sprintf("no reply to %s within %s", method, c.cfg.requestTimeout),
		}
		c.record(id, nil, terr.Error())
		return nil, terr
	case <-ctx.Done():
		c.forget(id)
		c.record(id, nil, ctx.Err().Error())
		return nil, ctx.Err()
	}
}

// Evaluate runs a script inside the host and returns its serialized value.
// The script's promise is awaited before the host replies. A thrown
// exception comes back as *RemoteFault; the connection remains usable.
func (c *Conn) Evaluate(ctx context.Context, expression string) (json.RawMessage, error) {
	raw, err := c.Send(ctx, "Runtime.evaluate", evaluateParams{
		Expression:    expression,
		ReturnByValue: true,
		AwaitPromise:  true,
	})
	if err != nil {
		return nil, err
	}

	var res evaluateResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &Error{Code: ErrCodeTransport, Message: "decode evaluate result", Err: err}
	}
	if res.ExceptionDetails != nil {
		return nil, &RemoteFault{Message: res.ExceptionDetails.message(), Raw: raw}
	}
	return res.Result.Value, nil
}

// Close tears down the transport and fails every pending exchange. Close is
// idempotent; only the first call closes the socket.
func (c *Conn) Close() error {
	pending, first := c.detach()
	if !first {
		return nil
	}
	err := c.transport.Close()
	failPending(pending, &Error{Code: ErrCodeConnectionClosed, Message: "connection closed while awaiting reply"})
	return err
}

// readLoop is the only reader of the transport. It routes tagged replies to
// their waiting senders and drops everything else.
func (c *Conn) readLoop() {
	for {
		data, err := c.transport.ReadMessage()
		if err != nil {
			pending, first := c.detach()
			if first {
				_ = c.transport.Close()
				c.cfg.logger.Debug("debug socket closed", "session", c.session, "error", err)
			}
			failPending(pending, &Error{Code: ErrCodeConnectionClosed, Message: "debug socket closed", Err: err})
			return
		}

		var r reply
		if err := json.Unmarshal(data, &r); err != nil || r.ID == 0 {
			// Protocol events carry no id. Nothing here consumes them.
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[r.ID]
		if ok {
			delete(c.pending, r.ID)
		}
		c.mu.Unlock()

		if !ok {
			c.cfg.logger.Debug("dropping unmatched reply", "session", c.session, "id", r.ID)
			continue
		}
		ch <- outcome{reply: r}
	}
}

// detach marks the connection closed and takes ownership of the pending
// set. The second return is false if another caller already detached.
func (c *Conn) detach() (map[uint64]chan outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false
	}
	c.closed = true
	pending := c.pending
	c.pending = nil
	return pending, true
}

func failPending(pending map[uint64]chan outcome, err *Error) {
	for _, ch := range pending {
		ch <- outcome{err: err}
	}
}

func (c *Conn) forget(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		delete(c.pending, id)
	}
}

func (c *Conn) record(id uint64, result []byte, fault string) {
	if c.cfg.recorder != nil {
		c.cfg.recorder.RecordResult(c.session, id, result, fault)
	}
}
