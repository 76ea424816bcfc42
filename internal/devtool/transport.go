package devtool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport carries raw protocol messages over the debug socket. One
// goroutine reads; writes may come from many and must be serialized by the
// implementation.
type Transport interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	Close() error
}

// wsTransport adapts a WebSocket to Transport. The write mutex exists
// because the underlying connection supports only one concurrent writer.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, url string, timeout time.Duration) (Transport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Code: ErrCodeConnectTimeout, Message: "debug socket handshake timed out", Err: err}
		}
		return nil, &Error{Code: ErrCodeTransport, Message: "dial " + url, Err: err}
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
