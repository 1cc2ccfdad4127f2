package voice

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the minimal WebSocket surface the proxy needs from either side of
// a session. Both the browser connection and the upstream connection satisfy
// it, which keeps the relay testable without network sockets.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WSConn wraps a gorilla connection with a write lock and an idempotent
// Close. The proxy writes control frames while a relay goroutine forwards
// traffic, and both the session owner and the relay teardown path may call
// Close on the same connection.
type WSConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewWSConn wraps conn for concurrent use by the proxy.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// ReadMessage reads the next frame from the connection.
func (c *WSConn) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

// WriteMessage writes a frame, serializing concurrent writers.
func (c *WSConn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Close closes the underlying connection exactly once. Later calls return
// the first result.
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
