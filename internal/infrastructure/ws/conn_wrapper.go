package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWrapper serialises writes; gorilla connections allow one concurrent writer.
type connWrapper struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func newConnWrapper(c *websocket.Conn) *connWrapper {
	return &connWrapper{conn: c}
}

func (w *connWrapper) WriteJSON(v any, deadline time.Time) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) WriteControl(messageType int, data []byte, deadline time.Time) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteControl(messageType, data, deadline)
}

func (w *connWrapper) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}
