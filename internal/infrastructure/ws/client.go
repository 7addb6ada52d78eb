package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 32 * 1024

	DefaultSendBuffer = 256
)

// MessageHandler receives decoded inbound events. HandleDisconnect runs once
// when the read side of the connection ends.
type MessageHandler interface {
	HandleMessage(ctx context.Context, c *Client, msg InboundMessage)
	HandleDisconnect(connID string)
}

type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	id      string
	logger  logging.Logger

	closeOnce sync.Once
	closed    chan struct{}
	mu        sync.RWMutex
}

func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}
}

func NewClient(conn *websocket.Conn, bufferSize int, logger logging.Logger) *Client {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, bufferSize),
		id:      uuid.NewString(),
		logger:  logger,
		closed:  make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues msg without blocking. It returns false when the buffer is full
// or the client is closed.
func (c *Client) Send(msg *WSMessage) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.IsClosed() {
		return false
	}

	select {
	case c.Message <- msg:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which sends a close frame and shuts the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closed)
		close(c.Message)
		c.mu.Unlock()
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Client) ReadMessage(ctx context.Context, handler MessageHandler) {
	defer func() {
		handler.HandleDisconnect(c.id)
		c.Close()
		_ = c.conn.Close()
	}()

	raw := c.conn.conn
	raw.SetReadLimit(maxMessageSize)
	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn(logging.WebSocket, logging.Disconnect, "ws read error", map[logging.ExtraKey]any{
					logging.ConnID:       c.id,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		if len(data) == 0 {
			continue
		}

		msg, err := DecodeInbound(data)
		if err != nil {
			c.Send(NewError("", CodeBadRequest, err.Error()))
			continue
		}

		handler.HandleMessage(ctx, c, msg)
	}
}

func (c *Client) WriteMessage() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Message:
			if !ok {
				_ = c.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait),
				)
				return
			}

			if err := c.conn.WriteJSON(msg, time.Now().Add(writeWait)); err != nil {
				c.logger.Warn(logging.WebSocket, logging.Emit, "ws write error", map[logging.ExtraKey]any{
					logging.ConnID:       c.id,
					logging.ErrorMessage: err.Error(),
				})
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
