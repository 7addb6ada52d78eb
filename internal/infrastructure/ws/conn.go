package ws

// Conn is one registered endpoint. Send must never block.
type Conn interface {
	ID() string
	Send(msg *WSMessage) bool
	Close()
}
