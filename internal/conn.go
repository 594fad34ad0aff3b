package internal

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBacklog = 256

// Conn wraps one websocket transport. Frames are queued on Send and
// drained by the gateway's write pump, so broadcasts never block on a
// slow client. The ID lets a stale transport recognize that the player
// has already been rebound to a newer connection.
type Conn struct {
	ID   string
	WS   *websocket.Conn
	Send chan []byte
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   uuid.NewString(),
		WS:   ws,
		Send: make(chan []byte, sendBacklog),
	}
}

// Enqueue queues a frame without blocking; a full backlog drops it.
func (c *Conn) Enqueue(frame []byte) {
	if c == nil || frame == nil {
		return
	}
	select {
	case c.Send <- frame:
	default:
	}
}

// Close tears down the underlying transport; the write pump exits on its
// next failed write.
func (c *Conn) Close() {
	if c != nil && c.WS != nil {
		c.WS.Close()
	}
}
