package network

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"furniroom/server/protocol"
)

var droppedFrames = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "furniroom",
	Name:      "dropped_frames_total",
	Help:      "Outbound frames dropped because a client's send queue was full.",
})

func init() {
	prometheus.MustRegister(droppedFrames)
}

// Connection wraps the WebSocket connection with additional fields
type Connection struct {
	ID string

	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper with a send queue of
// sendBuffer frames
func NewConnection(ws *websocket.Conn, sendBuffer int) *Connection {
	return &Connection{
		ID:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// ReadPump reads messages from the WebSocket connection and hands every
// packet they carry to h
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			return
		}

		packets, err := SplitFrames(message)
		if err != nil {
			log.Printf("Connection %s: %v", c.ID, err)
		}
		for _, packet := range packets {
			msg, err := protocol.ParseClientMessage(packet)
			if err != nil {
				log.Printf("Connection %s: %v", c.ID, err)
				continue
			}
			h.HandleMessage(c, msg)
		}
	}
}

// WritePump writes queued frames to the WebSocket connection
func (c *Connection) WritePump() {
	defer c.Close()

	for {
		select {
		case frame := <-c.send:
			if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-c.done:
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues a message without blocking. If the queue is full the frame is
// dropped and the connection closed.
func (c *Connection) Send(msg *protocol.ServerMessage) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- EncodeFrame(msg.Bytes()):
	default:
		droppedFrames.Inc()
		log.Printf("Connection %s: send queue full, closing", c.ID)
		c.Close()
	}
}

// Close shuts the connection down; it is safe to call more than once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// Done is closed once the connection has been closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// MessageHandler interface for handling messages
type MessageHandler interface {
	HandleMessage(conn *Connection, msg *protocol.ClientMessage)
}
