package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortRead is reported when a field runs past the end of the packet
var ErrShortRead = errors.New("protocol: read past end of packet")

// ClientMessage reads fields in the same encoding ServerMessage writes.
// The first failed read is sticky: later reads return zero values and Err
// reports the failure.
type ClientMessage struct {
	header int16
	body   []byte
	pos    int
	err    error
}

// NewClientMessage wraps a packet body that followed the header
func NewClientMessage(header int16, body []byte) *ClientMessage {
	return &ClientMessage{header: header, body: body}
}

// ParseClientMessage splits a header-prefixed packet as produced by
// ServerMessage.Bytes.
func ParseClientMessage(packet []byte) (*ClientMessage, error) {
	if len(packet) < 2 {
		return nil, fmt.Errorf("packet of %d bytes has no header: %w", len(packet), ErrShortRead)
	}
	header := int16(binary.BigEndian.Uint16(packet))
	return NewClientMessage(header, packet[2:]), nil
}

func (c *ClientMessage) Header() int16 {
	return c.header
}

// Err returns the first read failure, if any
func (c *ClientMessage) Err() error {
	return c.err
}

// Remaining is the number of unread body bytes
func (c *ClientMessage) Remaining() int {
	return len(c.body) - c.pos
}

func (c *ClientMessage) next(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.body) {
		c.err = ErrShortRead
		return nil
	}
	b := c.body[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *ClientMessage) ReadBool() bool {
	return c.ReadUint8() != 0
}

func (c *ClientMessage) ReadUint8() byte {
	b := c.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *ClientMessage) ReadShort() int16 {
	return int16(c.ReadUShort())
}

func (c *ClientMessage) ReadUShort() uint16 {
	b := c.next(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (c *ClientMessage) ReadInt() int32 {
	return int32(c.ReadUInt())
}

func (c *ClientMessage) ReadUInt() uint32 {
	b := c.next(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (c *ClientMessage) ReadLong() int64 {
	b := c.next(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func (c *ClientMessage) ReadFloat() float32 {
	return math.Float32frombits(c.ReadUInt())
}

func (c *ClientMessage) ReadDouble() float64 {
	b := c.next(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// ReadString reads a 2-byte length prefixed UTF-8 string
func (c *ClientMessage) ReadString() string {
	n := int(c.ReadUShort())
	b := c.next(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadBytes reads n raw bytes
func (c *ClientMessage) ReadBytes(n int) []byte {
	b := c.next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
