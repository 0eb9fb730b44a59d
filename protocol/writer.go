// Package protocol implements the big-endian binary encoding shared by every
// outbound and inbound packet.
package protocol

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// MaxStringLength is the largest byte length a 2-byte prefix can describe
const MaxStringLength = math.MaxUint16

// ServerMessage is an append-only builder for one outbound packet. It does no
// schema validation; composers are responsible for field order and count.
type ServerMessage struct {
	header int16
	body   []byte
}

// NewServerMessage starts a packet with the given header id
func NewServerMessage(header int16) *ServerMessage {
	return &ServerMessage{header: header, body: make([]byte, 0, 64)}
}

// Header returns the packet header id
func (m *ServerMessage) Header() int16 {
	return m.header
}

// Body returns the appended fields without the header
func (m *ServerMessage) Body() []byte {
	return m.body
}

// Bytes returns the 2-byte header followed by the body. No outer length
// prefix is added; framing belongs to the transport.
func (m *ServerMessage) Bytes() []byte {
	out := make([]byte, 2, 2+len(m.body))
	binary.BigEndian.PutUint16(out, uint16(m.header))
	return append(out, m.body...)
}

func (m *ServerMessage) AppendBool(v bool) *ServerMessage {
	if v {
		m.body = append(m.body, 1)
	} else {
		m.body = append(m.body, 0)
	}
	return m
}

func (m *ServerMessage) AppendByte(v byte) *ServerMessage {
	m.body = append(m.body, v)
	return m
}

func (m *ServerMessage) AppendShort(v int16) *ServerMessage {
	return m.AppendUShort(uint16(v))
}

func (m *ServerMessage) AppendUShort(v uint16) *ServerMessage {
	m.body = binary.BigEndian.AppendUint16(m.body, v)
	return m
}

func (m *ServerMessage) AppendInt(v int32) *ServerMessage {
	return m.AppendUInt(uint32(v))
}

func (m *ServerMessage) AppendUInt(v uint32) *ServerMessage {
	m.body = binary.BigEndian.AppendUint32(m.body, v)
	return m
}

func (m *ServerMessage) AppendLong(v int64) *ServerMessage {
	m.body = binary.BigEndian.AppendUint64(m.body, uint64(v))
	return m
}

func (m *ServerMessage) AppendFloat(v float32) *ServerMessage {
	return m.AppendUInt(math.Float32bits(v))
}

func (m *ServerMessage) AppendDouble(v float64) *ServerMessage {
	m.body = binary.BigEndian.AppendUint64(m.body, math.Float64bits(v))
	return m
}

// AppendString writes a 2-byte byte length followed by the UTF-8 bytes.
// Strings longer than MaxStringLength bytes are cut at the last whole rune
// that fits.
func (m *ServerMessage) AppendString(s string) *ServerMessage {
	if len(s) > MaxStringLength {
		s = truncateUTF8(s, MaxStringLength)
	}
	m.AppendUShort(uint16(len(s)))
	m.body = append(m.body, s...)
	return m
}

// AppendBytes copies raw bytes verbatim
func (m *ServerMessage) AppendBytes(b []byte) *ServerMessage {
	m.body = append(m.body, b...)
	return m
}

func truncateUTF8(s string, n int) string {
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
