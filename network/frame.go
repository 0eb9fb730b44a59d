package network

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxPacketSize bounds a single inbound packet
const MaxPacketSize = 1 << 20

var ErrTruncatedFrame = errors.New("truncated frame")

// EncodeFrame prefixes a packet with its 4-byte big-endian length
func EncodeFrame(packet []byte) []byte {
	frame := make([]byte, 4+len(packet))
	binary.BigEndian.PutUint32(frame, uint32(len(packet)))
	copy(frame[4:], packet)
	return frame
}

// SplitFrames cuts a websocket message into the length-prefixed packets it
// carries. A message may hold any number of whole packets.
func SplitFrames(data []byte) ([][]byte, error) {
	var packets [][]byte
	for len(data) > 0 {
		if len(data) < 4 {
			return packets, fmt.Errorf("%w: %d header bytes", ErrTruncatedFrame, len(data))
		}
		n := binary.BigEndian.Uint32(data)
		if n > MaxPacketSize {
			return packets, fmt.Errorf("packet of %d bytes exceeds limit", n)
		}
		if uint32(len(data)-4) < n {
			return packets, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncatedFrame, n, len(data)-4)
		}
		packets = append(packets, data[4:4+n])
		data = data[4+n:]
	}
	return packets, nil
}
