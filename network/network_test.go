package network

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniroom/server/protocol"
)

func TestSplitFrames(t *testing.T) {
	a := protocol.NewServerMessage(1).AppendInt(7).Bytes()
	b := protocol.NewServerMessage(2).AppendString("hi").Bytes()
	data := append(EncodeFrame(a), EncodeFrame(b)...)

	packets, err := SplitFrames(data)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{a, b}, packets)

	assert.Equal(t, []byte{0, 0, 0, 6}, EncodeFrame(a)[:4])
}

func TestSplitFramesTruncated(t *testing.T) {
	a := protocol.NewServerMessage(1).AppendInt(7).Bytes()
	data := append(EncodeFrame(a), 0, 0, 0, 9, 1)

	packets, err := SplitFrames(data)
	assert.ErrorIs(t, err, ErrTruncatedFrame)
	assert.Equal(t, [][]byte{a}, packets, "whole packets before the damage are kept")

	_, err = SplitFrames([]byte{0, 0})
	assert.ErrorIs(t, err, ErrTruncatedFrame)
}

type recordingHandler struct {
	headers chan int16
}

func (h *recordingHandler) HandleMessage(conn *Connection, msg *protocol.ClientMessage) {
	h.headers <- msg.Header()
}

// pair starts a websocket server and returns the server side connection
// together with a dialed client
func pair(t *testing.T, sendBuffer int, onServer func(*Connection)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		onServer(NewConnection(ws, sendBuffer))
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnectionRoundTrip(t *testing.T) {
	h := &recordingHandler{headers: make(chan int16, 4)}
	client := pair(t, 4, func(c *Connection) {
		go c.WritePump()
		c.Send(protocol.NewServerMessage(1778).AppendInt(0))
		c.ReadPump(h)
	})

	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	packets, err := SplitFrames(data)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	msg, err := protocol.ParseClientMessage(packets[0])
	require.NoError(t, err)
	assert.Equal(t, int16(1778), msg.Header())

	frames := append(EncodeFrame(protocol.NewServerMessage(99).Bytes()), EncodeFrame(protocol.NewServerMessage(248).Bytes())...)
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, frames))
	for _, want := range []int16{99, 248} {
		select {
		case got := <-h.headers:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("packet not delivered")
		}
	}
}

func TestSendDropsAndClosesWhenQueueFull(t *testing.T) {
	closed := make(chan bool, 1)
	pair(t, 1, func(c *Connection) {
		// no write pump: the queue never drains
		c.Send(protocol.NewServerMessage(1))
		c.Send(protocol.NewServerMessage(2))
		select {
		case <-c.Done():
			closed <- true
		default:
			closed <- false
		}
		c.Send(protocol.NewServerMessage(3))
	})

	select {
	case ok := <-closed:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("server handler did not run")
	}
}
