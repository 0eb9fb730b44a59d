package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniroom/server/protocol"
)

func packet(header int16, build func(m *protocol.ServerMessage)) *protocol.ClientMessage {
	m := protocol.NewServerMessage(header)
	build(m)
	return protocol.NewClientMessage(m.Header(), m.Body())
}

func TestParsePlaceItemFloor(t *testing.T) {
	c := packet(HeaderPlaceItem, func(m *protocol.ServerMessage) { m.AppendString("42 3 5 2") })
	req, err := ParsePlaceItem(c)
	require.NoError(t, err)
	assert.Equal(t, PlaceItemRequest{ItemID: 42, X: 3, Y: 5, Rotation: 2}, req)
}

func TestParsePlaceItemWall(t *testing.T) {
	c := packet(HeaderPlaceItem, func(m *protocol.ServerMessage) { m.AppendString("42 :w=2,0 l=1,3 l") })
	req, err := ParsePlaceItem(c)
	require.NoError(t, err)
	assert.True(t, req.Wall)
	assert.Equal(t, int64(42), req.ItemID)
	assert.Equal(t, ":w=2,0 l=1,3 l", req.WallPosition)
}

func TestParsePlaceItemRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "42", "x 1 2 0", "42 1 2", "42 1 b 0"} {
		c := packet(HeaderPlaceItem, func(m *protocol.ServerMessage) { m.AppendString(raw) })
		_, err := ParsePlaceItem(c)
		assert.ErrorIs(t, err, ErrMalformedRequest, "%q", raw)
	}
}

func TestParseMoveAndUse(t *testing.T) {
	c := packet(HeaderMoveFloorItem, func(m *protocol.ServerMessage) {
		m.AppendInt(7).AppendInt(1).AppendInt(2).AppendInt(4)
	})
	move, err := ParseMoveFloorItem(c)
	require.NoError(t, err)
	assert.Equal(t, MoveFloorItemRequest{ItemID: 7, X: 1, Y: 2, Rotation: 4}, move)

	c = packet(HeaderMoveWallItem, func(m *protocol.ServerMessage) {
		m.AppendInt(8).AppendString(":w=1,1 l=2,2 r")
	})
	wall, err := ParseMoveWallItem(c)
	require.NoError(t, err)
	assert.Equal(t, ":w=1,1 l=2,2 r", wall.WallPosition)

	c = packet(HeaderUseFloorItem, func(m *protocol.ServerMessage) { m.AppendInt(7) })
	_, err = ParseUseItem(c)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestParsePickupItem(t *testing.T) {
	c := packet(HeaderPickupItem, func(m *protocol.ServerMessage) { m.AppendInt(PickupCategoryWall).AppendInt(9) })
	req, err := ParsePickupItem(c)
	require.NoError(t, err)
	assert.Equal(t, PickupItemRequest{Wall: true, ItemID: 9}, req)

	c = packet(HeaderPickupItem, func(m *protocol.ServerMessage) { m.AppendInt(5).AppendInt(9) })
	_, err = ParsePickupItem(c)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestParseEnterRoom(t *testing.T) {
	c := packet(HeaderEnterRoom, func(m *protocol.ServerMessage) { m.AppendInt(12) })
	req, err := ParseEnterRoom(c)
	require.NoError(t, err)
	assert.Equal(t, int64(12), req.RoomID)
}

func TestParseWalkShortBody(t *testing.T) {
	c := packet(HeaderWalk, func(m *protocol.ServerMessage) { m.AppendInt(3) })
	_, err := ParseWalk(c)
	assert.ErrorIs(t, err, ErrMalformedRequest)

	c = packet(HeaderWalk, func(m *protocol.ServerMessage) { m.AppendInt(3).AppendInt(4) })
	req, err := ParseWalk(c)
	require.NoError(t, err)
	assert.Equal(t, WalkRequest{X: 3, Y: 4}, req)
}
