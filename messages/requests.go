package messages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"furniroom/server/protocol"
)

// ErrMalformedRequest is returned when a packet body does not match its header
var ErrMalformedRequest = errors.New("malformed request")

func finish(c *protocol.ClientMessage) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("%w: header %d: %v", ErrMalformedRequest, c.Header(), err)
	}
	return nil
}

func ParseEnterRoom(c *protocol.ClientMessage) (EnterRoomRequest, error) {
	req := EnterRoomRequest{RoomID: int64(c.ReadInt())}
	return req, finish(c)
}

// ParsePlaceItem reads the single placement string the client sends:
// "<id> <x> <y> <rot>" for floor items, "<id> :w=a,b l=c,d s" for wall items.
func ParsePlaceItem(c *protocol.ClientMessage) (PlaceItemRequest, error) {
	raw := c.ReadString()
	if err := finish(c); err != nil {
		return PlaceItemRequest{}, err
	}

	idPart, rest, ok := strings.Cut(strings.TrimSpace(raw), " ")
	if !ok {
		return PlaceItemRequest{}, fmt.Errorf("%w: placement %q", ErrMalformedRequest, raw)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return PlaceItemRequest{}, fmt.Errorf("%w: placement item id %q", ErrMalformedRequest, idPart)
	}

	if strings.HasPrefix(rest, ":") {
		return PlaceItemRequest{ItemID: id, Wall: true, WallPosition: rest}, nil
	}

	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return PlaceItemRequest{}, fmt.Errorf("%w: placement %q", ErrMalformedRequest, raw)
	}
	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return PlaceItemRequest{}, fmt.Errorf("%w: placement field %q", ErrMalformedRequest, f)
		}
		nums[i] = n
	}
	return PlaceItemRequest{ItemID: id, X: nums[0], Y: nums[1], Rotation: nums[2]}, nil
}

func ParseMoveFloorItem(c *protocol.ClientMessage) (MoveFloorItemRequest, error) {
	req := MoveFloorItemRequest{
		ItemID:   int64(c.ReadInt()),
		X:        int(c.ReadInt()),
		Y:        int(c.ReadInt()),
		Rotation: int(c.ReadInt()),
	}
	return req, finish(c)
}

func ParseMoveWallItem(c *protocol.ClientMessage) (MoveWallItemRequest, error) {
	req := MoveWallItemRequest{
		ItemID:       int64(c.ReadInt()),
		WallPosition: c.ReadString(),
	}
	return req, finish(c)
}

func ParseUseItem(c *protocol.ClientMessage) (UseItemRequest, error) {
	req := UseItemRequest{
		ItemID: int64(c.ReadInt()),
		Param:  int(c.ReadInt()),
	}
	return req, finish(c)
}

func ParsePickupItem(c *protocol.ClientMessage) (PickupItemRequest, error) {
	category := c.ReadInt()
	id := int64(c.ReadInt())
	if err := finish(c); err != nil {
		return PickupItemRequest{}, err
	}
	switch category {
	case PickupCategoryWall:
		return PickupItemRequest{Wall: true, ItemID: id}, nil
	case PickupCategoryFloor:
		return PickupItemRequest{ItemID: id}, nil
	}
	return PickupItemRequest{}, fmt.Errorf("%w: pickup category %d", ErrMalformedRequest, category)
}

func ParseWalk(c *protocol.ClientMessage) (WalkRequest, error) {
	req := WalkRequest{
		X: int(c.ReadInt()),
		Y: int(c.ReadInt()),
	}
	return req, finish(c)
}
