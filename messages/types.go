package messages

// Outgoing header ids
const (
	HeaderRoomFloorItems       int16 = 1778
	HeaderRoomWallItems        int16 = 1369
	HeaderFloorItemAdded       int16 = 1534
	HeaderFloorItemUpdated     int16 = 3776
	HeaderFloorItemRemoved     int16 = 2703
	HeaderWallItemAdded        int16 = 2187
	HeaderWallItemUpdated      int16 = 2009
	HeaderWallItemRemoved      int16 = 3208
	HeaderItemStateUpdated     int16 = 2376
	HeaderInventoryItemRemoved int16 = 159
	HeaderInventoryRefresh     int16 = 3151
)

// Incoming header ids
const (
	HeaderEnterRoom     int16 = 2312
	HeaderPlaceItem     int16 = 1258
	HeaderMoveFloorItem int16 = 248
	HeaderMoveWallItem  int16 = 168
	HeaderUseFloorItem  int16 = 99
	HeaderUseWallItem   int16 = 210
	HeaderPickupItem    int16 = 3456
	HeaderWalk          int16 = 3320
)

// Pickup categories sent by the client
const (
	PickupCategoryWall  = 1
	PickupCategoryFloor = 2
)

// EnterRoomRequest asks to join a room
type EnterRoomRequest struct {
	RoomID int64
}

// PlaceItemRequest places an inventory item on the floor or a wall
type PlaceItemRequest struct {
	ItemID       int64
	Wall         bool
	X            int
	Y            int
	Rotation     int
	WallPosition string
}

// MoveFloorItemRequest moves or rotates a placed floor item
type MoveFloorItemRequest struct {
	ItemID   int64
	X        int
	Y        int
	Rotation int
}

// MoveWallItemRequest moves a placed wall item
type MoveWallItemRequest struct {
	ItemID       int64
	WallPosition string
}

// UseItemRequest toggles a placed item. Param is sent by the client but the
// next state is always computed server side.
type UseItemRequest struct {
	ItemID int64
	Param  int
}

// WalkRequest asks to move the user's avatar to a tile
type WalkRequest struct {
	X int
	Y int
}

// PickupItemRequest returns a placed item to its owner's inventory
type PickupItemRequest struct {
	Wall   bool
	ItemID int64
}
