package models

// Avatar is a user's presence inside a room
type Avatar struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// Position returns the tile the avatar's room unit stands on
func (a *Avatar) Position() Point {
	return Point{X: a.X, Y: a.Y}
}

// InventoryItem is an item owned by a user and not placed in any room
type InventoryItem struct {
	ID            int64
	Definition    *Definition
	OwnerID       int64
	OwnerName     string
	ExtraData     string
	LimitedNumber int
	LimitedStack  int
}

// NewInventoryItem builds an inventory item from a persisted row
func NewInventoryItem(row ItemRow, def *Definition) *InventoryItem {
	return &InventoryItem{
		ID:            row.ID,
		Definition:    def,
		OwnerID:       row.UserID,
		OwnerName:     row.Username,
		ExtraData:     row.ExtraData,
		LimitedNumber: row.LimitedNumber,
		LimitedStack:  row.LimitedStack,
	}
}

// Placed converts the inventory item into the shared record of a placed item
func (i *InventoryItem) Placed(roomID int64) PlacedItem {
	return PlacedItem{
		ID:            i.ID,
		RoomID:        roomID,
		Definition:    i.Definition,
		OwnerID:       i.OwnerID,
		OwnerName:     i.OwnerName,
		ExtraData:     i.ExtraData,
		LimitedNumber: i.LimitedNumber,
		LimitedStack:  i.LimitedStack,
	}
}

// ToInventory strips room placement from an item being picked up
func (p *PlacedItem) ToInventory() *InventoryItem {
	return &InventoryItem{
		ID:            p.ID,
		Definition:    p.Definition,
		OwnerID:       p.OwnerID,
		OwnerName:     p.OwnerName,
		ExtraData:     p.ExtraData,
		LimitedNumber: p.LimitedNumber,
		LimitedStack:  p.LimitedStack,
	}
}

// Point is a tile coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distance is the Manhattan distance between two tiles
func (p Point) Distance(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
