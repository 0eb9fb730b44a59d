package models

import "strconv"

// PlacedItem holds the fields shared by floor and wall items.
// RoomID is 0 while the item is not placed in any room.
type PlacedItem struct {
	ID            int64
	RoomID        int64
	Definition    *Definition
	OwnerID       int64
	OwnerName     string
	ExtraData     string
	LimitedNumber int
	LimitedStack  int
}

// Base gives access to the shared record from either variant
func (p *PlacedItem) Base() *PlacedItem {
	return p
}

// IsLimited reports whether the item carries a limited edition serial
func (p *PlacedItem) IsLimited() bool {
	return p.LimitedNumber > 0
}

// State parses ExtraData as a numeric state. Legacy or malformed strings are state 0.
func (p *PlacedItem) State() int {
	n, err := strconv.Atoi(p.ExtraData)
	if err != nil {
		return 0
	}
	return n
}

// SetState updates the state string and reports whether it changed.
func (p *PlacedItem) SetState(extraData string) bool {
	if p.ExtraData == extraData {
		return false
	}
	p.ExtraData = extraData
	return true
}

// Placed is satisfied by *FloorItem and *WallItem
type Placed interface {
	Base() *PlacedItem
	Kind() ItemKind
	Placement() Placement
}

// ItemRow is the persisted form of an item, placed or in an inventory
type ItemRow struct {
	ID            int64   `json:"id" yaml:"id"`
	RoomID        int64   `json:"room_id" yaml:"room_id"`
	DefinitionID  int64   `json:"item_id" yaml:"item_id"`
	UserID        int64   `json:"user_id" yaml:"user_id"`
	Username      string  `json:"-" yaml:"-"`
	X             int     `json:"x" yaml:"x"`
	Y             int     `json:"y" yaml:"y"`
	Z             float64 `json:"z" yaml:"z"`
	Rotation      int     `json:"rot" yaml:"rot"`
	ExtraData     string  `json:"extra_data" yaml:"extra_data"`
	LimitedNumber int     `json:"limited_number" yaml:"limited_number"`
	LimitedStack  int     `json:"limited_stack" yaml:"limited_stack"`
	WallPosition  string  `json:"wall_pos" yaml:"wall_pos"`
}

func placedFromRow(row ItemRow, def *Definition) PlacedItem {
	return PlacedItem{
		ID:            row.ID,
		RoomID:        row.RoomID,
		Definition:    def,
		OwnerID:       row.UserID,
		OwnerName:     row.Username,
		ExtraData:     row.ExtraData,
		LimitedNumber: row.LimitedNumber,
		LimitedStack:  row.LimitedStack,
	}
}

// Placement is the subset of item fields that locate it in a room
type Placement struct {
	RoomID       int64
	X            int
	Y            int
	Z            float64
	Rotation     int
	WallPosition string
}

// Placement returns the persisted location of a floor item
func (f *FloorItem) Placement() Placement {
	return Placement{RoomID: f.RoomID, X: f.X, Y: f.Y, Z: f.Z, Rotation: int(f.Rotation)}
}

// Placement returns the persisted location of a wall item
func (w *WallItem) Placement() Placement {
	return Placement{RoomID: w.RoomID, WallPosition: w.WallPosition}
}
