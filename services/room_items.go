package services

import (
	"fmt"
	"log"
	"sort"

	"furniroom/server/models"
	"furniroom/server/persistence"
)

// NoStack is returned by StackHeightAt when nothing may be placed on a tile
const NoStack = -1.0

// TileMap is the tile grid a room is built on
type TileMap interface {
	TileHeight(x, y int) (float64, bool)
	Blocked(x, y int) bool
}

// RoomItems is the index of every item placed in one room. It does no
// locking; the owning Room serializes access.
type RoomItems struct {
	roomID  int64
	catalog *Catalog
	db      persistence.Storage
	tiles   TileMap
	logger  *log.Logger

	floor map[int64]*models.FloorItem
	wall  map[int64]*models.WallItem
}

// NewRoomItems creates an empty index. tiles may be nil, in which case every
// empty tile has base height 0.
func NewRoomItems(roomID int64, catalog *Catalog, db persistence.Storage, tiles TileMap, logger *log.Logger) *RoomItems {
	return &RoomItems{
		roomID:  roomID,
		catalog: catalog,
		db:      db,
		tiles:   tiles,
		logger:  logger,
		floor:   make(map[int64]*models.FloorItem),
		wall:    make(map[int64]*models.WallItem),
	}
}

// Load reads the room's items from the store. Rows referencing an unknown
// definition are skipped.
func (ri *RoomItems) Load() error {
	rows, err := ri.db.LoadRoomItems(ri.roomID)
	if err != nil {
		return fmt.Errorf("failed to load room items: %w", err)
	}

	for _, row := range rows {
		def, ok := ri.catalog.Get(row.DefinitionID)
		if !ok {
			ri.logger.Printf("Skipping item %d: unknown definition %d", row.ID, row.DefinitionID)
			skippedRowsTotal.Inc()
			continue
		}
		switch def.Kind() {
		case models.KindWall:
			ri.AddWall(models.NewWallItem(row, def))
		default:
			ri.AddFloor(models.NewFloorItem(row, def))
		}
	}
	return nil
}

func (ri *RoomItems) AddFloor(item *models.FloorItem) {
	item.RoomID = ri.roomID
	ri.floor[item.ID] = item
}

func (ri *RoomItems) AddWall(item *models.WallItem) {
	item.RoomID = ri.roomID
	ri.wall[item.ID] = item
}

// RemoveFloor drops a floor item from the index and clears its room.
// It returns nil when the id is not indexed.
func (ri *RoomItems) RemoveFloor(id int64) *models.FloorItem {
	item, ok := ri.floor[id]
	if !ok {
		return nil
	}
	delete(ri.floor, id)
	item.RoomID = 0
	return item
}

// RemoveWall drops a wall item from the index and clears its room.
// It returns nil when the id is not indexed.
func (ri *RoomItems) RemoveWall(id int64) *models.WallItem {
	item, ok := ri.wall[id]
	if !ok {
		return nil
	}
	delete(ri.wall, id)
	item.RoomID = 0
	return item
}

func (ri *RoomItems) Floor(id int64) *models.FloorItem {
	return ri.floor[id]
}

func (ri *RoomItems) Wall(id int64) *models.WallItem {
	return ri.wall[id]
}

// FloorItems returns the floor items ordered by id
func (ri *RoomItems) FloorItems() []*models.FloorItem {
	items := make([]*models.FloorItem, 0, len(ri.floor))
	for _, item := range ri.floor {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// WallItems returns the wall items ordered by id
func (ri *RoomItems) WallItems() []*models.WallItem {
	items := make([]*models.WallItem, 0, len(ri.wall))
	for _, item := range ri.wall {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (ri *RoomItems) FloorCount() int {
	return len(ri.floor)
}

func (ri *RoomItems) WallCount() int {
	return len(ri.wall)
}

// ItemsAt returns the floor items covering (x, y), topmost first.
// The order of items with equal Z is unspecified.
func (ri *RoomItems) ItemsAt(x, y int) []*models.FloorItem {
	var items []*models.FloorItem
	for _, item := range ri.FloorItems() {
		if item.Occupies(x, y) {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Z > items[j].Z })
	return items
}

// TopItemAt returns the topmost item covering (x, y), ignoring excludeID.
// An excludeID of 0 excludes nothing.
func (ri *RoomItems) TopItemAt(x, y int, excludeID int64) *models.FloorItem {
	for _, item := range ri.ItemsAt(x, y) {
		if excludeID != 0 && item.ID == excludeID {
			continue
		}
		return item
	}
	return nil
}

// StackHeightAt is the z a new item placed on (x, y) would get, or NoStack.
// Sit and lay furniture stack at their own z so items share the seat plane.
func (ri *RoomItems) StackHeightAt(x, y int, excludeID int64) float64 {
	top := ri.TopItemAt(x, y, excludeID)
	if top == nil {
		if ri.tiles == nil {
			return 0
		}
		h, ok := ri.tiles.TileHeight(x, y)
		if !ok {
			return 0
		}
		return h
	}

	if !top.Definition.CanStack {
		return NoStack
	}
	if top.Definition.CanSit || top.Definition.CanLay {
		return top.Z
	}
	return top.TotalHeight()
}

// CanStackAt is false only when a top item exists and refuses stacking
func (ri *RoomItems) CanStackAt(x, y int, excludeID int64) bool {
	top := ri.TopItemAt(x, y, excludeID)
	return top == nil || top.Definition.CanStack
}

// CanWalkAt is false when any covering item can be neither walked, sat nor
// laid on.
func (ri *RoomItems) CanWalkAt(x, y int) bool {
	for _, item := range ri.ItemsAt(x, y) {
		def := item.Definition
		if !def.IsWalkable && !def.CanSit && !def.CanLay {
			return false
		}
	}
	return true
}

// SavePosition writes the item's location to the store. Failures are logged
// and reported as false.
func (ri *RoomItems) SavePosition(item models.Placed) bool {
	id := item.Base().ID
	if err := ri.db.UpdateItemPosition(id, item.Placement()); err != nil {
		ri.logger.Printf("Error saving position of item %d: %v", id, err)
		persistFailuresTotal.WithLabelValues("position").Inc()
		return false
	}
	return true
}

// SaveState writes the item's state string to the store. Failures are
// logged and reported as false.
func (ri *RoomItems) SaveState(item models.Placed) bool {
	base := item.Base()
	if err := ri.db.UpdateItemState(base.ID, base.ExtraData); err != nil {
		ri.logger.Printf("Error saving state of item %d: %v", base.ID, err)
		persistFailuresTotal.WithLabelValues("state").Inc()
		return false
	}
	return true
}

// Pickup resets the item's room in the store and then removes it from the
// index. On a store failure the item stays placed and false is returned.
func (ri *RoomItems) Pickup(itemID int64, isWall bool) bool {
	if (isWall && ri.wall[itemID] == nil) || (!isWall && ri.floor[itemID] == nil) {
		return false
	}

	if err := ri.db.ResetItemRoom(itemID); err != nil {
		ri.logger.Printf("Error picking up item %d: %v", itemID, err)
		persistFailuresTotal.WithLabelValues("pickup").Inc()
		return false
	}

	if isWall {
		ri.RemoveWall(itemID)
	} else {
		ri.RemoveFloor(itemID)
	}
	return true
}
