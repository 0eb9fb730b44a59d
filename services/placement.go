package services

import (
	"errors"
	"fmt"

	"furniroom/server/messages"
	"furniroom/server/models"
)

// Rejections returned by room operations
var (
	ErrNoRights            = errors.New("no rights in room")
	ErrUnknownItem         = errors.New("unknown item")
	ErrWrongSurface        = errors.New("item cannot be placed on this surface")
	ErrInvalidRotation     = errors.New("invalid rotation")
	ErrInvalidTile         = errors.New("invalid tile")
	ErrCannotStack         = errors.New("cannot stack on target")
	ErrInvalidWallPosition = errors.New("invalid wall position")
	ErrPersistFailed       = errors.New("failed to persist item")
)

// RejectionReason maps a room operation error to a short metrics label
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNoRights):
		return "no_rights"
	case errors.Is(err, ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, ErrWrongSurface):
		return "wrong_surface"
	case errors.Is(err, ErrInvalidRotation):
		return "invalid_rotation"
	case errors.Is(err, ErrInvalidTile):
		return "invalid_tile"
	case errors.Is(err, ErrCannotStack):
		return "cannot_stack"
	case errors.Is(err, ErrInvalidWallPosition):
		return "invalid_wall_position"
	case errors.Is(err, ErrPersistFailed):
		return "persist_failed"
	}
	return "other"
}

// floorTargetLocked checks every tile the item would cover and returns the z
// it would rest at, the highest stack height under its footprint.
func (r *Room) floorTargetLocked(def *models.Definition, x, y int, rot models.Rotation, excludeID int64) (float64, error) {
	z := 0.0
	for i, tile := range models.FootprintTiles(x, y, def, rot) {
		if r.layout.Blocked(tile.X, tile.Y) {
			return 0, fmt.Errorf("%w: (%d,%d)", ErrInvalidTile, tile.X, tile.Y)
		}
		if !r.items.CanStackAt(tile.X, tile.Y, excludeID) {
			return 0, fmt.Errorf("%w: (%d,%d)", ErrCannotStack, tile.X, tile.Y)
		}
		h := r.items.StackHeightAt(tile.X, tile.Y, excludeID)
		if h == NoStack {
			return 0, fmt.Errorf("%w: (%d,%d)", ErrCannotStack, tile.X, tile.Y)
		}
		if i == 0 || h > z {
			z = h
		}
	}
	return z, nil
}

// PlaceFloorItem moves an inventory item onto the floor at (x, y)
func (r *Room) PlaceFloorItem(userID, itemID int64, x, y, rotation int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.hasRightsLocked(userID) {
		return ErrNoRights
	}
	inv, err := r.inventory.Get(userID, itemID)
	if err != nil {
		return err
	}
	if inv.Definition.Kind() != models.KindFloor {
		return ErrWrongSurface
	}
	rot, ok := models.ParseRotation(rotation)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidRotation, rotation)
	}

	z, err := r.floorTargetLocked(inv.Definition, x, y, rot, 0)
	if err != nil {
		return err
	}

	item := &models.FloorItem{PlacedItem: inv.Placed(r.ID), X: x, Y: y, Z: z, Rotation: rot}
	if err := r.db.UpdateItemPosition(item.ID, item.Placement()); err != nil {
		r.logger.Printf("Error placing item %d: %v", item.ID, err)
		persistFailuresTotal.WithLabelValues("place").Inc()
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	r.items.AddFloor(item)
	r.inventory.Remove(userID, item.ID)
	placementsTotal.WithLabelValues("place").Inc()

	r.broadcastLocked(messages.FloorItemAdded(item))
	r.sendLocked(userID, messages.InventoryItemRemoved(item.ID))
	return nil
}

// PlaceWallItem hangs an inventory item on the wall
func (r *Room) PlaceWallItem(userID, itemID int64, wallPosition string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.hasRightsLocked(userID) {
		return ErrNoRights
	}
	inv, err := r.inventory.Get(userID, itemID)
	if err != nil {
		return err
	}
	if inv.Definition.Kind() != models.KindWall {
		return ErrWrongSurface
	}
	pos, ok := models.ParseWallPosition(wallPosition)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidWallPosition, wallPosition)
	}

	item := &models.WallItem{PlacedItem: inv.Placed(r.ID), WallPosition: pos.String()}
	if err := r.db.UpdateItemPosition(item.ID, item.Placement()); err != nil {
		r.logger.Printf("Error placing item %d: %v", item.ID, err)
		persistFailuresTotal.WithLabelValues("place").Inc()
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	r.items.AddWall(item)
	r.inventory.Remove(userID, item.ID)
	placementsTotal.WithLabelValues("place").Inc()

	r.broadcastLocked(messages.WallItemAdded(item))
	r.sendLocked(userID, messages.InventoryItemRemoved(item.ID))
	return nil
}

// MoveFloorItem moves or rotates a placed floor item. The new position is
// applied in memory first and then persisted.
func (r *Room) MoveFloorItem(userID, itemID int64, x, y, rotation int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.hasRightsLocked(userID) {
		return ErrNoRights
	}
	item := r.items.Floor(itemID)
	if item == nil {
		return fmt.Errorf("floor item %d: %w", itemID, ErrUnknownItem)
	}
	rot, ok := models.ParseRotation(rotation)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidRotation, rotation)
	}

	z, err := r.floorTargetLocked(item.Definition, x, y, rot, item.ID)
	if err != nil {
		return err
	}

	if item.Move(x, y, z, rot) {
		r.items.SavePosition(item)
		placementsTotal.WithLabelValues("move").Inc()
	}
	r.broadcastLocked(messages.FloorItemUpdated(item))
	return nil
}

// MoveWallItem moves a placed wall item to a new wall position
func (r *Room) MoveWallItem(userID, itemID int64, wallPosition string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.hasRightsLocked(userID) {
		return ErrNoRights
	}
	item := r.items.Wall(itemID)
	if item == nil {
		return fmt.Errorf("wall item %d: %w", itemID, ErrUnknownItem)
	}
	pos, ok := models.ParseWallPosition(wallPosition)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidWallPosition, wallPosition)
	}

	if item.SetWallPosition(pos.String()) {
		r.items.SavePosition(item)
		placementsTotal.WithLabelValues("move").Inc()
	}
	r.broadcastLocked(messages.WallItemUpdated(item))
	return nil
}

// PickupItem returns a placed item to its owner's inventory. Users with
// rights may pick up anything; owners may always take back their own items.
func (r *Room) PickupItem(userID, itemID int64, isWall bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var placed models.Placed
	if isWall {
		if item := r.items.Wall(itemID); item != nil {
			placed = item
		}
	} else {
		if item := r.items.Floor(itemID); item != nil {
			placed = item
		}
	}
	if placed == nil {
		return fmt.Errorf("%s item %d: %w", kindName(isWall), itemID, ErrUnknownItem)
	}

	base := placed.Base()
	if !r.hasRightsLocked(userID) && base.OwnerID != userID {
		return ErrNoRights
	}
	if !r.items.Pickup(itemID, isWall) {
		return ErrPersistFailed
	}

	r.inventory.Add(base.ToInventory())
	placementsTotal.WithLabelValues("pickup").Inc()

	if isWall {
		r.broadcastLocked(messages.WallItemRemoved(itemID, userID))
	} else {
		r.broadcastLocked(messages.FloorItemRemoved(itemID, userID))
	}
	r.sendLocked(base.OwnerID, messages.InventoryRefresh())
	return nil
}

func kindName(isWall bool) string {
	if isWall {
		return models.KindWall.String()
	}
	return models.KindFloor.String()
}
