package persistence

import (
	"errors"

	"furniroom/server/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	LoadDefinitions() ([]models.DefinitionRow, error)
	SaveDefinition(def models.DefinitionRow) error
	SaveUser(userID int64, username string) error

	LoadRoom(roomID int64) (*models.RoomData, error)
	SaveRoom(room *models.RoomData) error

	// LoadRoomItems returns every item placed in the room, owner names joined.
	LoadRoomItems(roomID int64) ([]models.ItemRow, error)
	// LoadInventory returns the user's items that are not placed in any room.
	LoadInventory(userID int64) ([]models.ItemRow, error)
	InsertItem(row models.ItemRow) error
	UpdateItemPosition(itemID int64, p models.Placement) error
	UpdateItemState(itemID int64, extraData string) error
	// ResetItemRoom clears the room and position fields, returning the item
	// to its owner's inventory.
	ResetItemRoom(itemID int64) error

	Close() error
}
