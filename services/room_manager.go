package services

import (
	"log"
	"sync"

	"furniroom/server/models"
	"furniroom/server/persistence"
)

// RoomManager keeps loaded rooms in memory and loads them on first entry
type RoomManager struct {
	catalog     *Catalog
	db          persistence.Storage
	inventory   *InventoryService
	logger      *log.Logger
	unloadEmpty bool

	rooms map[int64]*Room
	mutex sync.Mutex
}

// NewRoomManager creates a new room manager
func NewRoomManager(catalog *Catalog, db persistence.Storage, inventory *InventoryService, logger *log.Logger, unloadEmpty bool) *RoomManager {
	return &RoomManager{
		catalog:     catalog,
		db:          db,
		inventory:   inventory,
		logger:      logger,
		unloadEmpty: unloadEmpty,
		rooms:       make(map[int64]*Room),
	}
}

// Get returns a room if it is loaded
func (rm *RoomManager) Get(roomID int64) (*Room, bool) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	room, ok := rm.rooms[roomID]
	return room, ok
}

func (rm *RoomManager) getOrLoadLocked(roomID int64) (*Room, error) {
	if room, ok := rm.rooms[roomID]; ok {
		return room, nil
	}

	room, err := LoadRoom(roomID, rm.catalog, rm.db, rm.inventory, rm.logger)
	if err != nil {
		return nil, err
	}
	rm.rooms[roomID] = room
	roomsLoaded.Inc()
	return room, nil
}

// GetOrLoad returns the room, loading it from the store if needed
func (rm *RoomManager) GetOrLoad(roomID int64) (*Room, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	return rm.getOrLoadLocked(roomID)
}

// Enter loads the room if needed and adds the avatar to it. The manager lock
// is held so the room cannot be unloaded between loading and entering.
func (rm *RoomManager) Enter(roomID int64, avatar *models.Avatar, sender Sender) (*Room, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	room, err := rm.getOrLoadLocked(roomID)
	if err != nil {
		return nil, err
	}
	room.Enter(avatar, sender)
	return room, nil
}

// Leave removes a user's session from a room and unloads the room once it
// is empty
func (rm *RoomManager) Leave(room *Room, userID int64, sender Sender) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if room.Leave(userID, sender) > 0 || !rm.unloadEmpty {
		return
	}
	if rm.rooms[room.ID] == room {
		delete(rm.rooms, room.ID)
		roomsLoaded.Dec()
		rm.logger.Printf("Unloaded empty room %d", room.ID)
	}
}

// Len returns the number of loaded rooms
func (rm *RoomManager) Len() int {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	return len(rm.rooms)
}
