package services

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"furniroom/server/messages"
	"furniroom/server/models"
	"furniroom/server/persistence"
	"furniroom/server/protocol"
)

// Sender delivers a composed message to one connected client. Send must not
// block.
type Sender interface {
	Send(msg *protocol.ServerMessage)
}

type occupant struct {
	avatar *models.Avatar
	sender Sender
}

// closer is implemented by senders backed by a live connection
type closer interface {
	Close()
}

// Room is one loaded room. Every exported method holds the room mutex for
// its whole validate, mutate, persist and broadcast sequence.
type Room struct {
	ID int64

	data      *models.RoomData
	layout    *models.RoomLayout
	items     *RoomItems
	db        persistence.Storage
	inventory *InventoryService
	logger    *log.Logger
	intn      func(int) int

	rights    map[int64]struct{}
	occupants map[int64]*occupant
	mutex     sync.Mutex
}

// LoadRoom reads a room, its layout and its items from the store
func LoadRoom(roomID int64, catalog *Catalog, db persistence.Storage, inventory *InventoryService, logger *log.Logger) (*Room, error) {
	data, err := db.LoadRoom(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	layout, err := models.ParseHeightmap(data.Heightmap, models.Point{X: data.DoorX, Y: data.DoorY})
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout of room %d: %w", roomID, err)
	}

	room := NewRoom(data, layout, catalog, db, inventory, logger)
	if err := room.items.Load(); err != nil {
		return nil, fmt.Errorf("room %d: %w", roomID, err)
	}
	room.logger.Printf("Loaded %d floor and %d wall items", room.items.FloorCount(), room.items.WallCount())
	return room, nil
}

// NewRoom creates a room with an empty item index
func NewRoom(data *models.RoomData, layout *models.RoomLayout, catalog *Catalog, db persistence.Storage, inventory *InventoryService, logger *log.Logger) *Room {
	roomLogger := log.New(logger.Writer(), fmt.Sprintf("[room %d] ", data.ID), logger.Flags())

	rights := make(map[int64]struct{}, len(data.Rights))
	for _, userID := range data.Rights {
		rights[userID] = struct{}{}
	}

	return &Room{
		ID:        data.ID,
		data:      data,
		layout:    layout,
		items:     NewRoomItems(data.ID, catalog, db, layout, roomLogger),
		db:        db,
		inventory: inventory,
		logger:    roomLogger,
		intn:      rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
		rights:    rights,
		occupants: make(map[int64]*occupant),
	}
}

func (r *Room) hasRightsLocked(userID int64) bool {
	if userID == r.data.OwnerID {
		return true
	}
	_, ok := r.rights[userID]
	return ok
}

// HasRights reports whether the user may modify the room's furniture
func (r *Room) HasRights(userID int64) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.hasRightsLocked(userID)
}

// Enter adds an avatar at the door and sends it the room's furniture.
// A user entering again replaces the previous session, whose connection is
// closed.
func (r *Room) Enter(avatar *models.Avatar, sender Sender) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if prev, ok := r.occupants[avatar.UserID]; ok && prev.sender != sender {
		r.logger.Printf("User %d entered again, closing the previous session", avatar.UserID)
		if c, ok := prev.sender.(closer); ok {
			c.Close()
		}
	}

	avatar.X, avatar.Y = r.layout.Door.X, r.layout.Door.Y
	r.occupants[avatar.UserID] = &occupant{avatar: avatar, sender: sender}

	sender.Send(messages.RoomFloorItems(r.items.FloorItems()))
	sender.Send(messages.RoomWallItems(r.items.WallItems()))
}

// Leave removes a user's session and returns how many occupants remain.
// A session that was already replaced by a newer one removes nothing.
func (r *Room) Leave(userID int64, sender Sender) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if occ, ok := r.occupants[userID]; ok && occ.sender == sender {
		delete(r.occupants, userID)
	}
	return len(r.occupants)
}

func (r *Room) OccupantCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.occupants)
}

// SetUnitPosition moves a user's avatar to a tile. Pathing is handled by the
// client; only the final tile matters for proximity checks.
func (r *Room) SetUnitPosition(userID int64, x, y int) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	occ, ok := r.occupants[userID]
	if !ok {
		return false
	}
	if _, ok := r.layout.TileHeight(x, y); !ok || !r.items.CanWalkAt(x, y) {
		return false
	}
	occ.avatar.X, occ.avatar.Y = x, y
	return true
}

// Broadcast sends a message to every occupant
func (r *Room) Broadcast(msg *protocol.ServerMessage) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.broadcastLocked(msg)
}

func (r *Room) broadcastLocked(msg *protocol.ServerMessage) {
	for _, occ := range r.occupants {
		occ.sender.Send(msg)
	}
}

func (r *Room) sendLocked(userID int64, msg *protocol.ServerMessage) {
	if occ, ok := r.occupants[userID]; ok {
		occ.sender.Send(msg)
	}
}

// UseFloorItem advances the state of a floor item and broadcasts the change.
// Limited items get the full item payload so clients redraw their serial.
func (r *Room) UseFloorItem(userID, itemID int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item := r.items.Floor(itemID)
	if item == nil {
		return fmt.Errorf("floor item %d: %w", itemID, ErrUnknownItem)
	}
	if !r.canUseLocked(userID, item) {
		return ErrNoRights
	}

	next, ok := NextState(item.Definition, item.State(), r.intn)
	if !ok {
		return nil
	}
	// a roll can land on the face already shown; clients still see it
	if item.SetState(strconv.Itoa(next)) {
		r.items.SaveState(item)
	}
	interactionsTotal.WithLabelValues(string(item.Definition.Interaction)).Inc()

	if item.IsLimited() {
		r.broadcastLocked(messages.FloorItemUpdated(item))
	} else {
		r.broadcastLocked(messages.ItemStateUpdated(item.ID, next))
	}
	return nil
}

// UseWallItem cycles the state of a wall item. Only users with rights may
// use wall furniture.
func (r *Room) UseWallItem(userID, itemID int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item := r.items.Wall(itemID)
	if item == nil {
		return fmt.Errorf("wall item %d: %w", itemID, ErrUnknownItem)
	}
	if !r.hasRightsLocked(userID) {
		return ErrNoRights
	}

	next, ok := NextState(item.Definition, item.State(), r.intn)
	if !ok {
		return nil
	}
	// a roll can land on the face already shown; clients still see it
	if item.SetState(strconv.Itoa(next)) {
		r.items.SaveState(item)
	}
	interactionsTotal.WithLabelValues(string(item.Definition.Interaction)).Inc()

	r.broadcastLocked(messages.WallItemUpdated(item))
	return nil
}
