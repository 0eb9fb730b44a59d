package services

import (
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"furniroom/server/models"
	"furniroom/server/persistence"
	"furniroom/server/protocol"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Storage whose writes can be made to fail
type memStore struct {
	mu    sync.Mutex
	defs  []models.DefinitionRow
	rooms map[int64]*models.RoomData
	items map[int64]models.ItemRow

	loadErr      error
	failPosition bool
	failState    bool
	failReset    bool
}

func newMemStore() *memStore {
	return &memStore{
		rooms: make(map[int64]*models.RoomData),
		items: make(map[int64]models.ItemRow),
	}
}

func (s *memStore) LoadDefinitions() ([]models.DefinitionRow, error) {
	return s.defs, nil
}

func (s *memStore) SaveDefinition(def models.DefinitionRow) error {
	s.defs = append(s.defs, def)
	return nil
}

func (s *memStore) SaveUser(int64, string) error { return nil }

func (s *memStore) LoadRoom(roomID int64) (*models.RoomData, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return room, nil
}

func (s *memStore) SaveRoom(room *models.RoomData) error {
	s.rooms[room.ID] = room
	return nil
}

func (s *memStore) filter(keep func(models.ItemRow) bool) []models.ItemRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []models.ItemRow
	for _, r := range s.items {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func (s *memStore) LoadRoomItems(roomID int64) ([]models.ItemRow, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.filter(func(r models.ItemRow) bool { return r.RoomID == roomID }), nil
}

func (s *memStore) LoadInventory(userID int64) ([]models.ItemRow, error) {
	return s.filter(func(r models.ItemRow) bool { return r.RoomID == 0 && r.UserID == userID }), nil
}

func (s *memStore) InsertItem(row models.ItemRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[row.ID] = row
	return nil
}

func (s *memStore) update(itemID int64, fail bool, apply func(*models.ItemRow)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fail {
		return errStoreDown
	}
	row, ok := s.items[itemID]
	if !ok {
		return persistence.ErrNotFound
	}
	apply(&row)
	s.items[itemID] = row
	return nil
}

func (s *memStore) UpdateItemPosition(itemID int64, p models.Placement) error {
	return s.update(itemID, s.failPosition, func(r *models.ItemRow) {
		r.RoomID, r.X, r.Y, r.Z, r.Rotation, r.WallPosition = p.RoomID, p.X, p.Y, p.Z, p.Rotation, p.WallPosition
	})
}

func (s *memStore) UpdateItemState(itemID int64, extraData string) error {
	return s.update(itemID, s.failState, func(r *models.ItemRow) { r.ExtraData = extraData })
}

func (s *memStore) ResetItemRoom(itemID int64) error {
	return s.update(itemID, s.failReset, func(r *models.ItemRow) {
		r.RoomID, r.X, r.Y, r.Z, r.Rotation, r.WallPosition = 0, 0, 0, 0, 0, ""
	})
}

func (s *memStore) Close() error { return nil }

func (s *memStore) row(id int64) models.ItemRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

// recorder captures every message sent to one occupant
type recorder struct {
	msgs   []*protocol.ServerMessage
	closed bool
}

func (r *recorder) Close() {
	r.closed = true
}

func (r *recorder) Send(msg *protocol.ServerMessage) {
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) headers() []int16 {
	var hs []int16
	for _, m := range r.msgs {
		hs = append(hs, m.Header())
	}
	return hs
}

func (r *recorder) reset() {
	r.msgs = nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func floorDef(id int64, mod func(*models.Definition)) *models.Definition {
	d := &models.Definition{
		ID:          id,
		SpriteID:    int(id) * 10,
		Category:    models.CategoryFloor,
		Width:       1,
		Length:      1,
		StackHeight: 1,
		CanStack:    true,
		Interaction: models.InteractionDefault,
		ModesCount:  1,
	}
	if mod != nil {
		mod(d)
	}
	return d
}

func wallDef(id int64) *models.Definition {
	return &models.Definition{
		ID:          id,
		SpriteID:    int(id) * 10,
		Category:    models.CategoryWall,
		Width:       1,
		Length:      1,
		Interaction: models.InteractionDefault,
		ModesCount:  2,
	}
}

const (
	testRoomID = 7
	ownerID    = 1
	guestID    = 2
)

// testHeightmap is a flat 6x6 room with the door at (0,5)
const testHeightmap = "000000\n000000\n000000\n000000\n000000\n000000"

type fixture struct {
	store     *memStore
	catalog   *Catalog
	inventory *InventoryService
	room      *Room
	owner     *recorder
	guest     *recorder
}

// newFixture builds a loaded room owned by ownerID with guestID present
// and the given items already in the store
func newFixture(t *testing.T, defs []*models.Definition, rows ...models.ItemRow) *fixture {
	t.Helper()

	store := newMemStore()
	for _, row := range rows {
		require.NoError(t, store.InsertItem(row))
	}
	store.rooms[testRoomID] = &models.RoomData{
		ID: testRoomID, OwnerID: ownerID, Heightmap: testHeightmap, DoorX: 0, DoorY: 5,
	}

	catalog := NewCatalog(defs...)
	inventory := NewInventoryService(catalog, store, discardLogger())
	room, err := LoadRoom(testRoomID, catalog, store, inventory, discardLogger())
	require.NoError(t, err)

	f := &fixture{store: store, catalog: catalog, inventory: inventory, room: room, owner: &recorder{}, guest: &recorder{}}
	room.Enter(&models.Avatar{UserID: ownerID, Username: "owner"}, f.owner)
	room.Enter(&models.Avatar{UserID: guestID, Username: "guest"}, f.guest)
	f.owner.reset()
	f.guest.reset()
	return f
}
