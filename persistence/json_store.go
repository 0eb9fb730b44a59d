package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"furniroom/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Users       map[int64]string                 `json:"users"`
	Definitions map[int64]*models.DefinitionRow `json:"definitions"`
	Rooms       map[int64]*models.RoomData      `json:"rooms"`
	Items       map[int64]*models.ItemRow       `json:"items"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Users:       make(map[int64]string),
			Definitions: make(map[int64]*models.DefinitionRow),
			Rooms:       make(map[int64]*models.RoomData),
			Items:       make(map[int64]*models.ItemRow),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		// Create file if it doesn't exist
		if err := store.save(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(file, js.data)
}

// saveLocked writes the whole data set; the caller holds the mutex
func (js *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(js.filePath, data, 0644)
}

func (js *JSONStore) save() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.saveLocked()
}

// LoadDefinitions returns every definition ordered by id
func (js *JSONStore) LoadDefinitions() ([]models.DefinitionRow, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	defs := make([]models.DefinitionRow, 0, len(js.data.Definitions))
	for _, d := range js.data.Definitions {
		defs = append(defs, *d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// SaveDefinition saves a definition to the store
func (js *JSONStore) SaveDefinition(def models.DefinitionRow) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	prev, existed := js.data.Definitions[def.ID]
	js.data.Definitions[def.ID] = &def
	if err := js.saveLocked(); err != nil {
		if existed {
			js.data.Definitions[def.ID] = prev
		} else {
			delete(js.data.Definitions, def.ID)
		}
		return err
	}
	return nil
}

// SaveUser saves a user name to the store
func (js *JSONStore) SaveUser(userID int64, username string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	prev, existed := js.data.Users[userID]
	js.data.Users[userID] = username
	if err := js.saveLocked(); err != nil {
		if existed {
			js.data.Users[userID] = prev
		} else {
			delete(js.data.Users, userID)
		}
		return err
	}
	return nil
}

// LoadRoom loads a room by ID
func (js *JSONStore) LoadRoom(roomID int64) (*models.RoomData, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	room, exists := js.data.Rooms[roomID]
	if !exists {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNotFound)
	}

	cp := *room
	cp.Rights = append([]int64(nil), room.Rights...)
	return &cp, nil
}

// SaveRoom saves a room to the store
func (js *JSONStore) SaveRoom(room *models.RoomData) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	cp := *room
	cp.Rights = append([]int64(nil), room.Rights...)
	prev, existed := js.data.Rooms[room.ID]
	js.data.Rooms[room.ID] = &cp
	if err := js.saveLocked(); err != nil {
		if existed {
			js.data.Rooms[room.ID] = prev
		} else {
			delete(js.data.Rooms, room.ID)
		}
		return err
	}
	return nil
}

func (js *JSONStore) filterItems(keep func(*models.ItemRow) bool) []models.ItemRow {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	var rows []models.ItemRow
	for _, item := range js.data.Items {
		if !keep(item) {
			continue
		}
		row := *item
		row.Username = js.data.Users[row.UserID]
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// LoadRoomItems loads every item placed in a room
func (js *JSONStore) LoadRoomItems(roomID int64) ([]models.ItemRow, error) {
	return js.filterItems(func(r *models.ItemRow) bool { return r.RoomID == roomID }), nil
}

// LoadInventory loads a user's unplaced items
func (js *JSONStore) LoadInventory(userID int64) ([]models.ItemRow, error) {
	return js.filterItems(func(r *models.ItemRow) bool { return r.RoomID == 0 && r.UserID == userID }), nil
}

// InsertItem saves an item row to the store
func (js *JSONStore) InsertItem(row models.ItemRow) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	row.Username = ""
	prev, existed := js.data.Items[row.ID]
	js.data.Items[row.ID] = &row
	if err := js.saveLocked(); err != nil {
		if existed {
			js.data.Items[row.ID] = prev
		} else {
			delete(js.data.Items, row.ID)
		}
		return err
	}
	return nil
}

func (js *JSONStore) updateItem(itemID int64, apply func(*models.ItemRow)) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	item, exists := js.data.Items[itemID]
	if !exists {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	// the change only becomes visible once it is on disk
	updated := *item
	apply(&updated)
	js.data.Items[itemID] = &updated
	if err := js.saveLocked(); err != nil {
		js.data.Items[itemID] = item
		return err
	}
	return nil
}

// UpdateItemPosition stores the room and position of an item
func (js *JSONStore) UpdateItemPosition(itemID int64, p models.Placement) error {
	return js.updateItem(itemID, func(r *models.ItemRow) {
		r.RoomID, r.X, r.Y, r.Z, r.Rotation, r.WallPosition = p.RoomID, p.X, p.Y, p.Z, p.Rotation, p.WallPosition
	})
}

// UpdateItemState stores the state string of an item
func (js *JSONStore) UpdateItemState(itemID int64, extraData string) error {
	return js.updateItem(itemID, func(r *models.ItemRow) {
		r.ExtraData = extraData
	})
}

// ResetItemRoom moves an item back to its owner's inventory
func (js *JSONStore) ResetItemRoom(itemID int64) error {
	return js.updateItem(itemID, func(r *models.ItemRow) {
		r.RoomID, r.X, r.Y, r.Z, r.Rotation, r.WallPosition = 0, 0, 0, 0, 0, ""
	})
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
