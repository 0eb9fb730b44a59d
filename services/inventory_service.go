package services

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"furniroom/server/models"
	"furniroom/server/persistence"
)

// InventoryService caches the unplaced items of users, loading each user's
// inventory from the store on first use.
type InventoryService struct {
	catalog     *Catalog
	db          persistence.Storage
	logger      *log.Logger
	inventories map[int64]map[int64]*models.InventoryItem
	mutex       sync.Mutex
}

// NewInventoryService creates a new inventory service
func NewInventoryService(catalog *Catalog, db persistence.Storage, logger *log.Logger) *InventoryService {
	return &InventoryService{
		catalog:     catalog,
		db:          db,
		logger:      logger,
		inventories: make(map[int64]map[int64]*models.InventoryItem),
	}
}

// loadLocked returns the user's cached inventory, reading it from the store
// if needed
func (is *InventoryService) loadLocked(userID int64) (map[int64]*models.InventoryItem, error) {
	if inv, ok := is.inventories[userID]; ok {
		return inv, nil
	}

	rows, err := is.db.LoadInventory(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	inv := make(map[int64]*models.InventoryItem, len(rows))
	for _, row := range rows {
		def, ok := is.catalog.Get(row.DefinitionID)
		if !ok {
			is.logger.Printf("Skipping inventory item %d of user %d: unknown definition %d", row.ID, userID, row.DefinitionID)
			continue
		}
		inv[row.ID] = models.NewInventoryItem(row, def)
	}
	is.inventories[userID] = inv
	return inv, nil
}

// Get returns one item of a user's inventory
func (is *InventoryService) Get(userID, itemID int64) (*models.InventoryItem, error) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	inv, err := is.loadLocked(userID)
	if err != nil {
		return nil, err
	}
	item, ok := inv[itemID]
	if !ok {
		return nil, fmt.Errorf("inventory item %d: %w", itemID, ErrUnknownItem)
	}
	return item, nil
}

// Items lists a user's inventory ordered by id
func (is *InventoryService) Items(userID int64) ([]*models.InventoryItem, error) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	inv, err := is.loadLocked(userID)
	if err != nil {
		return nil, err
	}
	items := make([]*models.InventoryItem, 0, len(inv))
	for _, item := range inv {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Remove drops an item that has been placed in a room
func (is *InventoryService) Remove(userID, itemID int64) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	if inv, ok := is.inventories[userID]; ok {
		delete(inv, itemID)
	}
}

// Add returns a picked up item to its owner. Owners whose inventory is not
// cached pick it up from the store on their next load.
func (is *InventoryService) Add(item *models.InventoryItem) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	if inv, ok := is.inventories[item.OwnerID]; ok {
		inv[item.ID] = item
	}
}

// Forget evicts a user's cached inventory, typically on disconnect
func (is *InventoryService) Forget(userID int64) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	delete(is.inventories, userID)
}
