package persistence

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"furniroom/server/models"
)

// dialect captures the few places the supported SQL servers disagree
type dialect struct {
	name           string
	dollarParams   bool
	duplicateKeyed bool
}

var (
	dialectPostgres = dialect{name: "postgres", dollarParams: true}
	dialectMySQL    = dialect{name: "mysql", duplicateKeyed: true}
	dialectSQLite   = dialect{name: "sqlite"}
)

// rebind rewrites '?' placeholders into the dialect's form
func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert that overwrites every non-key column on conflict
func (d dialect) upsert(table, key string, cols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)

	var sets []string
	for _, c := range cols {
		if c == key {
			continue
		}
		if d.duplicateKeyed {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	if d.duplicateKeyed {
		return query + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return query + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET ", key) + strings.Join(sets, ", ")
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS furniture (
		id BIGINT PRIMARY KEY,
		sprite_id INTEGER NOT NULL,
		name VARCHAR(100) NOT NULL DEFAULT '',
		category VARCHAR(16) NOT NULL,
		width INTEGER NOT NULL DEFAULT 1,
		length INTEGER NOT NULL DEFAULT 1,
		stack_height DOUBLE PRECISION NOT NULL DEFAULT 1,
		stack_heights VARCHAR(255) NOT NULL DEFAULT '',
		can_stack SMALLINT NOT NULL DEFAULT 1,
		can_sit SMALLINT NOT NULL DEFAULT 0,
		can_lay SMALLINT NOT NULL DEFAULT 0,
		is_walkable SMALLINT NOT NULL DEFAULT 0,
		can_recycle SMALLINT NOT NULL DEFAULT 0,
		can_trade SMALLINT NOT NULL DEFAULT 1,
		can_marketplace SMALLINT NOT NULL DEFAULT 0,
		can_gift SMALLINT NOT NULL DEFAULT 1,
		can_inventory_stack SMALLINT NOT NULL DEFAULT 1,
		interaction VARCHAR(32) NOT NULL DEFAULT 'default',
		modes_count INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGINT PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		name VARCHAR(100) NOT NULL DEFAULT '',
		heightmap TEXT NOT NULL,
		door_x INTEGER NOT NULL DEFAULT 0,
		door_y INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS room_rights (
		room_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		PRIMARY KEY (room_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT PRIMARY KEY,
		room_id BIGINT NOT NULL DEFAULT 0,
		item_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		x INTEGER NOT NULL DEFAULT 0,
		y INTEGER NOT NULL DEFAULT 0,
		z DOUBLE PRECISION NOT NULL DEFAULT 0,
		rot INTEGER NOT NULL DEFAULT 0,
		extra_data VARCHAR(255) NOT NULL DEFAULT '',
		limited_number INTEGER NOT NULL DEFAULT 0,
		limited_stack INTEGER NOT NULL DEFAULT 0,
		wall_pos VARCHAR(64) NOT NULL DEFAULT ''
	)`,
}

const itemColumns = `i.id, i.room_id, i.item_id, i.user_id, COALESCE(u.username, ''),
	i.x, i.y, i.z, i.rot, i.extra_data, i.limited_number, i.limited_stack, i.wall_pos`

// SQLStore implements Storage on database/sql. The driver is chosen by the
// constructor (NewPostgresStore, NewMySQLStore, NewSQLiteStore).
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func openSQLStore(driver, dsn string, d dialect, maxOpenConns int) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLStore{db: db, dialect: d}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLStore) initSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) exec(query string, args ...interface{}) (sql.Result, error) {
	return s.db.Exec(s.dialect.rebind(query), args...)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LoadDefinitions loads every furniture definition
func (s *SQLStore) LoadDefinitions() ([]models.DefinitionRow, error) {
	rows, err := s.db.Query(`SELECT id, sprite_id, name, category, width, length, stack_height, stack_heights,
		can_stack, can_sit, can_lay, is_walkable, can_recycle, can_trade, can_marketplace, can_gift,
		can_inventory_stack, interaction, modes_count FROM furniture ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	defer rows.Close()

	var defs []models.DefinitionRow
	for rows.Next() {
		var d models.DefinitionRow
		if err := rows.Scan(&d.ID, &d.SpriteID, &d.Name, &d.Category, &d.Width, &d.Length,
			&d.StackHeight, &d.StackHeights, &d.CanStack, &d.CanSit, &d.CanLay, &d.IsWalkable,
			&d.CanRecycle, &d.CanTrade, &d.CanMarketplace, &d.CanGift, &d.CanInventoryStack,
			&d.Interaction, &d.ModesCount); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// SaveDefinition inserts or replaces a furniture definition
func (s *SQLStore) SaveDefinition(d models.DefinitionRow) error {
	query := s.dialect.upsert("furniture", "id", []string{
		"id", "sprite_id", "name", "category", "width", "length", "stack_height", "stack_heights",
		"can_stack", "can_sit", "can_lay", "is_walkable", "can_recycle", "can_trade",
		"can_marketplace", "can_gift", "can_inventory_stack", "interaction", "modes_count",
	})
	_, err := s.exec(query, d.ID, d.SpriteID, d.Name, d.Category, d.Width, d.Length,
		d.StackHeight, d.StackHeights, boolInt(d.CanStack), boolInt(d.CanSit), boolInt(d.CanLay),
		boolInt(d.IsWalkable), boolInt(d.CanRecycle), boolInt(d.CanTrade), boolInt(d.CanMarketplace),
		boolInt(d.CanGift), boolInt(d.CanInventoryStack), d.Interaction, d.ModesCount)
	if err != nil {
		return fmt.Errorf("failed to save definition %d: %w", d.ID, err)
	}
	return nil
}

// SaveUser inserts or renames a user
func (s *SQLStore) SaveUser(userID int64, username string) error {
	query := s.dialect.upsert("users", "id", []string{"id", "username"})
	if _, err := s.exec(query, userID, username); err != nil {
		return fmt.Errorf("failed to save user %d: %w", userID, err)
	}
	return nil
}

// LoadRoom loads a room and its rights holders
func (s *SQLStore) LoadRoom(roomID int64) (*models.RoomData, error) {
	var room models.RoomData
	err := s.db.QueryRow(s.dialect.rebind(`SELECT id, owner_id, name, heightmap, door_x, door_y FROM rooms WHERE id = ?`), roomID).
		Scan(&room.ID, &room.OwnerID, &room.Name, &room.Heightmap, &room.DoorX, &room.DoorY)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("room %d: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	rows, err := s.db.Query(s.dialect.rebind(`SELECT user_id FROM room_rights WHERE room_id = ? ORDER BY user_id`), roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room rights: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan room right: %w", err)
		}
		room.Rights = append(room.Rights, userID)
	}
	return &room, rows.Err()
}

// SaveRoom inserts or replaces a room and its rights in one transaction
func (s *SQLStore) SaveRoom(room *models.RoomData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := s.dialect.upsert("rooms", "id", []string{"id", "owner_id", "name", "heightmap", "door_x", "door_y"})
	if _, err := tx.Exec(s.dialect.rebind(query), room.ID, room.OwnerID, room.Name, room.Heightmap, room.DoorX, room.DoorY); err != nil {
		return fmt.Errorf("failed to save room %d: %w", room.ID, err)
	}
	if _, err := tx.Exec(s.dialect.rebind(`DELETE FROM room_rights WHERE room_id = ?`), room.ID); err != nil {
		return fmt.Errorf("failed to clear room rights: %w", err)
	}
	for _, userID := range room.Rights {
		if _, err := tx.Exec(s.dialect.rebind(`INSERT INTO room_rights (room_id, user_id) VALUES (?, ?)`), room.ID, userID); err != nil {
			return fmt.Errorf("failed to save room right: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) queryItems(where string, arg int64) ([]models.ItemRow, error) {
	query := `SELECT ` + itemColumns + ` FROM items i LEFT JOIN users u ON u.id = i.user_id WHERE ` + where + ` ORDER BY i.id`
	rows, err := s.db.Query(s.dialect.rebind(query), arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ItemRow
	for rows.Next() {
		var r models.ItemRow
		if err := rows.Scan(&r.ID, &r.RoomID, &r.DefinitionID, &r.UserID, &r.Username,
			&r.X, &r.Y, &r.Z, &r.Rotation, &r.ExtraData, &r.LimitedNumber, &r.LimitedStack,
			&r.WallPosition); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// LoadRoomItems loads every item placed in a room
func (s *SQLStore) LoadRoomItems(roomID int64) ([]models.ItemRow, error) {
	items, err := s.queryItems("i.room_id = ?", roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of room %d: %w", roomID, err)
	}
	return items, nil
}

// LoadInventory loads a user's unplaced items
func (s *SQLStore) LoadInventory(userID int64) ([]models.ItemRow, error) {
	items, err := s.queryItems("i.room_id = 0 AND i.user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory of user %d: %w", userID, err)
	}
	return items, nil
}

// InsertItem inserts or replaces an item row
func (s *SQLStore) InsertItem(r models.ItemRow) error {
	query := s.dialect.upsert("items", "id", []string{
		"id", "room_id", "item_id", "user_id", "x", "y", "z", "rot", "extra_data",
		"limited_number", "limited_stack", "wall_pos",
	})
	_, err := s.exec(query, r.ID, r.RoomID, r.DefinitionID, r.UserID, r.X, r.Y, r.Z, r.Rotation,
		r.ExtraData, r.LimitedNumber, r.LimitedStack, r.WallPosition)
	if err != nil {
		return fmt.Errorf("failed to insert item %d: %w", r.ID, err)
	}
	return nil
}

func (s *SQLStore) updateOne(itemID int64, query string, args ...interface{}) error {
	res, err := s.exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// UpdateItemPosition stores the room and position of an item
func (s *SQLStore) UpdateItemPosition(itemID int64, p models.Placement) error {
	err := s.updateOne(itemID, `UPDATE items SET room_id = ?, x = ?, y = ?, z = ?, rot = ?, wall_pos = ? WHERE id = ?`,
		p.RoomID, p.X, p.Y, p.Z, p.Rotation, p.WallPosition, itemID)
	if err != nil {
		return fmt.Errorf("failed to update position of item %d: %w", itemID, err)
	}
	return nil
}

// UpdateItemState stores the state string of an item
func (s *SQLStore) UpdateItemState(itemID int64, extraData string) error {
	err := s.updateOne(itemID, `UPDATE items SET extra_data = ? WHERE id = ?`, extraData, itemID)
	if err != nil {
		return fmt.Errorf("failed to update state of item %d: %w", itemID, err)
	}
	return nil
}

// ResetItemRoom moves an item back to its owner's inventory
func (s *SQLStore) ResetItemRoom(itemID int64) error {
	err := s.updateOne(itemID, `UPDATE items SET room_id = 0, x = 0, y = 0, z = 0, rot = 0, wall_pos = '' WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to reset room of item %d: %w", itemID, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	log.Printf("Closing %s connection...", s.dialect.name)
	return s.db.Close()
}
