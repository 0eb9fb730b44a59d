package messages

import (
	"sort"
	"strconv"

	"furniroom/server/models"
	"furniroom/server/protocol"
)

const (
	dataFlagLimited = 256
	noExpiry        = -1
)

// FormatHeight renders a height with at least one fractional digit
func FormatHeight(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

func usagePolicy(def *models.Definition) int32 {
	if def.ModesCount > 1 {
		return 1
	}
	return 0
}

func writeItemData(m *protocol.ServerMessage, item *models.PlacedItem) {
	if item.IsLimited() {
		m.AppendInt(dataFlagLimited)
		m.AppendString(item.ExtraData)
		m.AppendInt(int32(item.LimitedNumber))
		m.AppendInt(int32(item.LimitedStack))
		return
	}
	m.AppendInt(0)
	m.AppendString(item.ExtraData)
}

func writeFloorItem(m *protocol.ServerMessage, item *models.FloorItem) {
	m.AppendInt(int32(item.ID))
	m.AppendInt(int32(item.Definition.SpriteID))
	m.AppendInt(int32(item.X))
	m.AppendInt(int32(item.Y))
	m.AppendInt(int32(item.Rotation))
	m.AppendString(FormatHeight(item.Z))
	m.AppendString(FormatHeight(item.EffectiveHeight()))
	writeItemData(m, &item.PlacedItem)
	m.AppendInt(noExpiry)
	m.AppendInt(usagePolicy(item.Definition))
	m.AppendInt(int32(item.OwnerID))
}

func writeWallItem(m *protocol.ServerMessage, item *models.WallItem) {
	m.AppendString(strconv.FormatInt(item.ID, 10))
	m.AppendInt(int32(item.Definition.SpriteID))
	m.AppendString(item.WallPosition)
	m.AppendString(item.ExtraData)
	m.AppendInt(noExpiry)
	m.AppendInt(usagePolicy(item.Definition))
	m.AppendInt(int32(item.OwnerID))
}

// writeOwners writes the owner lookup table that prefixes room item lists,
// ordered by owner id.
func writeOwners(m *protocol.ServerMessage, owners map[int64]string) {
	ids := make([]int64, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	m.AppendInt(int32(len(ids)))
	for _, id := range ids {
		m.AppendInt(int32(id))
		m.AppendString(owners[id])
	}
}

// RoomFloorItems lists every floor item of a room for a joining user
func RoomFloorItems(items []*models.FloorItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderRoomFloorItems)
	owners := make(map[int64]string)
	for _, item := range items {
		owners[item.OwnerID] = item.OwnerName
	}
	writeOwners(m, owners)

	m.AppendInt(int32(len(items)))
	for _, item := range items {
		writeFloorItem(m, item)
	}
	return m
}

// RoomWallItems lists every wall item of a room for a joining user
func RoomWallItems(items []*models.WallItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderRoomWallItems)
	owners := make(map[int64]string)
	for _, item := range items {
		owners[item.OwnerID] = item.OwnerName
	}
	writeOwners(m, owners)

	m.AppendInt(int32(len(items)))
	for _, item := range items {
		writeWallItem(m, item)
	}
	return m
}

func FloorItemAdded(item *models.FloorItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderFloorItemAdded)
	writeFloorItem(m, item)
	m.AppendString(item.OwnerName)
	return m
}

func FloorItemUpdated(item *models.FloorItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderFloorItemUpdated)
	writeFloorItem(m, item)
	return m
}

func FloorItemRemoved(itemID, pickerID int64) *protocol.ServerMessage {
	return protocol.NewServerMessage(HeaderFloorItemRemoved).
		AppendString(strconv.FormatInt(itemID, 10)).
		AppendBool(false).
		AppendInt(int32(pickerID)).
		AppendInt(0)
}

func WallItemAdded(item *models.WallItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderWallItemAdded)
	writeWallItem(m, item)
	m.AppendString(item.OwnerName)
	return m
}

func WallItemUpdated(item *models.WallItem) *protocol.ServerMessage {
	m := protocol.NewServerMessage(HeaderWallItemUpdated)
	writeWallItem(m, item)
	return m
}

func WallItemRemoved(itemID, pickerID int64) *protocol.ServerMessage {
	return protocol.NewServerMessage(HeaderWallItemRemoved).
		AppendString(strconv.FormatInt(itemID, 10)).
		AppendInt(int32(pickerID))
}

// ItemStateUpdated is the lightweight state broadcast for non-limited items
func ItemStateUpdated(itemID int64, state int) *protocol.ServerMessage {
	return protocol.NewServerMessage(HeaderItemStateUpdated).
		AppendInt(int32(itemID)).
		AppendInt(int32(state))
}

func InventoryItemRemoved(itemID int64) *protocol.ServerMessage {
	return protocol.NewServerMessage(HeaderInventoryItemRemoved).
		AppendInt(int32(itemID))
}

// InventoryRefresh tells the client its inventory changed and must be re-requested
func InventoryRefresh() *protocol.ServerMessage {
	return protocol.NewServerMessage(HeaderInventoryRefresh)
}
