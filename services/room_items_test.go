package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniroom/server/models"
)

func newIndex(t *testing.T, store *memStore, defs ...*models.Definition) *RoomItems {
	t.Helper()
	layout, err := models.ParseHeightmap("0001\n0002\n000x", models.Point{X: 0, Y: 2})
	require.NoError(t, err)
	return NewRoomItems(testRoomID, NewCatalog(defs...), store, layout, discardLogger())
}

func placeFloor(ri *RoomItems, id int64, def *models.Definition, x, y int, z float64) *models.FloorItem {
	item := &models.FloorItem{
		PlacedItem: models.PlacedItem{ID: id, Definition: def, OwnerID: ownerID},
		X:          x,
		Y:          y,
		Z:          z,
	}
	ri.AddFloor(item)
	return item
}

func TestLoadRoutesByKindAndSkipsUnknown(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 1, RoomID: testRoomID, DefinitionID: 10, X: 1, Y: 1, Rotation: 2}))
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 2, RoomID: testRoomID, DefinitionID: 20, WallPosition: ":w=1,0 l=2,3 r"}))
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 3, RoomID: testRoomID, DefinitionID: 99}))
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 4, RoomID: testRoomID + 1, DefinitionID: 10}))

	ri := newIndex(t, store, floorDef(10, nil), wallDef(20))
	require.NoError(t, ri.Load())

	assert.Equal(t, 1, ri.FloorCount())
	assert.Equal(t, 1, ri.WallCount())
	require.NotNil(t, ri.Floor(1))
	assert.Equal(t, models.RotationEast, ri.Floor(1).Rotation)
	assert.Equal(t, int64(testRoomID), ri.Floor(1).RoomID)
	require.NotNil(t, ri.Wall(2))
	assert.Equal(t, ":w=1,0 l=2,3 r", ri.Wall(2).WallPosition)
	assert.Nil(t, ri.Floor(3))
	assert.Nil(t, ri.Floor(2), "wall items must not appear in the floor map")
}

func TestLoadReturnsStoreError(t *testing.T) {
	store := newMemStore()
	store.loadErr = errStoreDown
	ri := newIndex(t, store)
	assert.ErrorIs(t, ri.Load(), errStoreDown)
}

func TestRemoveClearsRoom(t *testing.T) {
	ri := newIndex(t, newMemStore())
	item := placeFloor(ri, 1, floorDef(10, nil), 0, 0, 0)

	removed := ri.RemoveFloor(1)
	assert.Same(t, item, removed)
	assert.Equal(t, int64(0), item.RoomID)
	assert.Nil(t, ri.Floor(1))
	assert.Nil(t, ri.RemoveFloor(1))
}

func TestItemsAtOrdersTopmostFirst(t *testing.T) {
	ri := newIndex(t, newMemStore())
	def := floorDef(10, nil)
	low := placeFloor(ri, 1, def, 1, 1, 0)
	high := placeFloor(ri, 2, def, 1, 1, 2)
	mid := placeFloor(ri, 3, def, 1, 1, 1)
	placeFloor(ri, 4, def, 2, 2, 5)

	assert.Equal(t, []*models.FloorItem{high, mid, low}, ri.ItemsAt(1, 1))
	assert.Same(t, high, ri.TopItemAt(1, 1, 0))
	assert.Same(t, mid, ri.TopItemAt(1, 1, high.ID))
	assert.Empty(t, ri.ItemsAt(0, 0))
	assert.Nil(t, ri.TopItemAt(0, 0, 0))
}

func TestItemsAtCoversRotatedFootprint(t *testing.T) {
	ri := newIndex(t, newMemStore())
	item := placeFloor(ri, 1, floorDef(10, func(d *models.Definition) { d.Width, d.Length = 2, 1 }), 0, 0, 0)

	assert.Len(t, ri.ItemsAt(1, 0), 1)
	assert.Empty(t, ri.ItemsAt(0, 1))

	item.Rotation = models.RotationEast
	assert.Empty(t, ri.ItemsAt(1, 0))
	assert.Len(t, ri.ItemsAt(0, 1), 1)
}

func TestStackHeightAt(t *testing.T) {
	ri := newIndex(t, newMemStore())

	// empty tiles use the tile height, unknown tiles 0
	assert.Equal(t, 0.0, ri.StackHeightAt(0, 0, 0))
	assert.Equal(t, 2.0, ri.StackHeightAt(3, 1, 0))
	assert.Equal(t, 0.0, ri.StackHeightAt(3, 2, 0))
	assert.Equal(t, 0.0, ri.StackHeightAt(9, 9, 0))

	table := placeFloor(ri, 1, floorDef(10, func(d *models.Definition) { d.StackHeight = 1.5 }), 0, 0, 0.5)
	assert.Equal(t, 2.0, ri.StackHeightAt(0, 0, 0))
	assert.True(t, ri.CanStackAt(0, 0, 0))

	table.ExtraData = "1"
	table.Definition.StackHeights = []float64{1.5, 0.25}
	assert.Equal(t, 0.75, ri.StackHeightAt(0, 0, 0), "per-state height is used")

	placeFloor(ri, 2, floorDef(11, func(d *models.Definition) { d.CanStack = false }), 0, 0, 0.75)
	assert.Equal(t, NoStack, ri.StackHeightAt(0, 0, 0))
	assert.False(t, ri.CanStackAt(0, 0, 0))

	// excluding the blocker exposes the table again
	assert.Equal(t, 0.75, ri.StackHeightAt(0, 0, 2))
	assert.True(t, ri.CanStackAt(0, 0, 2))
}

func TestStackHeightAtSeatPlane(t *testing.T) {
	ri := newIndex(t, newMemStore())
	placeFloor(ri, 1, floorDef(10, func(d *models.Definition) { d.CanSit, d.StackHeight = true, 2 }), 0, 0, 0)
	placeFloor(ri, 2, floorDef(11, func(d *models.Definition) { d.CanLay, d.StackHeight = true, 3 }), 1, 1, 1)

	assert.Equal(t, 0.0, ri.StackHeightAt(0, 0, 0))
	assert.Equal(t, 1.0, ri.StackHeightAt(1, 1, 0))
}

func TestCanWalkAt(t *testing.T) {
	ri := newIndex(t, newMemStore())
	assert.True(t, ri.CanWalkAt(0, 0))

	placeFloor(ri, 1, floorDef(10, func(d *models.Definition) { d.IsWalkable = true }), 0, 0, 0)
	assert.True(t, ri.CanWalkAt(0, 0))

	placeFloor(ri, 2, floorDef(11, func(d *models.Definition) { d.CanSit = true }), 1, 0, 0)
	assert.True(t, ri.CanWalkAt(1, 0))

	placeFloor(ri, 3, floorDef(12, nil), 0, 0, 1)
	assert.False(t, ri.CanWalkAt(0, 0))
}

func TestSaveReportsFailure(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 1, RoomID: testRoomID, DefinitionID: 10}))
	ri := newIndex(t, store)
	item := placeFloor(ri, 1, floorDef(10, nil), 0, 0, 0)

	item.Move(2, 1, 0, models.RotationSouth)
	item.SetState("1")
	assert.True(t, ri.SavePosition(item))
	assert.True(t, ri.SaveState(item))
	assert.Equal(t, 2, store.row(1).X)
	assert.Equal(t, 4, store.row(1).Rotation)
	assert.Equal(t, "1", store.row(1).ExtraData)

	store.failPosition, store.failState = true, true
	assert.False(t, ri.SavePosition(item))
	assert.False(t, ri.SaveState(item))
}

func TestPickup(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 1, RoomID: testRoomID, DefinitionID: 10, X: 1}))
	require.NoError(t, store.InsertItem(models.ItemRow{ID: 2, RoomID: testRoomID, DefinitionID: 20, WallPosition: ":w=0,0 l=0,0 l"}))
	ri := newIndex(t, store, floorDef(10, nil), wallDef(20))
	require.NoError(t, ri.Load())

	assert.False(t, ri.Pickup(1, true), "wrong kind")
	assert.True(t, ri.Pickup(1, false))
	assert.Nil(t, ri.Floor(1))
	assert.Nil(t, ri.Wall(1))
	assert.Equal(t, int64(0), store.row(1).RoomID)

	store.failReset = true
	assert.False(t, ri.Pickup(2, true))
	assert.NotNil(t, ri.Wall(2), "item stays placed when the store fails")

	store.failReset = false
	assert.True(t, ri.Pickup(2, true))
	assert.Nil(t, ri.Wall(2))
	assert.Nil(t, ri.Floor(2))
	assert.False(t, ri.Pickup(2, true))
}
