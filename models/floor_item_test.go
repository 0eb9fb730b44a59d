package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFloorItem(w, l int, rot Rotation) *FloorItem {
	return &FloorItem{
		PlacedItem: PlacedItem{ID: 1, Definition: &Definition{Width: w, Length: l, StackHeight: 1}},
		X:          3,
		Y:          4,
		Rotation:   rot,
	}
}

func TestFootprintSwapsOnPerpendicularRotation(t *testing.T) {
	cases := []struct {
		rot  Rotation
		w, l int
	}{
		{RotationNorth, 2, 1},
		{RotationEast, 1, 2},
		{RotationSouth, 2, 1},
		{RotationWest, 1, 2},
	}
	for _, c := range cases {
		w, l := newTestFloorItem(2, 1, c.rot).Footprint()
		assert.Equal(t, c.w, w, "rotation %d", c.rot)
		assert.Equal(t, c.l, l, "rotation %d", c.rot)
	}
}

func TestOccupiesCoversExactlyFootprint(t *testing.T) {
	for _, rot := range []Rotation{RotationNorth, RotationEast, RotationSouth, RotationWest} {
		item := newTestFloorItem(3, 2, rot)
		assert.True(t, item.Occupies(item.X, item.Y))

		covered := 0
		for x := 0; x < 10; x++ {
			for y := 0; y < 10; y++ {
				if item.Occupies(x, y) {
					covered++
				}
			}
		}
		assert.Equal(t, 6, covered)
		assert.Len(t, item.Tiles(), 6)
		for _, p := range item.Tiles() {
			assert.True(t, item.Occupies(p.X, p.Y))
		}
	}

	item := newTestFloorItem(2, 1, RotationNorth)
	assert.True(t, item.Occupies(4, 4))
	assert.False(t, item.Occupies(5, 4))
	assert.False(t, item.Occupies(3, 5))
	assert.False(t, item.Occupies(2, 4))
}

func TestEffectiveHeightUsesState(t *testing.T) {
	item := newTestFloorItem(1, 1, RotationNorth)
	item.Definition.StackHeights = []float64{0.5, 2}
	item.Z = 1

	item.ExtraData = "1"
	assert.Equal(t, 2.0, item.EffectiveHeight())
	assert.Equal(t, 3.0, item.TotalHeight())

	item.ExtraData = "legacy"
	assert.Equal(t, 0, item.State())
	assert.Equal(t, 0.5, item.EffectiveHeight())

	item.ExtraData = "9"
	assert.Equal(t, 1.0, item.EffectiveHeight())
}

func TestMoveAndSetStateReportChanges(t *testing.T) {
	item := newTestFloorItem(1, 1, RotationNorth)

	assert.False(t, item.Move(3, 4, 0, RotationNorth))
	assert.True(t, item.Move(5, 6, 1.5, RotationEast))
	assert.Equal(t, 5, item.X)
	assert.Equal(t, 6, item.Y)
	assert.Equal(t, 1.5, item.Z)
	assert.Equal(t, RotationEast, item.Rotation)

	assert.True(t, item.SetState("1"))
	assert.False(t, item.SetState("1"))
}

func TestParseRotation(t *testing.T) {
	_, ok := ParseRotation(3)
	assert.False(t, ok)
	rot, ok := ParseRotation(6)
	assert.True(t, ok)
	assert.Equal(t, RotationWest, rot)
}
