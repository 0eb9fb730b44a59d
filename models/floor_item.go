package models

// Rotation is one of the four cardinal codes used by the client
type Rotation int

const (
	RotationNorth Rotation = 0
	RotationEast  Rotation = 2
	RotationSouth Rotation = 4
	RotationWest  Rotation = 6
)

// ParseRotation accepts only the cardinal codes
func ParseRotation(n int) (Rotation, bool) {
	switch r := Rotation(n); r {
	case RotationNorth, RotationEast, RotationSouth, RotationWest:
		return r, true
	}
	return 0, false
}

// Perpendicular reports whether width and length swap for this rotation
func (r Rotation) Perpendicular() bool {
	return r == RotationEast || r == RotationWest
}

// FloorItem is a placed item standing on room tiles
type FloorItem struct {
	PlacedItem
	X        int
	Y        int
	Z        float64
	Rotation Rotation
}

// NewFloorItem builds a floor item from a persisted row
func NewFloorItem(row ItemRow, def *Definition) *FloorItem {
	rot, ok := ParseRotation(row.Rotation)
	if !ok {
		rot = RotationNorth
	}
	return &FloorItem{
		PlacedItem: placedFromRow(row, def),
		X:          row.X,
		Y:          row.Y,
		Z:          row.Z,
		Rotation:   rot,
	}
}

func (f *FloorItem) Kind() ItemKind {
	return KindFloor
}

// Footprint returns the (width, length) in tiles after rotation
func (f *FloorItem) Footprint() (int, int) {
	if f.Rotation.Perpendicular() {
		return f.Definition.Length, f.Definition.Width
	}
	return f.Definition.Width, f.Definition.Length
}

// Occupies reports whether (x, y) lies inside the item's footprint
func (f *FloorItem) Occupies(x, y int) bool {
	w, l := f.Footprint()
	return x >= f.X && x < f.X+w && y >= f.Y && y < f.Y+l
}

// Tiles lists every tile covered by the item
func (f *FloorItem) Tiles() []Point {
	return FootprintTiles(f.X, f.Y, f.Definition, f.Rotation)
}

// EffectiveHeight is the stack height contributed in the current state
func (f *FloorItem) EffectiveHeight() float64 {
	return f.Definition.HeightForState(f.State())
}

// TotalHeight is the height of the item's top surface
func (f *FloorItem) TotalHeight() float64 {
	return f.Z + f.EffectiveHeight()
}

// Move updates position and rotation and reports whether anything changed.
func (f *FloorItem) Move(x, y int, z float64, rot Rotation) bool {
	if f.X == x && f.Y == y && f.Z == z && f.Rotation == rot {
		return false
	}
	f.X, f.Y, f.Z, f.Rotation = x, y, z, rot
	return true
}

// FootprintTiles lists the tiles a definition would cover when anchored at (x, y)
func FootprintTiles(x, y int, def *Definition, rot Rotation) []Point {
	w, l := def.Width, def.Length
	if rot.Perpendicular() {
		w, l = l, w
	}
	tiles := make([]Point, 0, w*l)
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < l; dy++ {
			tiles = append(tiles, Point{X: x + dx, Y: y + dy})
		}
	}
	return tiles
}
