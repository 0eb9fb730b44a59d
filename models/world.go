package models

import (
	"fmt"
	"strings"
)

// RoomData is the stored description of a room
type RoomData struct {
	ID        int64   `json:"id" yaml:"id"`
	OwnerID   int64   `json:"owner_id" yaml:"owner_id"`
	Name      string  `json:"name" yaml:"name"`
	Heightmap string  `json:"heightmap" yaml:"heightmap"`
	DoorX     int     `json:"door_x" yaml:"door_x"`
	DoorY     int     `json:"door_y" yaml:"door_y"`
	Rights    []int64 `json:"rights" yaml:"rights"`
}

// TileVoid marks a position with no floor
const TileVoid = -1

// RoomLayout is the tile grid of a room. Tiles[y][x] holds the base height
// of the tile or TileVoid.
type RoomLayout struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Tiles  [][]int `json:"tiles"`
	Door   Point   `json:"door"`
}

// ParseHeightmap builds a layout from rows of height characters.
// 'x' is void, '0'-'9' then 'a'-'z' are heights 0 to 35.
func ParseHeightmap(heightmap string, door Point) (*RoomLayout, error) {
	rows := strings.FieldsFunc(heightmap, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty heightmap")
	}

	layout := &RoomLayout{
		Height: len(rows),
		Tiles:  make([][]int, len(rows)),
		Door:   door,
	}
	for y, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) > layout.Width {
			layout.Width = len(row)
		}
		layout.Tiles[y] = make([]int, len(row))
		for x := 0; x < len(row); x++ {
			h, err := tileHeight(row[x])
			if err != nil {
				return nil, fmt.Errorf("heightmap row %d col %d: %w", y, x, err)
			}
			layout.Tiles[y][x] = h
		}
	}
	return layout, nil
}

func tileHeight(c byte) (int, error) {
	switch {
	case c == 'x' || c == 'X':
		return TileVoid, nil
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, nil
	}
	return 0, fmt.Errorf("invalid tile %q", c)
}

// TileHeight returns the base height of a tile; ok is false for void or
// out-of-bounds positions.
func (l *RoomLayout) TileHeight(x, y int) (float64, bool) {
	if y < 0 || y >= len(l.Tiles) || x < 0 || x >= len(l.Tiles[y]) {
		return 0, false
	}
	h := l.Tiles[y][x]
	if h == TileVoid {
		return 0, false
	}
	return float64(h), true
}

// Blocked reports whether furniture may not be placed on the tile. The door
// tile is always kept free.
func (l *RoomLayout) Blocked(x, y int) bool {
	if _, ok := l.TileHeight(x, y); !ok {
		return true
	}
	return x == l.Door.X && y == l.Door.Y
}
