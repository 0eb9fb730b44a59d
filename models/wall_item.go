package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// WallItem is a placed item hung on a wall
type WallItem struct {
	PlacedItem
	WallPosition string
}

// NewWallItem builds a wall item from a persisted row
func NewWallItem(row ItemRow, def *Definition) *WallItem {
	return &WallItem{
		PlacedItem:   placedFromRow(row, def),
		WallPosition: row.WallPosition,
	}
}

func (w *WallItem) Kind() ItemKind {
	return KindWall
}

// SetWallPosition updates the position string and reports whether it changed.
func (w *WallItem) SetWallPosition(pos string) bool {
	if w.WallPosition == pos {
		return false
	}
	w.WallPosition = pos
	return true
}

// WallPosition is the parsed form of ":w=<x>,<y> l=<x>,<y> <l|r>"
type WallPosition struct {
	WallX  int
	WallY  int
	LocalX int
	LocalY int
	Side   byte
}

var wallPositionPattern = regexp.MustCompile(`^:w=(\d+),(\d+) l=(\d+),(\d+) ([lr])$`)

// ParseWallPosition parses a wall position string. ok is false when the
// string does not match the grammar; the zero value must not be used then.
func ParseWallPosition(s string) (WallPosition, bool) {
	m := wallPositionPattern.FindStringSubmatch(s)
	if m == nil {
		return WallPosition{}, false
	}

	var nums [4]int
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return WallPosition{}, false
		}
		nums[i] = n
	}

	return WallPosition{
		WallX:  nums[0],
		WallY:  nums[1],
		LocalX: nums[2],
		LocalY: nums[3],
		Side:   m[5][0],
	}, true
}

func (p WallPosition) String() string {
	return fmt.Sprintf(":w=%d,%d l=%d,%d %c", p.WallX, p.WallY, p.LocalX, p.LocalY, p.Side)
}
