package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category is the furniture family a definition belongs to
type Category string

const (
	CategoryFloor  Category = "floor"
	CategoryWall   Category = "wall"
	CategoryEffect Category = "effect"
	CategoryBadge  Category = "badge"
	CategoryRobot  Category = "robot"
	CategoryPet    Category = "pet"
)

// ParseCategory validates a stored category string
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryFloor, CategoryWall, CategoryEffect, CategoryBadge, CategoryRobot, CategoryPet:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// InteractionType selects toggle semantics and permission rules for an item
type InteractionType string

const (
	InteractionDefault        InteractionType = "default"
	InteractionGate           InteractionType = "gate"
	InteractionTeleport       InteractionType = "teleport"
	InteractionDice           InteractionType = "dice"
	InteractionBottle         InteractionType = "bottle"
	InteractionRoller         InteractionType = "roller"
	InteractionOneWayGate     InteractionType = "onewaygate"
	InteractionBed            InteractionType = "bed"
	InteractionVendingMachine InteractionType = "vendingmachine"
	InteractionTrophy         InteractionType = "trophy"
	InteractionStackHelper    InteractionType = "stack_helper"
	InteractionMannequin      InteractionType = "mannequin"
	InteractionHopper         InteractionType = "hopper"
	InteractionCostumeHopper  InteractionType = "costumehopper"
	InteractionSitDown        InteractionType = "sit_down"
	InteractionWiredTrigger   InteractionType = "wf_trg"
	InteractionWiredEffect    InteractionType = "wf_act"
	InteractionWiredCondition InteractionType = "wf_cnd"
	InteractionPressurePlate  InteractionType = "pressureplate"
	InteractionFireworks      InteractionType = "fireworks"
	InteractionColorWheel     InteractionType = "colorwheel"
)

var interactionTypes = map[InteractionType]struct{}{
	InteractionDefault: {}, InteractionGate: {}, InteractionTeleport: {}, InteractionDice: {},
	InteractionBottle: {}, InteractionRoller: {}, InteractionOneWayGate: {}, InteractionBed: {},
	InteractionVendingMachine: {}, InteractionTrophy: {}, InteractionStackHelper: {},
	InteractionMannequin: {}, InteractionHopper: {}, InteractionCostumeHopper: {},
	InteractionSitDown: {}, InteractionWiredTrigger: {}, InteractionWiredEffect: {},
	InteractionWiredCondition: {}, InteractionPressurePlate: {}, InteractionFireworks: {},
	InteractionColorWheel: {},
}

// ParseInteractionType maps a stored interaction string to its type.
// Unrecognised values behave as default furniture.
func ParseInteractionType(s string) InteractionType {
	t := InteractionType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := interactionTypes[t]; ok {
		return t
	}
	return InteractionDefault
}

// ItemKind discriminates the placed item variants
type ItemKind int

const (
	KindFloor ItemKind = iota
	KindWall
)

func (k ItemKind) String() string {
	if k == KindWall {
		return "wall"
	}
	return "floor"
}

// Definition is the immutable metadata shared by every item of one furniture type
type Definition struct {
	ID           int64
	SpriteID     int
	Name         string
	Category     Category
	Width        int
	Length       int
	StackHeight  float64
	StackHeights []float64

	CanStack          bool
	CanSit            bool
	CanLay            bool
	IsWalkable        bool
	CanRecycle        bool
	CanTrade          bool
	CanMarketplace    bool
	CanGift           bool
	CanInventoryStack bool

	Interaction InteractionType
	ModesCount  int
}

// Kind reports whether items of this definition live on the wall or the floor.
func (d *Definition) Kind() ItemKind {
	if d.Category == CategoryWall {
		return KindWall
	}
	return KindFloor
}

// HeightForState returns the per-state height when the table covers state,
// otherwise the base stack height.
func (d *Definition) HeightForState(state int) float64 {
	if state >= 0 && state < len(d.StackHeights) {
		return d.StackHeights[state]
	}
	return d.StackHeight
}

// ParseStackHeights parses a ';' delimited height table. Empty segments are
// dropped; a segment that is not a number fails the whole table.
func ParseStackHeights(s string) ([]float64, error) {
	var heights []float64
	for _, seg := range strings.Split(s, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		h, err := strconv.ParseFloat(seg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stack height %q: %w", seg, err)
		}
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("invalid stack height %q", seg)
		}
		heights = append(heights, h)
	}
	return heights, nil
}

// DefinitionRow is the stored form of a definition
type DefinitionRow struct {
	ID                int64   `json:"id" yaml:"id"`
	SpriteID          int     `json:"sprite_id" yaml:"sprite_id"`
	Name              string  `json:"name" yaml:"name"`
	Category          string  `json:"category" yaml:"category"`
	Width             int     `json:"width" yaml:"width"`
	Length            int     `json:"length" yaml:"length"`
	StackHeight       float64 `json:"stack_height" yaml:"stack_height"`
	StackHeights      string  `json:"stack_heights" yaml:"stack_heights"`
	CanStack          bool    `json:"can_stack" yaml:"can_stack"`
	CanSit            bool    `json:"can_sit" yaml:"can_sit"`
	CanLay            bool    `json:"can_lay" yaml:"can_lay"`
	IsWalkable        bool    `json:"is_walkable" yaml:"is_walkable"`
	CanRecycle        bool    `json:"can_recycle" yaml:"can_recycle"`
	CanTrade          bool    `json:"can_trade" yaml:"can_trade"`
	CanMarketplace    bool    `json:"can_marketplace" yaml:"can_marketplace"`
	CanGift           bool    `json:"can_gift" yaml:"can_gift"`
	CanInventoryStack bool    `json:"can_inventory_stack" yaml:"can_inventory_stack"`
	Interaction       string  `json:"interaction" yaml:"interaction"`
	ModesCount        int     `json:"modes_count" yaml:"modes_count"`
}

// ToDefinition validates the row and builds the immutable definition
func (r DefinitionRow) ToDefinition() (*Definition, error) {
	category, err := ParseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("definition %d: %w", r.ID, err)
	}
	heights, err := ParseStackHeights(r.StackHeights)
	if err != nil {
		return nil, fmt.Errorf("definition %d: %w", r.ID, err)
	}
	width, length := r.Width, r.Length
	if width < 1 {
		width = 1
	}
	if length < 1 {
		length = 1
	}

	return &Definition{
		ID:                r.ID,
		SpriteID:          r.SpriteID,
		Name:              r.Name,
		Category:          category,
		Width:             width,
		Length:            length,
		StackHeight:       r.StackHeight,
		StackHeights:      heights,
		CanStack:          r.CanStack,
		CanSit:            r.CanSit,
		CanLay:            r.CanLay,
		IsWalkable:        r.IsWalkable,
		CanRecycle:        r.CanRecycle,
		CanTrade:          r.CanTrade,
		CanMarketplace:    r.CanMarketplace,
		CanGift:           r.CanGift,
		CanInventoryStack: r.CanInventoryStack,
		Interaction:       ParseInteractionType(r.Interaction),
		ModesCount:        r.ModesCount,
	}, nil
}
