package services

import (
	"furniroom/server/models"
)

// useDistance is how close an avatar must stand to use rights-gated furniture
// without holding rights
const useDistance = 2

// NextState computes the state an item moves to when used. ok is false when
// the item has no states to cycle through. intn must return a value in [0, n).
func NextState(def *models.Definition, current int, intn func(int) int) (int, bool) {
	if def.Interaction == models.InteractionGate {
		if current == 0 {
			return 1, true
		}
		return 0, true
	}

	modes := def.ModesCount
	if modes <= 1 {
		return current, false
	}

	switch def.Interaction {
	case models.InteractionDice, models.InteractionBottle:
		return 1 + intn(modes-1), true
	}

	next := (current + 1) % modes
	if next < 0 {
		next += modes
	}
	return next, true
}

// RequiresRights reports whether using the interaction type needs room rights
func RequiresRights(t models.InteractionType) bool {
	switch t {
	case models.InteractionGate, models.InteractionTeleport, models.InteractionVendingMachine,
		models.InteractionDice, models.InteractionBottle:
		return true
	}
	return false
}

// canUseLocked applies the permission gate for using a floor item
func (r *Room) canUseLocked(userID int64, item *models.FloorItem) bool {
	if !RequiresRights(item.Definition.Interaction) || r.hasRightsLocked(userID) {
		return true
	}
	occ, ok := r.occupants[userID]
	if !ok {
		return false
	}
	anchor := models.Point{X: item.X, Y: item.Y}
	return occ.avatar.Position().Distance(anchor) <= useDistance
}
