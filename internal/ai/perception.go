package ai

import (
	"math"

	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
	"github.com/udisondev/navsim/internal/world"
)

// factioned is implemented by occupants that can be hostile.
type factioned interface {
	Faction() model.Faction
}

// canSee reports whether o is within vision radius and not occluded.
func (a *Agent) canSee(o world.Occupant) bool {
	p := o.Position()
	if a.pos.PlanarDistance(p) > a.settings().VisionRadius {
		return false
	}
	if a.env.Sight == nil {
		return true
	}
	return geo.HasLineOfSight(a.env.Sight, a.pos, p, a.env.SightMask)
}

// inLineOfSight ignores the vision radius.
func (a *Agent) inLineOfSight(o world.Occupant) bool {
	if a.env.Sight == nil {
		return true
	}
	return geo.HasLineOfSight(a.env.Sight, a.pos, o.Position(), a.env.SightMask)
}

// tracked reports whether o is still registered in the index.
func (a *Agent) tracked(o world.Occupant) bool {
	_, ok := a.env.Index.BucketOf(o)
	return ok
}

// scanForHostile returns the closest visible hostile occupant, or nil.
func (a *Agent) scanForHostile() world.Occupant {
	vision := a.settings().VisionRadius
	cells := int(math.Ceil(vision / a.env.Index.CellSize()))

	var best world.Occupant
	bestDist := math.Inf(1)
	a.env.Index.QueryRadiusFunc(a.pos, cells, func(o world.Occupant) bool {
		if o.ObjectID() == a.id {
			return true
		}
		f, ok := o.(factioned)
		if !ok || !a.faction.Hostile(f.Faction()) {
			return true
		}
		d := a.pos.PlanarDistance(o.Position())
		if d >= bestDist || !a.canSee(o) {
			return true
		}
		best, bestDist = o, d
		return true
	})
	return best
}
