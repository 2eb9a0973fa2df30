package ai

import (
	"log/slog"
	"time"

	"github.com/udisondev/navsim/internal/fsm"
	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/world"
)

// chaseState pursues the agent's target until sight is lost for longer than
// SightLossGrace.
type chaseState struct {
	fsm.Base
	a *Agent

	losing     bool
	lostAt     time.Duration
	engaged    bool
	lastRepath time.Duration
	targetCell *geo.Cell
}

func (s *chaseState) Enter() {
	a := s.a
	s.losing = false
	s.engaged = false
	if a.target == nil || !a.tracked(a.target) {
		s.giveUp()
		return
	}
	s.repath()
}

func (s *chaseState) repath() {
	a := s.a
	tp := a.target.Position()
	s.targetCell = a.env.Planner.Grid().CellAt(tp)
	s.lastRepath = a.now()
	a.requestPath(tp, s.onPath)
}

func (s *chaseState) onPath(res geo.Result) {
	if res.Status == geo.StatusFound {
		s.a.walk(res.Path, nil)
	}
	// otherwise the next repath interval retries
}

func (s *chaseState) Execute() {
	a := s.a
	target := a.target
	if target == nil || !a.tracked(target) {
		s.giveUp()
		return
	}

	now := a.now()
	if a.inLineOfSight(target) {
		if s.losing && world.IsDebugEnabled() {
			slog.Debug("sight regained", "agent", a.name, "target", target.ObjectID())
		}
		s.losing = false
	} else {
		if !s.losing {
			s.losing = true
			s.lostAt = now
		} else if now-s.lostAt >= a.settings().SightLossGrace {
			slog.Debug("target lost",
				"agent", a.name,
				"objectID", a.id,
				"target", target.ObjectID())
			s.giveUp()
			return
		}
	}

	tp := target.Position()
	if !s.losing && a.pos.PlanarDistance(tp) <= a.settings().EngageDistance {
		if !s.engaged {
			s.engaged = true
			a.stopMoving()
			a.cancelPath()
			a.engage(target)
		}
		return
	}
	if s.engaged {
		s.engaged = false
		s.repath()
		return
	}

	// repath also runs while sight is lost, until the grace expires
	if now-s.lastRepath < a.settings().RepathInterval {
		return
	}
	idle := !a.moving() && !a.searching()
	if idle || a.env.Planner.Grid().CellAt(tp) != s.targetCell {
		s.repath()
	}
}

// giveUp returns to the route, or to Idle without one.
func (s *chaseState) giveUp() {
	a := s.a
	a.target = nil
	if a.hasRoute() {
		a.machine.MustSetState(StatePatrol)
		return
	}
	a.machine.MustSetState(StateIdle)
}

func (s *chaseState) Exit() {
	s.a.stopMoving()
	s.a.cancelPath()
	s.targetCell = nil
}
