package ai

import (
	"log/slog"

	"github.com/udisondev/navsim/internal/fsm"
	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
	"github.com/udisondev/navsim/internal/world"
)

// patrolState walks the route waypoints and watches for hostiles.
//
// The waypoint cursor survives Exit, so a patrol interrupted by a chase
// resumes at the waypoint it was heading to.
type patrolState struct {
	fsm.Base
	a *Agent

	points   []geo.Point3D
	mode     model.PatrolMode
	route    *model.Route
	index    int
	forward  bool
	failures int
	holding  bool // single waypoint reached

	candidate  world.Occupant
	sightTicks int
}

func (s *patrolState) Enter() {
	a := s.a
	if a.route != s.route {
		s.route = a.route
		s.index = 0
		s.forward = true
	}
	s.points = a.route.Points()
	s.mode = model.PatrolLoop
	if a.route != nil {
		s.mode = a.route.Mode
	}
	if len(s.points) == 0 {
		a.machine.MustSetState(StateIdle)
		return
	}
	if s.index >= len(s.points) {
		s.index = 0
	}
	s.failures = 0
	s.holding = false
	s.candidate = nil
	s.sightTicks = 0
	s.request()
}

func (s *patrolState) request() {
	s.a.requestPath(s.points[s.index], s.onPath)
}

func (s *patrolState) onPath(res geo.Result) {
	a := s.a
	switch res.Status {
	case geo.StatusFound:
		s.failures = 0
		a.walk(res.Path, s.arrived)
	case geo.StatusCancelled:
		s.request()
	default:
		s.failures++
		slog.Debug("patrol waypoint unreachable",
			"agent", a.name,
			"objectID", a.id,
			"waypoint", s.index,
			"failures", s.failures)
		if s.failures >= len(s.points) {
			slog.Warn("patrol route unreachable, going idle",
				"agent", a.name,
				"route", s.route.Name)
			a.machine.MustSetState(StateIdle)
			return
		}
		s.advance()
		s.request()
	}
}

func (s *patrolState) arrived() {
	if len(s.points) == 1 {
		s.holding = true
		return
	}
	s.advance()
	s.request()
}

// advance moves the cursor: ping-pong reverses at either end, loop wraps.
func (s *patrolState) advance() {
	n := len(s.points)
	if n < 2 {
		return
	}
	if s.mode == model.PatrolPingPong {
		if s.forward && s.index == n-1 {
			s.forward = false
		} else if !s.forward && s.index == 0 {
			s.forward = true
		}
		if s.forward {
			s.index++
		} else {
			s.index--
		}
		return
	}
	s.index = (s.index + 1) % n
}

func (s *patrolState) Execute() {
	a := s.a
	target := a.scanForHostile()
	if target == nil {
		s.candidate = nil
		s.sightTicks = 0
		return
	}
	if target != s.candidate {
		s.candidate = target
		s.sightTicks = 0
	}
	s.sightTicks++
	if s.sightTicks < a.settings().SightConfirmTicks {
		return
	}

	slog.Debug("hostile spotted",
		"agent", a.name,
		"objectID", a.id,
		"target", target.ObjectID())
	a.target = target
	a.machine.MustSetState(StateChase)
}

func (s *patrolState) Exit() {
	s.a.stopMoving()
	s.a.cancelPath()
	s.candidate = nil
	s.sightTicks = 0
}
