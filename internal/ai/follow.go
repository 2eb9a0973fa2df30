package ai

import (
	"log/slog"

	"github.com/udisondev/navsim/internal/fsm"
	"github.com/udisondev/navsim/internal/geo"
)

// followState walks to the agent's destination, then goes Idle.
type followState struct {
	fsm.Base
	a *Agent
}

func (s *followState) Enter() {
	a := s.a
	if !a.hasDestination {
		a.machine.MustSetState(StateIdle)
		return
	}
	s.request()
}

func (s *followState) request() {
	a := s.a
	a.requestPath(a.destination, s.onPath)
}

func (s *followState) onPath(res geo.Result) {
	a := s.a
	switch res.Status {
	case geo.StatusFound:
		a.walk(res.Path, s.arrived)
	case geo.StatusCancelled:
		// grid rebuilt under the search
		s.request()
	default:
		slog.Debug("destination unreachable",
			"agent", a.name,
			"objectID", a.id,
			"destination", a.destination)
		a.hasDestination = false
		a.machine.MustSetState(StateIdle)
	}
}

func (s *followState) arrived() {
	s.a.hasDestination = false
	s.a.machine.MustSetState(StateIdle)
}

func (s *followState) Exit() {
	s.a.stopMoving()
	s.a.cancelPath()
}
