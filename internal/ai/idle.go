package ai

import (
	"time"

	"github.com/udisondev/navsim/internal/fsm"
)

// idleState stands still. With PatrolOnIdle it resumes the route after IdleDwell.
type idleState struct {
	fsm.Base
	a         *Agent
	enteredAt time.Duration
}

func (s *idleState) Enter() {
	s.a.stopMoving()
	s.a.cancelPath()
	s.enteredAt = s.a.now()
}

func (s *idleState) Execute() {
	a := s.a
	if !a.settings().PatrolOnIdle || !a.hasRoute() {
		return
	}
	if a.now()-s.enteredAt < a.settings().IdleDwell {
		return
	}
	a.machine.MustSetState(StatePatrol)
}
