package ai

import (
	"github.com/udisondev/navsim/internal/geo"
)

// arriveEpsilon is the distance below which a node counts as reached.
const arriveEpsilon = 1e-6

// walk consumes path node by node and calls arrived when the queue empties.
// A leading node equal to the agent's own cell is skipped.
func (a *Agent) walk(path geo.Path, arrived func()) {
	a.stopMoving()
	if len(path) > 1 && a.env.Planner.Grid().CellAt(a.pos) == path[0] {
		path = path[1:]
	}
	a.queue.Reset(path)
	a.onArrive = arrived
	a.stepNext()
}

// stepNext issues the move to the next node. The height of the agent is
// kept; only the planar position follows the path.
func (a *Agent) stepNext() {
	s := a.settings()
	for {
		node, ok := a.queue.Pop()
		if !ok {
			a.move = nil
			fn := a.onArrive
			a.onArrive = nil
			if fn != nil {
				fn()
			}
			return
		}

		to := node.WithZ(a.pos.Z)
		dist := a.pos.Distance(to)
		if dist < arriveEpsilon {
			continue
		}
		a.move = a.env.Mover.Move(a, to, s.stepDuration(dist), s.Ease, a.stepNext)
		return
	}
}

// stopMoving cancels the in-flight move without firing its completion.
func (a *Agent) stopMoving() {
	if a.move != nil {
		a.move.Cancel()
		a.move = nil
	}
	a.queue.Clear()
	a.onArrive = nil
}

func (a *Agent) moving() bool {
	return a.move != nil && a.move.Active()
}
