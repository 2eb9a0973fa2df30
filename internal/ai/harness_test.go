package ai

import (
	"testing"
	"time"

	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
	"github.com/udisondev/navsim/internal/testutil"
	"github.com/udisondev/navsim/internal/tween"
	"github.com/udisondev/navsim/internal/world"
)

const frame = 100 * time.Millisecond

type harness struct {
	t       *testing.T
	host    *testutil.BlockedCells
	grid    *geo.Grid
	planner *geo.Planner
	index   *world.Index
	mgr     *TickManager
	env     *Env
	ids     *world.ObjectIDGenerator
}

func newHarness(t *testing.T, size int, blocked ...[2]int) *harness {
	t.Helper()

	host := testutil.NewBlockedCells(blocked...)
	grid := testutil.UnitGrid(t, size, host)
	planner := geo.NewPlanner(grid)
	index := world.NewIndex(geo.Point3D{}, 4)
	mover := NewTweenMover(tween.NewTweener())
	mgr := NewTickManager(frame, frame)
	mgr.AddSystem(mover)

	settings := DefaultSettings()
	settings.SearchBudget = geo.Unbounded
	settings.PatrolOnIdle = false

	return &harness{
		t:       t,
		host:    host,
		grid:    grid,
		planner: planner,
		index:   index,
		mgr:     mgr,
		ids:     world.NewObjectIDGenerator(),
		env: &Env{
			Planner:   planner,
			Index:     index,
			Mover:     mover,
			Sight:     host,
			SightMask: geo.MaskAll,
			Clock:     mgr,
			Settings:  settings.Normalize(),
		},
	}
}

func (h *harness) spawn(name string, faction model.Faction, pos geo.Point3D, route *model.Route) *Agent {
	h.t.Helper()
	a := NewAgent(h.ids.NextAgentID(), h.env, AgentOptions{
		Name:     name,
		Faction:  faction,
		Position: pos,
		Route:    route,
	})
	if err := h.mgr.Register(a); err != nil {
		h.t.Fatalf("registering %s: %v", name, err)
	}
	return a
}

func (h *harness) run(frames int) {
	for range frames {
		h.mgr.TickFrame(frame)
		h.mgr.TickFixed(frame)
	}
}

// runUntil ticks until cond holds, failing after limit frames.
func (h *harness) runUntil(limit int, cond func() bool) int {
	h.t.Helper()
	for i := range limit {
		if cond() {
			return i
		}
		h.mgr.TickFrame(frame)
		h.mgr.TickFixed(frame)
	}
	if !cond() {
		h.t.Fatalf("condition not met within %d frames", limit)
	}
	return limit
}

func near(a, b geo.Point3D) bool {
	return a.PlanarDistance(b) < 1e-6
}
