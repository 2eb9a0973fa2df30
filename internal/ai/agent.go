package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/navsim/internal/fsm"
	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
	"github.com/udisondev/navsim/internal/world"
)

// ErrNoRoute is returned by StartPatrol for an agent without waypoints.
var ErrNoRoute = errors.New("agent has no patrol route")

// Env holds the services shared by every agent of a simulation.
type Env struct {
	Planner   *geo.Planner
	Index     *world.Index
	Mover     Mover
	Sight     geo.Raycaster // nil means nothing blocks sight
	SightMask geo.Mask
	Clock     Clock
	Settings  Settings
}

// AgentOptions describes one agent at spawn time.
type AgentOptions struct {
	Name     string
	Faction  model.Faction
	Position geo.Point3D
	Route    *model.Route

	// OnEngage fires when a chase closes within the engage distance.
	OnEngage func(a *Agent, target world.Occupant)
}

// Agent is a simulated walker driven by a behavior state machine.
// It implements Controller, world.Occupant and tween.Transform.
type Agent struct {
	id      uint32
	name    string
	faction model.Faction
	pos     geo.Point3D

	env      *Env
	machine  *fsm.Machine[StateKey]
	route    *model.Route
	onEngage func(a *Agent, target world.Occupant)

	destination    geo.Point3D
	hasDestination bool
	target         world.Occupant

	// movement
	queue    PathQueue
	move     MoveHandle
	onArrive func()

	// planning
	search *geo.Search
	onPath func(geo.Result)
}

// NewAgent creates an agent with the four behavior states.
// The agent does nothing until Start.
func NewAgent(id uint32, env *Env, opts AgentOptions) *Agent {
	a := &Agent{
		id:       id,
		name:     opts.Name,
		faction:  opts.Faction,
		pos:      opts.Position,
		env:      env,
		route:    opts.Route,
		onEngage: opts.OnEngage,
	}
	if a.name == "" {
		a.name = fmt.Sprintf("agent-%d", id)
	}

	m := fsm.New[StateKey](a.name)
	m.MustAdd(StateIdle, &idleState{a: a})
	m.MustAdd(StatePatrol, &patrolState{a: a})
	m.MustAdd(StateChase, &chaseState{a: a})
	m.MustAdd(StateFollow, &followState{a: a})
	// a walker heading somewhere never breaks off into a chase
	m.Allow(StateFollow, StateIdle, StatePatrol)
	m.OnTransition(func(from, to StateKey) {
		if world.IsDebugEnabled() {
			slog.Debug("agent state changed",
				"agent", a.name,
				"objectID", a.id,
				"from", from,
				"to", to)
		}
	})
	a.machine = m
	return a
}

// ObjectID returns the agent ID.
func (a *Agent) ObjectID() uint32 { return a.id }

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Faction returns the agent faction.
func (a *Agent) Faction() model.Faction { return a.faction }

// Position returns the current world position.
func (a *Agent) Position() geo.Point3D { return a.pos }

// SetPosition moves the agent instantly. The index bucket is refreshed in LateUpdate.
func (a *Agent) SetPosition(p geo.Point3D) { a.pos = p }

// Route returns the patrol route (may be nil).
func (a *Agent) Route() *model.Route { return a.route }

// SetRoute replaces the patrol route. A patrolling agent restarts on the new route.
func (a *Agent) SetRoute(r *model.Route) {
	a.route = r
	if a.machine.Is(StatePatrol) {
		a.machine.MustSetState(StatePatrol)
	}
}

// Target returns the occupant being chased, if any.
func (a *Agent) Target() world.Occupant { return a.target }

// State returns the active behavior state.
func (a *Agent) State() StateKey {
	k, _ := a.machine.Current()
	return k
}

// Start registers the agent in the spatial index and enters Idle.
func (a *Agent) Start() {
	a.env.Index.Register(a)
	a.machine.MustSetState(StateIdle)
	slog.Debug("agent started",
		"agent", a.name,
		"objectID", a.id,
		"faction", a.faction,
		"pos", a.pos)
}

// Stop exits the active state and leaves the spatial index.
func (a *Agent) Stop() {
	a.machine.Stop()
	a.cancelPath()
	a.env.Index.Unregister(a)
	slog.Debug("agent stopped", "agent", a.name, "objectID", a.id)
}

// GoTo walks to p, replacing the current behavior.
func (a *Agent) GoTo(p geo.Point3D) error {
	a.destination = p
	a.hasDestination = true
	if err := a.machine.SetState(StateFollow); err != nil {
		return fmt.Errorf("sending %s to %v: %w", a.name, p, err)
	}
	return nil
}

// StartPatrol begins walking the route.
func (a *Agent) StartPatrol() error {
	if !a.hasRoute() {
		return fmt.Errorf("starting patrol of %s: %w", a.name, ErrNoRoute)
	}
	return a.machine.SetState(StatePatrol)
}

// ChaseTarget starts chasing o.
func (a *Agent) ChaseTarget(o world.Occupant) error {
	prev := a.target
	a.target = o
	if err := a.machine.SetState(StateChase); err != nil {
		a.target = prev
		return fmt.Errorf("chasing %d with %s: %w", o.ObjectID(), a.name, err)
	}
	return nil
}

// Halt returns to Idle.
func (a *Agent) Halt() {
	a.machine.MustSetState(StateIdle)
}

// Update pumps the pending path search, then runs the active state.
func (a *Agent) Update(_ time.Duration) {
	a.pumpSearch()
	a.machine.Update()
}

// FixedUpdate runs the fixed step of the active state.
func (a *Agent) FixedUpdate(_ time.Duration) {
	a.machine.FixedUpdate()
}

// LateUpdate refreshes the index bucket after movement.
func (a *Agent) LateUpdate(_ time.Duration) {
	a.env.Index.UpdatePosition(a)
}

func (a *Agent) now() time.Duration {
	return a.env.Clock.Now()
}

func (a *Agent) settings() *Settings {
	return &a.env.Settings
}

func (a *Agent) hasRoute() bool {
	return a.route != nil && a.route.First != nil
}

// requestPath starts a search from the current position to to. The previous
// search of this agent is superseded and its callback never fires.
func (a *Agent) requestPath(to geo.Point3D, cb func(geo.Result)) {
	a.search = a.env.Planner.Request(a.id, a.pos, to)
	a.onPath = cb
}

func (a *Agent) cancelPath() {
	if a.search == nil {
		return
	}
	a.env.Planner.Cancel(a.id)
	a.search = nil
	a.onPath = nil
}

func (a *Agent) searching() bool {
	return a.search != nil
}

func (a *Agent) pumpSearch() {
	if a.search == nil {
		return
	}
	res := a.search.Advance(a.settings().SearchBudget)
	if !res.Status.Terminal() {
		return
	}

	cb := a.onPath
	a.search, a.onPath = nil, nil
	if cb != nil {
		cb(res)
	}
}

func (a *Agent) engage(target world.Occupant) {
	slog.Info("target engaged",
		"agent", a.name,
		"objectID", a.id,
		"target", target.ObjectID(),
		"distance", a.pos.PlanarDistance(target.Position()))
	if a.onEngage != nil {
		a.onEngage(a, target)
	}
}
