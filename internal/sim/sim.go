// Package sim assembles a running simulation from config and a scenario:
// obstacle host, walkability grid, planner, spatial index, tick manager and
// agents.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/navsim/internal/ai"
	"github.com/udisondev/navsim/internal/config"
	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/scenario"
	"github.com/udisondev/navsim/internal/tween"
	"github.com/udisondev/navsim/internal/world"
)

// Option configures a Sim.
type Option func(*Sim)

// WithRouteLoader merges stored routes into every loaded scenario.
func WithRouteLoader(l scenario.RouteLoader) Option {
	return func(s *Sim) {
		s.routes = l
	}
}

// Sim owns every runtime component. After Run starts, the world is only
// touched from the tick goroutine; Reload posts its work there.
type Sim struct {
	cfg    config.Simulation
	routes scenario.RouteLoader

	host    *hostRef
	grid    *geo.Grid
	planner *geo.Planner
	index   *world.Index
	tweener *tween.Tweener
	manager *ai.TickManager
	env     *ai.Env
	ids     *world.ObjectIDGenerator

	scenario    *scenario.Scenario
	agents      map[string]*ai.Agent
	engagements int
}

// New builds the world described by sc. Agents are spawned by SpawnAll.
func New(cfg config.Simulation, sc *scenario.Scenario, opts ...Option) (*Sim, error) {
	s := &Sim{
		cfg:    cfg,
		agents: make(map[string]*ai.Agent),
		ids:    world.NewObjectIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}

	obstacles, err := buildObstacles(cfg.Host.Backend, sc)
	if err != nil {
		return nil, err
	}
	s.host = &hostRef{current: obstacles}

	s.grid = geo.NewGrid(s.host)
	if err := s.grid.Build(geo.GridOptions{
		Origin:        geo.Point3D{X: cfg.Grid.OriginX, Y: cfg.Grid.OriginY},
		Width:         cfg.Grid.Width,
		Depth:         cfg.Grid.Depth,
		CellRadius:    cfg.Grid.CellRadius,
		PenaltyFactor: cfg.Grid.PenaltyFactor,
		Mask:          geo.Mask(cfg.Grid.Mask),
	}); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	var plannerOpts []geo.PlannerOption
	if cfg.Planner.Smooth {
		plannerOpts = append(plannerOpts,
			geo.WithSmoother(geo.NewSmoother(s.host, geo.Mask(cfg.Grid.Mask))))
	}
	s.planner = geo.NewPlanner(s.grid, plannerOpts...)

	s.index = world.NewIndex(geo.Point3D{X: cfg.Spatial.OriginX, Y: cfg.Spatial.OriginY}, cfg.Spatial.CellSize)
	s.tweener = tween.NewTweener()
	mover := ai.NewTweenMover(s.tweener)

	s.manager = ai.NewTickManager(cfg.Tick.Frame, cfg.Tick.Fixed)
	s.manager.AddSystem(mover)

	s.env = &ai.Env{
		Planner:   s.planner,
		Index:     s.index,
		Mover:     mover,
		Sight:     s.host,
		SightMask: geo.Mask(cfg.Behavior.SightMask),
		Clock:     s.manager,
		Settings:  SettingsFrom(cfg),
	}
	s.scenario = sc

	slog.Info("simulation created",
		"backend", cfg.Host.Backend,
		"obstacles", obstacles.Len(),
		"cells", s.grid.Len(),
		"routes", len(sc.Routes),
		"spawns", len(sc.Spawns))
	return s, nil
}

// SettingsFrom converts the behavior section of cfg to agent settings.
func SettingsFrom(cfg config.Simulation) ai.Settings {
	b := cfg.Behavior
	ease, _ := tween.ByName(b.Ease)
	return ai.Settings{
		SearchBudget:      cfg.Planner.Budget,
		MoveSpeed:         b.MoveSpeed,
		MinStep:           b.MinStep,
		MaxStep:           b.MaxStep,
		Ease:              ease,
		VisionRadius:      b.VisionRadius,
		EngageDistance:    b.EngageDistance,
		SightLossGrace:    b.SightLossGrace,
		RepathInterval:    b.RepathInterval,
		SightConfirmTicks: b.SightConfirmTicks,
		PatrolOnIdle:      b.PatrolOnIdle,
		IdleDwell:         b.IdleDwell,
	}.Normalize()
}

func buildObstacles(backend string, sc *scenario.Scenario) (Obstacles, error) {
	obstacles, err := NewObstacles(backend)
	if err != nil {
		return nil, fmt.Errorf("creating obstacle host: %w", err)
	}
	if err := sc.Populate(obstacles); err != nil {
		return nil, fmt.Errorf("filling obstacle host: %w", err)
	}
	return obstacles, nil
}

// Manager returns the tick manager.
func (s *Sim) Manager() *ai.TickManager { return s.manager }

// Grid returns the walkability grid.
func (s *Sim) Grid() *geo.Grid { return s.grid }

// Index returns the spatial index.
func (s *Sim) Index() *world.Index { return s.index }

// Engagements returns how many chases closed within the engage distance.
func (s *Sim) Engagements() int { return s.engagements }

// Agent returns the agent spawned under name.
func (s *Sim) Agent(name string) (*ai.Agent, bool) {
	a, ok := s.agents[name]
	return a, ok
}

// AgentNames returns spawned agent names in sorted order.
func (s *Sim) AgentNames() []string {
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SpawnAll spawns every agent of the scenario. A failed spawn is logged
// and the rest still spawn; the first error is returned.
func (s *Sim) SpawnAll() error {
	count := 0
	var firstErr error

	for _, sp := range s.scenario.Spawns {
		if _, err := s.Spawn(sp); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn agent", "agent", sp.Name, "error", err)
			continue
		}
		count++
	}

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return fmt.Errorf("spawning all agents: %w", firstErr)
	}

	slog.Info("all agents spawned", "count", count)
	return nil
}

// Spawn creates an agent, registers it and starts its initial behavior.
// Positions inside obstacles are moved to the nearest walkable cell.
func (s *Sim) Spawn(sp scenario.Spawn) (*ai.Agent, error) {
	if _, ok := s.agents[sp.Name]; ok {
		return nil, fmt.Errorf("spawning %q: already spawned", sp.Name)
	}

	pos := sp.Position
	if cell := s.grid.CellAt(pos); !cell.Walkable {
		nearest := s.grid.NearestWalkable(pos)
		if nearest == nil {
			return nil, fmt.Errorf("spawning %q: grid has no walkable cell", sp.Name)
		}
		slog.Warn("spawn moved out of obstacle", "agent", sp.Name, "from", pos, "to", nearest.World)
		pos = nearest.World
	}

	opts := ai.AgentOptions{
		Name:     sp.Name,
		Faction:  sp.Role.Faction(),
		Position: pos,
		OnEngage: s.onEngage,
	}
	if sp.Route != "" {
		route, ok := s.scenario.Route(sp.Route)
		if !ok {
			return nil, fmt.Errorf("spawning %q: %w %q", sp.Name, scenario.ErrUnknownRoute, sp.Route)
		}
		opts.Route = route
	}

	a := ai.NewAgent(s.ids.NextAgentID(), s.env, opts)
	if err := s.manager.Register(a); err != nil {
		return nil, fmt.Errorf("spawning %q: %w", sp.Name, err)
	}
	s.agents[sp.Name] = a

	switch {
	case sp.HasDestination:
		if err := a.GoTo(sp.Destination); err != nil {
			return nil, err
		}
	case opts.Route != nil:
		if err := a.StartPatrol(); err != nil {
			return nil, err
		}
	}

	slog.Info("agent spawned",
		"agent", sp.Name,
		"objectID", a.ObjectID(),
		"role", sp.Role,
		"pos", pos,
		"state", a.State())
	return a, nil
}

// Despawn stops and removes the agent spawned under name.
func (s *Sim) Despawn(name string) bool {
	a, ok := s.agents[name]
	if !ok {
		return false
	}
	s.manager.Unregister(a.ObjectID())
	delete(s.agents, name)
	slog.Info("agent despawned", "agent", name, "objectID", a.ObjectID())
	return true
}

func (s *Sim) onEngage(a *ai.Agent, target world.Occupant) {
	s.engagements++
	if t, ok := target.(*ai.Agent); ok && t.State() != ai.StateIdle {
		t.Halt()
	}
}

// LoadScenario reads the scenario at path and, when loader is not nil,
// merges its routes over the scenario routes.
func LoadScenario(ctx context.Context, path string, loader scenario.RouteLoader) (*scenario.Scenario, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		return sc, nil
	}
	if _, err := sc.MergeRoutes(ctx, loader); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Load is LoadScenario with the route loader of s. It does not touch the
// running world and may be called from any goroutine.
func (s *Sim) Load(ctx context.Context, path string) (*scenario.Scenario, error) {
	return LoadScenario(ctx, path, s.routes)
}

// Reload loads path off the tick goroutine and posts Apply.
func (s *Sim) Reload(ctx context.Context, path string) {
	sc, err := s.Load(ctx, path)
	if err != nil {
		slog.Error("scenario reload failed", "path", path, "error", err)
		return
	}
	s.manager.Post(func() {
		if err := s.Apply(sc); err != nil {
			slog.Error("applying scenario failed", "path", path, "error", err)
		}
	})
}

// Apply replaces obstacles, routes and spawns with those of sc and rebuilds
// the grid. In-flight searches end as Cancelled and agents re-plan.
// Agents present in both scenarios keep their position and state.
// Must run on the tick goroutine.
func (s *Sim) Apply(sc *scenario.Scenario) error {
	start := time.Now()

	obstacles, err := buildObstacles(s.cfg.Host.Backend, sc)
	if err != nil {
		return err
	}
	s.host.current = obstacles
	if err := s.grid.Rebuild(); err != nil {
		return fmt.Errorf("rebuilding grid: %w", err)
	}
	s.scenario = sc

	keep := make(map[string]scenario.Spawn, len(sc.Spawns))
	for _, sp := range sc.Spawns {
		keep[sp.Name] = sp
	}
	for _, name := range s.AgentNames() {
		if _, ok := keep[name]; !ok {
			s.Despawn(name)
		}
	}

	var errs []error
	for _, sp := range sc.Spawns {
		a, ok := s.agents[sp.Name]
		if !ok {
			if _, err := s.Spawn(sp); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if sp.Route == "" {
			continue
		}
		if route, ok := sc.Route(sp.Route); ok {
			a.SetRoute(route)
		}
	}

	slog.Info("scenario applied",
		"obstacles", obstacles.Len(),
		"agents", len(s.agents),
		"generation", s.grid.Generation(),
		"duration", time.Since(start))
	return errors.Join(errs...)
}

// Run drives the tick manager until ctx is cancelled.
func (s *Sim) Run(ctx context.Context) error {
	err := s.manager.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
