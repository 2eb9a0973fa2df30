// Package scenario loads obstacles, patrol routes and agent spawns from a
// GeoJSON FeatureCollection.
//
// Feature kinds:
//   - Polygon / MultiPolygon: obstacle, property "layer" (bit mask, default 1)
//   - LineString with "route": patrol route, property "mode" (loop|pingpong)
//   - Point with "agent": spawn, properties "role", "route", "destination" [x, y]
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/model"
)

// DefaultLayer is the obstacle layer of polygons without a "layer" property.
const DefaultLayer geo.Mask = 1

// ErrUnknownRoute is returned by Validate for a spawn naming a missing route.
var ErrUnknownRoute = errors.New("unknown route")

// Role decides the faction and starting behavior of a spawned agent.
type Role string

const (
	RolePatrol   Role = "patrol"
	RoleWalker   Role = "walker"
	RoleIntruder Role = "intruder"
)

// Faction maps a role to the faction used by perception.
func (r Role) Faction() model.Faction {
	switch r {
	case RolePatrol:
		return model.FactionGuard
	case RoleIntruder:
		return model.FactionIntruder
	default:
		return model.FactionNeutral
	}
}

func parseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatrol, RoleWalker, RoleIntruder:
		return Role(s), nil
	case "":
		return RoleWalker, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Obstacle is one static polygon.
type Obstacle struct {
	Polygon orb.Polygon
	Layer   geo.Mask
}

// Spawn describes one agent.
type Spawn struct {
	Name           string
	Role           Role
	Position       geo.Point3D
	Route          string // empty when the agent has none
	Destination    geo.Point3D
	HasDestination bool
}

// Scenario is the authored content of one file.
type Scenario struct {
	Obstacles []Obstacle
	Routes    map[string]*model.Route
	Spawns    []Spawn
}

// Sink receives obstacles. Implemented by the physics and geometry hosts.
type Sink interface {
	AddPolygon(poly orb.Polygon, layer geo.Mask) error
}

// RouteLoader supplies routes stored outside the scenario file.
type RouteLoader interface {
	LoadAll(ctx context.Context) ([]*model.Route, error)
}

// Load reads and parses the file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	slog.Info("scenario loaded",
		"path", path,
		"obstacles", len(sc.Obstacles),
		"routes", len(sc.Routes),
		"spawns", len(sc.Spawns))
	return sc, nil
}

// Parse decodes a GeoJSON FeatureCollection. Features of unsupported
// geometry types are skipped.
func Parse(data []byte) (*Scenario, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding feature collection: %w", err)
	}

	sc := &Scenario{Routes: make(map[string]*model.Route)}
	for i, f := range fc.Features {
		if err := sc.addFeature(f); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Scenario) addFeature(f *geojson.Feature) error {
	props := f.Properties

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		layer, err := parseLayer(props)
		if err != nil {
			return err
		}
		sc.Obstacles = append(sc.Obstacles, Obstacle{Polygon: g, Layer: layer})

	case orb.MultiPolygon:
		layer, err := parseLayer(props)
		if err != nil {
			return err
		}
		for _, poly := range g {
			sc.Obstacles = append(sc.Obstacles, Obstacle{Polygon: poly, Layer: layer})
		}

	case orb.LineString:
		name := props.MustString("route", "")
		if name == "" {
			slog.Debug("skipping line string without route name")
			return nil
		}
		if _, ok := sc.Routes[name]; ok {
			return fmt.Errorf("route %q defined twice", name)
		}
		mode, err := model.ParsePatrolMode(props.MustString("mode", ""))
		if err != nil {
			return fmt.Errorf("route %q: %w", name, err)
		}
		if len(g) == 0 {
			return fmt.Errorf("route %q has no points", name)
		}
		points := make([]geo.Point3D, len(g))
		for i, p := range g {
			points[i] = toPoint(p)
		}
		sc.Routes[name] = model.NewRoute(name, mode, points)

	case orb.Point:
		name := props.MustString("agent", "")
		if name == "" {
			slog.Debug("skipping point without agent name")
			return nil
		}
		role, err := parseRole(props.MustString("role", ""))
		if err != nil {
			return fmt.Errorf("agent %q: %w", name, err)
		}
		spawn := Spawn{
			Name:     name,
			Role:     role,
			Position: toPoint(g),
			Route:    props.MustString("route", ""),
		}
		if raw, ok := props["destination"]; ok {
			dest, err := parseXY(raw)
			if err != nil {
				return fmt.Errorf("agent %q destination: %w", name, err)
			}
			spawn.Destination = dest
			spawn.HasDestination = true
		}
		sc.Spawns = append(sc.Spawns, spawn)

	case nil:
		slog.Debug("skipping feature without geometry")

	default:
		slog.Debug("skipping unsupported geometry", "type", f.Geometry.GeoJSONType())
	}
	return nil
}

// Validate checks that every spawn refers to a known route and that names
// are unique.
func (sc *Scenario) Validate() error {
	names := make(map[string]struct{}, len(sc.Spawns))
	for _, s := range sc.Spawns {
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("agent %q defined twice", s.Name)
		}
		names[s.Name] = struct{}{}
		if s.Route == "" {
			continue
		}
		if _, ok := sc.Routes[s.Route]; !ok {
			return fmt.Errorf("agent %q route %q: %w", s.Name, s.Route, ErrUnknownRoute)
		}
	}
	return nil
}

// Populate adds every obstacle to sink.
func (sc *Scenario) Populate(sink Sink) error {
	for i, o := range sc.Obstacles {
		if err := sink.AddPolygon(o.Polygon, o.Layer); err != nil {
			return fmt.Errorf("populating obstacle %d: %w", i, err)
		}
	}
	return nil
}

// Route returns the route with the given name.
func (sc *Scenario) Route(name string) (*model.Route, bool) {
	r, ok := sc.Routes[name]
	return r, ok
}

// RouteNames returns route names in sorted order.
func (sc *Scenario) RouteNames() []string {
	names := make([]string, 0, len(sc.Routes))
	for name := range sc.Routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MergeRoutes loads routes from loader, replacing scenario routes with the
// same name. Returns the number of routes loaded.
func (sc *Scenario) MergeRoutes(ctx context.Context, loader RouteLoader) (int, error) {
	routes, err := loader.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("merging routes: %w", err)
	}
	for _, r := range routes {
		if _, ok := sc.Routes[r.Name]; ok {
			slog.Debug("route replaced from store", "route", r.Name)
		}
		sc.Routes[r.Name] = r
	}
	return len(routes), nil
}

func parseLayer(props geojson.Properties) (geo.Mask, error) {
	layer := props.MustInt("layer", int(DefaultLayer))
	if layer <= 0 {
		return 0, fmt.Errorf("layer %d must be positive", layer)
	}
	return geo.Mask(layer), nil
}

func parseXY(raw any) (geo.Point3D, error) {
	values, ok := raw.([]any)
	if !ok || len(values) < 2 {
		return geo.Point3D{}, fmt.Errorf("want [x, y], got %v", raw)
	}
	x, okX := values[0].(float64)
	y, okY := values[1].(float64)
	if !okX || !okY {
		return geo.Point3D{}, fmt.Errorf("want numeric [x, y], got %v", raw)
	}
	return geo.Point3D{X: x, Y: y}, nil
}

func toPoint(p orb.Point) geo.Point3D {
	return geo.Point3D{X: p[0], Y: p[1]}
}
