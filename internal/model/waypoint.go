package model

import "github.com/udisondev/navsim/internal/geo"

// Waypoint is one node of an authored patrol chain.
// Next links to the following waypoint, nil at the end of the chain.
type Waypoint struct {
	Position geo.Point3D
	Next     *Waypoint
}

// Route is a named waypoint chain with a patrol mode.
type Route struct {
	Name  string
	Mode  PatrolMode
	First *Waypoint
}

// NewRoute links points into a chain in the given order.
func NewRoute(name string, mode PatrolMode, points []geo.Point3D) *Route {
	r := &Route{Name: name, Mode: mode}
	var prev *Waypoint
	for _, p := range points {
		wp := &Waypoint{Position: p}
		if prev == nil {
			r.First = wp
		} else {
			prev.Next = wp
		}
		prev = wp
	}
	return r
}

// Points flattens the chain into positions. The walk stops at the end of
// the chain or at the first waypoint already visited, so an authored cycle
// yields each waypoint once.
func (r *Route) Points() []geo.Point3D {
	if r == nil {
		return nil
	}
	var points []geo.Point3D
	seen := make(map[*Waypoint]struct{})
	for wp := r.First; wp != nil; wp = wp.Next {
		if _, ok := seen[wp]; ok {
			break
		}
		seen[wp] = struct{}{}
		points = append(points, wp.Position)
	}
	return points
}

// Len returns the number of distinct waypoints.
func (r *Route) Len() int {
	return len(r.Points())
}
