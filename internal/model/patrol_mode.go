package model

import "fmt"

// PatrolMode controls what a patrol does at the end of its route.
type PatrolMode int32

const (
	// PatrolLoop - wrap from the last waypoint back to the first
	PatrolLoop PatrolMode = iota
	// PatrolPingPong - reverse direction at either end
	PatrolPingPong
)

// String returns human-readable patrol mode name
func (m PatrolMode) String() string {
	switch m {
	case PatrolLoop:
		return "loop"
	case PatrolPingPong:
		return "pingpong"
	default:
		return "unknown"
	}
}

// ParsePatrolMode parses a mode name as written in scenarios and the database.
// Empty string means PatrolLoop.
func ParsePatrolMode(s string) (PatrolMode, error) {
	switch s {
	case "", "loop":
		return PatrolLoop, nil
	case "pingpong", "ping_pong":
		return PatrolPingPong, nil
	default:
		return PatrolLoop, fmt.Errorf("unknown patrol mode %q", s)
	}
}
