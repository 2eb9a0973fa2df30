package ai

// StateKey identifies a behavior state of an agent.
type StateKey int32

const (
	// StateIdle - standing still, waiting for a command or a route
	StateIdle StateKey = iota
	// StatePatrol - walking the route waypoints
	StatePatrol
	// StateChase - pursuing a visible hostile
	StateChase
	// StateFollow - walking to a destination
	StateFollow
)

// String returns human-readable state name
func (k StateKey) String() string {
	switch k {
	case StateIdle:
		return "IDLE"
	case StatePatrol:
		return "PATROL"
	case StateChase:
		return "CHASE"
	case StateFollow:
		return "FOLLOW"
	default:
		return "UNKNOWN"
	}
}
