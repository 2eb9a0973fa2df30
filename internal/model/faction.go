package model

// Faction decides who chases whom.
type Faction int32

const (
	// FactionNeutral - ignored by everyone
	FactionNeutral Faction = iota
	// FactionGuard - patrols and chases intruders
	FactionGuard
	// FactionIntruder - chased by guards
	FactionIntruder
)

// String returns human-readable faction name
func (f Faction) String() string {
	switch f {
	case FactionNeutral:
		return "NEUTRAL"
	case FactionGuard:
		return "GUARD"
	case FactionIntruder:
		return "INTRUDER"
	default:
		return "UNKNOWN"
	}
}

// Hostile reports whether f chases o.
func (f Faction) Hostile(o Faction) bool {
	return f == FactionGuard && o == FactionIntruder
}
