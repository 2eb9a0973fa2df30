package ai

import (
	"time"

	"github.com/udisondev/navsim/internal/tween"
)

// Settings tunes agent behavior. Zero durations and distances are replaced
// by defaults in Normalize.
type Settings struct {
	SearchBudget      time.Duration // per-tick planner budget for one agent
	MoveSpeed         float64       // world units per second
	MinStep           time.Duration // shortest move between two path nodes
	MaxStep           time.Duration // longest move between two path nodes
	Ease              tween.Ease
	VisionRadius      float64
	EngageDistance    float64 // 0 means VisionRadius/2
	SightLossGrace    time.Duration
	RepathInterval    time.Duration
	SightConfirmTicks int
	PatrolOnIdle      bool
	IdleDwell         time.Duration // time spent in Idle before PatrolOnIdle resumes the route
}

// DefaultSettings returns the settings used when no config overrides them.
func DefaultSettings() Settings {
	return Settings{
		SearchBudget:      2 * time.Millisecond,
		MoveSpeed:         3,
		MinStep:           150 * time.Millisecond,
		MaxStep:           2 * time.Second,
		Ease:              tween.Linear,
		VisionRadius:      10,
		SightLossGrace:    500 * time.Millisecond,
		RepathInterval:    500 * time.Millisecond,
		SightConfirmTicks: 3,
		PatrolOnIdle:      true,
		IdleDwell:         time.Second,
	}
}

// Normalize fills zero fields from DefaultSettings.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.SearchBudget <= 0 {
		s.SearchBudget = d.SearchBudget
	}
	if s.MoveSpeed <= 0 {
		s.MoveSpeed = d.MoveSpeed
	}
	if s.MinStep <= 0 {
		s.MinStep = d.MinStep
	}
	if s.MaxStep <= 0 {
		s.MaxStep = d.MaxStep
	}
	if s.MaxStep < s.MinStep {
		s.MaxStep = s.MinStep
	}
	if s.Ease == nil {
		s.Ease = d.Ease
	}
	if s.VisionRadius <= 0 {
		s.VisionRadius = d.VisionRadius
	}
	if s.EngageDistance <= 0 {
		s.EngageDistance = s.VisionRadius / 2
	}
	if s.SightLossGrace <= 0 {
		s.SightLossGrace = d.SightLossGrace
	}
	if s.RepathInterval <= 0 {
		s.RepathInterval = d.RepathInterval
	}
	if s.SightConfirmTicks <= 0 {
		s.SightConfirmTicks = 1
	}
	return s
}

// stepDuration converts a distance to a move duration clamped to [MinStep, MaxStep].
func (s Settings) stepDuration(dist float64) time.Duration {
	d := time.Duration(dist / s.MoveSpeed * float64(time.Second))
	return min(max(d, s.MinStep), s.MaxStep)
}
