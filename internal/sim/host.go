package sim

import (
	"fmt"

	"github.com/udisondev/navsim/internal/config"
	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/geometry"
	"github.com/udisondev/navsim/internal/physics"
	"github.com/udisondev/navsim/internal/scenario"
)

// Obstacles is an obstacle backend filled from a scenario.
type Obstacles interface {
	scenario.Sink
	geo.Overlapper
	geo.Raycaster
	Len() int
}

// NewObstacles creates an empty backend by config name.
func NewObstacles(backend string) (Obstacles, error) {
	switch backend {
	case config.BackendPhysics:
		return physics.NewSpace(), nil
	case config.BackendStatic:
		return geometry.NewHost(), nil
	default:
		return nil, fmt.Errorf("unknown host backend %q", backend)
	}
}

// hostRef forwards queries to the current backend. The grid and agents hold
// the ref, so a reload only swaps the backend behind it.
type hostRef struct {
	current Obstacles
}

func (h *hostRef) Overlap(p geo.Point3D, radius float64, mask geo.Mask) bool {
	return h.current.Overlap(p, radius, mask)
}

func (h *hostRef) Raycast(origin, dir geo.Point3D, maxDist float64, mask geo.Mask) bool {
	return h.current.Raycast(origin, dir, maxDist, mask)
}
