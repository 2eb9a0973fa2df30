package geo

// Smoother removes intermediate path nodes that are visible from the last
// kept node.
type Smoother struct {
	ray  Raycaster
	mask Mask
}

// NewSmoother creates a smoother casting rays through ray against mask.
func NewSmoother(ray Raycaster, mask Mask) *Smoother {
	return &Smoother{ray: ray, mask: mask}
}

// Smooth returns a path with the same endpoints and at most as many nodes.
// Paths shorter than 3 nodes are returned unchanged.
//
// Walking forward from an anchor, a node is skipped while the anchor still
// sees the node after it; otherwise the node becomes the new anchor.
func (s *Smoother) Smooth(path Path) Path {
	if len(path) < 3 {
		return path
	}

	smoothed := make(Path, 0, len(path))
	anchor := path[0]
	smoothed = append(smoothed, anchor)

	for i := 2; i < len(path); i++ {
		if HasLineOfSight(s.ray, anchor.World, path[i].World, s.mask) {
			continue
		}
		anchor = path[i-1]
		smoothed = append(smoothed, anchor)
	}

	return append(smoothed, path[len(path)-1])
}
