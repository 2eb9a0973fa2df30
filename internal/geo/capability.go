package geo

// Mask selects obstacle layers for overlap and ray queries (bit per layer).
type Mask uint32

// MaskAll matches every layer.
const MaskAll Mask = 0xFFFFFFFF

// Overlapper answers whether any obstacle on mask lies within radius of p.
// Supplied by the host (physics space, static geometry, test stubs).
type Overlapper interface {
	Overlap(p Point3D, radius float64, mask Mask) bool
}

// Raycaster reports whether a ray from origin along dir hits an obstacle on
// mask within maxDist. dir need not be normalized.
type Raycaster interface {
	Raycast(origin, dir Point3D, maxDist float64, mask Mask) bool
}

// HasLineOfSight casts a single ray from one point to another.
// Coincident points always see each other.
func HasLineOfSight(r Raycaster, from, to Point3D, mask Mask) bool {
	dir := to.Sub(from)
	dist := dir.Len()
	if dist == 0 {
		return true
	}
	return !r.Raycast(from, dir, dist, mask)
}
