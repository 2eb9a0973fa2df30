package geo

// GridRaycaster answers ray queries against the walkability of a built grid.
// A ray hits when it crosses an unwalkable cell; the mask is ignored because
// the grid was classified with its own mask.
type GridRaycaster struct {
	grid *Grid
}

// NewGridRaycaster creates a raycaster over grid.
func NewGridRaycaster(grid *Grid) *GridRaycaster {
	return &GridRaycaster{grid: grid}
}

// Raycast walks the cells between origin and origin+dir*maxDist.
// The origin cell itself never counts as a hit.
func (r *GridRaycaster) Raycast(origin, dir Point3D, maxDist float64, _ Mask) bool {
	if maxDist <= 0 || dir.Len() == 0 {
		return false
	}
	end := origin.Add(dir.Normalize().Scale(maxDist))

	sx, sy := r.grid.Coord(origin)
	ex, ey := r.grid.Coord(end)
	it := NewLineIterator(sx, sy, ex, ey)
	for it.Next() {
		if it.X() == sx && it.Y() == sy {
			continue
		}
		if !r.grid.Walkable(it.X(), it.Y()) {
			return true
		}
	}
	return false
}
