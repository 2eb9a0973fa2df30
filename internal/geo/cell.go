package geo

// Cell is the smallest addressable unit of the walkability grid.
// Cells are immutable between grid builds; per-search costs live in the search.
type Cell struct {
	GX, GY   int
	World    Point3D
	Walkable bool
	Penalty  float64 // extra cost for entering this cell, >= 0
	index    int32
}

// Index returns the flat index of the cell in its grid.
func (c *Cell) Index() int {
	return int(c.index)
}

// Distance returns the world-space distance between two cells.
func (c *Cell) Distance(o *Cell) float64 {
	return c.World.Distance(o.World)
}
