package geo

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrGridNotBuilt is returned by Rebuild before the first Build.
var ErrGridNotBuilt = errors.New("grid not built")

// GridOptions describes the authored extent of a walkability grid.
type GridOptions struct {
	Origin        Point3D // grid centre; Z becomes the height of every cell
	Width         float64 // extent along X
	Depth         float64 // extent along Y
	CellRadius    float64
	PenaltyFactor float64 // probe radius multiplier for the near-obstacle penalty (0 = default)
	Mask          Mask    // unwalkable layers
}

// Grid is a 2D walkability graph over world space.
//
// Cells are stored in one flat slice (row-major, index = gy*nx + gx).
// A Grid is not locked: it is read by searches and rebuilt from the same
// tick goroutine. Rebuild bumps Generation, which cancels stale searches.
type Grid struct {
	overlap Overlapper
	opts    GridOptions

	cells      []Cell
	nx, ny     int
	diameter   float64
	bottomLeft Point3D
	generation uint64
	built      bool
}

// NewGrid creates an empty grid that classifies cells through overlap.
func NewGrid(overlap Overlapper) *Grid {
	return &Grid{overlap: overlap}
}

// Build computes dimensions, allocates cells and classifies each of them.
func (g *Grid) Build(opts GridOptions) error {
	if opts.Width <= 0 || opts.Depth <= 0 {
		return fmt.Errorf("building grid: extent %.2fx%.2f must be positive", opts.Width, opts.Depth)
	}
	if opts.CellRadius <= 0 {
		return fmt.Errorf("building grid: cell radius %.2f must be positive", opts.CellRadius)
	}
	if opts.PenaltyFactor <= 0 {
		opts.PenaltyFactor = DefaultPenaltyFactor
	}

	diameter := opts.CellRadius * 2
	nx := int(math.Round(opts.Width / diameter))
	ny := int(math.Round(opts.Depth / diameter))
	if nx < 1 || ny < 1 {
		return fmt.Errorf("building grid: extent %.2fx%.2f smaller than one cell of diameter %.2f",
			opts.Width, opts.Depth, diameter)
	}

	g.opts = opts
	g.diameter = diameter
	g.nx, g.ny = nx, ny
	g.bottomLeft = Point3D{
		X: opts.Origin.X - opts.Width/2,
		Y: opts.Origin.Y - opts.Depth/2,
		Z: opts.Origin.Z,
	}
	g.generate()
	g.built = true
	return nil
}

// Rebuild regenerates every cell with the options of the last Build.
// Searches started before the rebuild terminate as Cancelled.
func (g *Grid) Rebuild() error {
	if !g.built {
		return ErrGridNotBuilt
	}
	g.cells = nil
	g.generate()
	return nil
}

func (g *Grid) generate() {
	start := time.Now()
	cells := make([]Cell, g.nx*g.ny)
	walkable, penalised := 0, 0

	for gy := range g.ny {
		for gx := range g.nx {
			idx := gy*g.nx + gx
			pos := g.worldPosition(gx, gy)
			isWalkable := !g.overlap.Overlap(pos, g.opts.CellRadius, g.opts.Mask)
			penalty := 0.0
			if isWalkable && g.overlap.Overlap(pos, g.opts.CellRadius*g.opts.PenaltyFactor, g.opts.Mask) {
				penalty = NearObstaclePenalty
				penalised++
			}
			if isWalkable {
				walkable++
			}
			cells[idx] = Cell{
				GX:       gx,
				GY:       gy,
				World:    pos,
				Walkable: isWalkable,
				Penalty:  penalty,
				index:    int32(idx),
			}
		}
	}

	g.cells = cells
	g.generation++

	slog.Info("grid built",
		"width", g.nx,
		"depth", g.ny,
		"walkable", walkable,
		"penalised", penalised,
		"generation", g.generation,
		"duration", time.Since(start))
}

func (g *Grid) worldPosition(gx, gy int) Point3D {
	r := g.opts.CellRadius
	return Point3D{
		X: g.bottomLeft.X + float64(gx)*g.diameter + r,
		Y: g.bottomLeft.Y + float64(gy)*g.diameter + r,
		Z: g.bottomLeft.Z,
	}
}

// Dims returns the number of cells along X and Y.
func (g *Grid) Dims() (int, int) {
	return g.nx, g.ny
}

// Len returns the total number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Generation is incremented by every Build and Rebuild.
func (g *Grid) Generation() uint64 {
	return g.generation
}

// Options returns the options of the last Build.
func (g *Grid) Options() GridOptions {
	return g.opts
}

// CellRadius returns half the cell edge length.
func (g *Grid) CellRadius() float64 {
	return g.opts.CellRadius
}

// InBounds reports whether (gx, gy) addresses a cell.
func (g *Grid) InBounds(gx, gy int) bool {
	return gx >= 0 && gx < g.nx && gy >= 0 && gy < g.ny
}

// Cell returns the cell at grid coordinates.
func (g *Grid) Cell(gx, gy int) (*Cell, bool) {
	if !g.InBounds(gx, gy) {
		return nil, false
	}
	return &g.cells[gy*g.nx+gx], true
}

// Walkable reports whether (gx, gy) is inside the grid and walkable.
func (g *Grid) Walkable(gx, gy int) bool {
	c, ok := g.Cell(gx, gy)
	return ok && c.Walkable
}

// Coord maps a world position to grid coordinates, clamped to the grid.
func (g *Grid) Coord(p Point3D) (int, int) {
	gx := int(math.Floor((p.X - g.bottomLeft.X) / g.diameter))
	gy := int(math.Floor((p.Y - g.bottomLeft.Y) / g.diameter))
	return clampInt(gx, 0, g.nx-1), clampInt(gy, 0, g.ny-1)
}

// CellAt returns the cell containing p. Positions outside the authored
// bounds saturate to the nearest edge cell.
func (g *Grid) CellAt(p Point3D) *Cell {
	gx, gy := g.Coord(p)
	return &g.cells[gy*g.nx+gx]
}

// Neighbors returns up to 8 grid-adjacent cells, diagonals included.
func (g *Grid) Neighbors(c *Cell) []*Cell {
	neighbors := make([]*Cell, 0, 8)
	for _, idx := range g.neighborIndices(c.GX, c.GY, make([]int32, 0, 8)) {
		neighbors = append(neighbors, &g.cells[idx])
	}
	return neighbors
}

// neighborIndices appends the flat indices of the in-bounds neighbours of
// (gx, gy) to buf. Used by the planner to avoid allocating per expansion.
func (g *Grid) neighborIndices(gx, gy int, buf []int32) []int32 {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := gx+dx, gy+dy
			if g.InBounds(nx, ny) {
				buf = append(buf, int32(ny*g.nx+nx))
			}
		}
	}
	return buf
}

// NearestCell returns the cell whose centre is closest to p.
// Linear scan; intended for rare calls such as snapping spawn points.
func (g *Grid) NearestCell(p Point3D) *Cell {
	var nearest *Cell
	best := math.Inf(1)
	for i := range g.cells {
		d := g.cells[i].World.Distance(p)
		if d < best {
			best = d
			nearest = &g.cells[i]
		}
	}
	return nearest
}

// NearestWalkable returns the closest walkable cell to p, or nil if none.
func (g *Grid) NearestWalkable(p Point3D) *Cell {
	var nearest *Cell
	best := math.Inf(1)
	for i := range g.cells {
		if !g.cells[i].Walkable {
			continue
		}
		d := g.cells[i].World.Distance(p)
		if d < best {
			best = d
			nearest = &g.cells[i]
		}
	}
	return nearest
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
