package testutil

import (
	"math"
	"testing"

	"github.com/udisondev/navsim/internal/geo"
)

// BlockedCells - тестовый host препятствий: единичные квадраты [x,x+1]x[y,y+1].
// Реализует geo.Overlapper и geo.Raycaster, маски игнорируются.
type BlockedCells struct {
	cells map[[2]int]struct{}
}

// NewBlockedCells создаёт host с заблокированными клетками.
func NewBlockedCells(cells ...[2]int) *BlockedCells {
	b := &BlockedCells{cells: make(map[[2]int]struct{}, len(cells))}
	for _, c := range cells {
		b.Block(c[0], c[1])
	}
	return b
}

// Block блокирует квадрат (x, y).
func (b *BlockedCells) Block(x, y int) {
	b.cells[[2]int{x, y}] = struct{}{}
}

// Unblock освобождает квадрат (x, y).
func (b *BlockedCells) Unblock(x, y int) {
	delete(b.cells, [2]int{x, y})
}

// Wall блокирует вертикальную стену x = const от y0 до y1 включительно.
func (b *BlockedCells) Wall(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		b.Block(x, y)
	}
}

// Overlap - true, если хотя бы один квадрат ближе radius к p (строго).
func (b *BlockedCells) Overlap(p geo.Point3D, radius float64, _ geo.Mask) bool {
	x0 := int(math.Floor(p.X - radius))
	x1 := int(math.Floor(p.X + radius))
	y0 := int(math.Floor(p.Y - radius))
	y1 := int(math.Floor(p.Y + radius))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			if _, ok := b.cells[[2]int{x, y}]; !ok {
				continue
			}
			dx := math.Max(math.Max(float64(x)-p.X, 0), p.X-float64(x+1))
			dy := math.Max(math.Max(float64(y)-p.Y, 0), p.Y-float64(y+1))
			if math.Hypot(dx, dy) < radius {
				return true
			}
		}
	}
	return false
}

// Raycast проверяет отрезок с шагом 0.05 - для тестов достаточно.
func (b *BlockedCells) Raycast(origin, dir geo.Point3D, maxDist float64, _ geo.Mask) bool {
	if maxDist <= 0 {
		return false
	}
	unit := dir.Normalize()
	const step = 0.05
	for d := 0.0; d <= maxDist; d += step {
		p := origin.Add(unit.Scale(d))
		if _, ok := b.cells[[2]int{int(math.Floor(p.X)), int(math.Floor(p.Y))}]; ok {
			return true
		}
	}
	return false
}

// UnitGrid строит grid size×size из единичных клеток с левым нижним углом в (0,0):
// центр клетки (gx, gy) - (gx+0.5, gy+0.5).
func UnitGrid(tb testing.TB, size int, overlap geo.Overlapper) *geo.Grid {
	tb.Helper()

	g := geo.NewGrid(overlap)
	err := g.Build(geo.GridOptions{
		Origin:     geo.Point3D{X: float64(size) / 2, Y: float64(size) / 2},
		Width:      float64(size),
		Depth:      float64(size),
		CellRadius: 0.5,
		Mask:       geo.MaskAll,
	})
	if err != nil {
		tb.Fatalf("building unit grid: %v", err)
	}
	return g
}

// CellCentre возвращает центр клетки (gx, gy) в UnitGrid.
func CellCentre(gx, gy int) geo.Point3D {
	return geo.Point3D{X: float64(gx) + 0.5, Y: float64(gy) + 0.5}
}
