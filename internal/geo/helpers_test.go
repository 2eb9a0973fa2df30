package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// boxOverlap marks axis-aligned boxes as obstacles.
type boxOverlap struct {
	boxes [][4]float64 // minX, minY, maxX, maxY
}

func (b *boxOverlap) Overlap(p Point3D, radius float64, _ Mask) bool {
	for _, box := range b.boxes {
		dx := math.Max(math.Max(box[0]-p.X, 0), p.X-box[2])
		dy := math.Max(math.Max(box[1]-p.Y, 0), p.Y-box[3])
		if math.Hypot(dx, dy) < radius {
			return true
		}
	}
	return false
}

// blockCell adds a unit box covering grid cell (gx, gy) of a test grid.
func (b *boxOverlap) blockCell(gx, gy int) {
	b.boxes = append(b.boxes, [4]float64{float64(gx), float64(gy), float64(gx + 1), float64(gy + 1)})
}

// newTestGrid builds a size x size grid of unit cells with bottom-left at
// the origin, so cell (gx, gy) is centred on (gx+0.5, gy+0.5).
func newTestGrid(t testing.TB, size int, blocked ...[2]int) *Grid {
	t.Helper()

	overlap := &boxOverlap{}
	for _, c := range blocked {
		overlap.blockCell(c[0], c[1])
	}

	g := NewGrid(overlap)
	err := g.Build(GridOptions{
		Origin:     Point3D{X: float64(size) / 2, Y: float64(size) / 2},
		Width:      float64(size),
		Depth:      float64(size),
		CellRadius: 0.5,
		Mask:       MaskAll,
	})
	require.NoError(t, err)
	return g
}

func cellCentre(gx, gy int) Point3D {
	return Point3D{X: float64(gx) + 0.5, Y: float64(gy) + 0.5}
}
