package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridBuildDimensions(t *testing.T) {
	g := newTestGrid(t, 10)

	nx, ny := g.Dims()
	assert.Equal(t, 10, nx)
	assert.Equal(t, 10, ny)
	assert.Equal(t, 100, g.Len())
	assert.Equal(t, uint64(1), g.Generation())
}

func TestGridBuildRoundsExtent(t *testing.T) {
	g := NewGrid(&boxOverlap{})
	err := g.Build(GridOptions{Width: 10.6, Depth: 3.2, CellRadius: 0.5})
	require.NoError(t, err)

	nx, ny := g.Dims()
	assert.Equal(t, 11, nx)
	assert.Equal(t, 3, ny)
	assert.Equal(t, DefaultPenaltyFactor, g.Options().PenaltyFactor)
}

func TestGridBuildInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts GridOptions
	}{
		{"zero width", GridOptions{Width: 0, Depth: 10, CellRadius: 0.5}},
		{"negative depth", GridOptions{Width: 10, Depth: -1, CellRadius: 0.5}},
		{"zero radius", GridOptions{Width: 10, Depth: 10}},
		{"smaller than a cell", GridOptions{Width: 0.4, Depth: 0.4, CellRadius: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(&boxOverlap{})
			assert.Error(t, g.Build(tt.opts))
		})
	}
}

func TestGridRebuildBeforeBuild(t *testing.T) {
	g := NewGrid(&boxOverlap{})
	assert.ErrorIs(t, g.Rebuild(), ErrGridNotBuilt)
}

func TestGridRebuildBumpsGeneration(t *testing.T) {
	overlap := &boxOverlap{}
	g := NewGrid(overlap)
	require.NoError(t, g.Build(GridOptions{Origin: Point3D{X: 5, Y: 5}, Width: 10, Depth: 10, CellRadius: 0.5}))
	require.True(t, g.Walkable(2, 2))

	overlap.blockCell(2, 2)
	require.NoError(t, g.Rebuild())

	assert.Equal(t, uint64(2), g.Generation())
	assert.False(t, g.Walkable(2, 2))
}

func TestGridCellCentres(t *testing.T) {
	g := NewGrid(&boxOverlap{})
	require.NoError(t, g.Build(GridOptions{
		Origin:     Point3D{X: 0, Y: 0, Z: 7},
		Width:      4,
		Depth:      2,
		CellRadius: 0.5,
	}))

	c, ok := g.Cell(0, 0)
	require.True(t, ok)
	assert.Equal(t, Point3D{X: -1.5, Y: -0.5, Z: 7}, c.World)

	c, ok = g.Cell(3, 1)
	require.True(t, ok)
	assert.Equal(t, Point3D{X: 1.5, Y: 0.5, Z: 7}, c.World)

	_, ok = g.Cell(4, 0)
	assert.False(t, ok)
}

func TestGridWalkabilityAndPenalty(t *testing.T) {
	g := newTestGrid(t, 10, [2]int{3, 3})

	assert.False(t, g.Walkable(3, 3), "blocked cell")
	assert.True(t, g.Walkable(3, 4), "touching neighbour stays walkable")

	near, _ := g.Cell(3, 4)
	assert.Equal(t, NearObstaclePenalty, near.Penalty)

	far, _ := g.Cell(9, 9)
	assert.Zero(t, far.Penalty)

	blocked, _ := g.Cell(3, 3)
	assert.Zero(t, blocked.Penalty, "unwalkable cells carry no penalty")

	assert.False(t, g.Walkable(-1, 0), "out of bounds")
}

func TestGridCellAtClamps(t *testing.T) {
	g := newTestGrid(t, 10)

	tests := []struct {
		name   string
		p      Point3D
		gx, gy int
	}{
		{"inside", Point3D{X: 2.2, Y: 7.9}, 2, 7},
		{"cell boundary", Point3D{X: 3, Y: 3}, 3, 3},
		{"below", Point3D{X: -100, Y: -3}, 0, 0},
		{"above", Point3D{X: 100, Y: 55}, 9, 9},
		{"mixed", Point3D{X: -1, Y: 4.5}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := g.CellAt(tt.p)
			if c.GX != tt.gx || c.GY != tt.gy {
				t.Errorf("CellAt(%v) = (%d,%d), want (%d,%d)", tt.p, c.GX, c.GY, tt.gx, tt.gy)
			}
		})
	}
}

func TestGridNeighbors(t *testing.T) {
	g := newTestGrid(t, 10)

	corner, _ := g.Cell(0, 0)
	assert.Len(t, g.Neighbors(corner), 3)

	edge, _ := g.Cell(0, 5)
	assert.Len(t, g.Neighbors(edge), 5)

	inner, _ := g.Cell(5, 5)
	neighbors := g.Neighbors(inner)
	assert.Len(t, neighbors, 8)
	for _, n := range neighbors {
		assert.LessOrEqual(t, absInt(n.GX-5), 1)
		assert.LessOrEqual(t, absInt(n.GY-5), 1)
		assert.False(t, n.GX == 5 && n.GY == 5, "cell is not its own neighbour")
	}
}

func TestGridNearestCell(t *testing.T) {
	g := newTestGrid(t, 10, [2]int{5, 5})

	c := g.NearestCell(Point3D{X: 5.4, Y: 5.6})
	require.NotNil(t, c)
	assert.Equal(t, 5, c.GX)
	assert.Equal(t, 5, c.GY)

	w := g.NearestWalkable(Point3D{X: 5.5, Y: 5.5})
	require.NotNil(t, w)
	assert.True(t, w.Walkable)
	assert.InDelta(t, 1.0, w.World.Distance(cellCentre(5, 5)), 1e-9)
}

func TestGridNearestCellEmpty(t *testing.T) {
	g := NewGrid(&boxOverlap{})
	assert.Nil(t, g.NearestCell(Point3D{}))
}
