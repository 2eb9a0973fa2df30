package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConnected(t *testing.T, path Path) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		dx := absInt(path[i].GX - path[i-1].GX)
		dy := absInt(path[i].GY - path[i-1].GY)
		assert.True(t, dx <= 1 && dy <= 1 && dx+dy > 0,
			"step %d: (%d,%d) -> (%d,%d) not adjacent", i, path[i-1].GX, path[i-1].GY, path[i].GX, path[i].GY)
		assert.True(t, path[i].Walkable, "step %d crosses an unwalkable cell", i)
	}
}

func TestFindPathOpenGrid(t *testing.T) {
	g := newTestGrid(t, 10)
	p := NewPlanner(g)

	path, status := p.FindPath(cellCentre(0, 0), cellCentre(9, 9))
	require.Equal(t, StatusFound, status)
	require.NotEmpty(t, path)

	assert.Equal(t, g.CellAt(cellCentre(0, 0)), path[0], "path starts at the start cell")
	assert.Equal(t, g.CellAt(cellCentre(9, 9)), path[len(path)-1], "path ends at the target cell")
	assertConnected(t, path)

	// penalties are zero on an open grid, so the diagonal is optimal
	assert.Len(t, path, 10)
	assert.InDelta(t, 9*math.Sqrt2, path.Length(), 1e-9)
}

func TestFindPathSameCell(t *testing.T) {
	g := newTestGrid(t, 10)
	p := NewPlanner(g)

	path, status := p.FindPath(Point3D{X: 4.2, Y: 4.2}, Point3D{X: 4.8, Y: 4.7})
	require.Equal(t, StatusFound, status)
	assert.LessOrEqual(t, len(path), 1)
}

func TestFindPathWithWall(t *testing.T) {
	// wall along x=5 with a gap at the top
	var blocked [][2]int
	for y := range 9 {
		blocked = append(blocked, [2]int{5, y})
	}
	g := newTestGrid(t, 10, blocked...)
	p := NewPlanner(g)

	path, status := p.FindPath(cellCentre(0, 0), cellCentre(9, 0))
	require.Equal(t, StatusFound, status)
	assertConnected(t, path)

	crossed := false
	for _, c := range path {
		if c.GX == 5 {
			assert.Equal(t, 9, c.GY, "wall is crossed through the gap")
			crossed = true
		}
	}
	assert.True(t, crossed)
}

func TestFindPathWallSeparation(t *testing.T) {
	var blocked [][2]int
	for y := range 10 {
		blocked = append(blocked, [2]int{5, y})
	}
	g := newTestGrid(t, 10, blocked...)
	p := NewPlanner(g)

	path, status := p.FindPath(cellCentre(0, 0), cellCentre(9, 9))
	assert.Equal(t, StatusExhausted, status)
	assert.Empty(t, path)
}

// costZones answers the walkability probe with blocked cells and the wider
// penalty probe with penalised cells.
type costZones struct {
	blocked, penalised map[[2]int]bool
}

func (z *costZones) Overlap(p Point3D, radius float64, _ Mask) bool {
	c := [2]int{int(math.Floor(p.X)), int(math.Floor(p.Y))}
	if radius <= 0.5 {
		return z.blocked[c]
	}
	return z.penalised[c]
}

func rowCells(y, x0, x1 int) map[[2]int]bool {
	cells := make(map[[2]int]bool)
	for x := x0; x <= x1; x++ {
		cells[[2]int{x, y}] = true
	}
	return cells
}

func TestFindPathAvoidsPenalisedCells(t *testing.T) {
	detour := 4 + 2*math.Sqrt2

	tests := []struct {
		name      string
		blocked   map[[2]int]bool
		penalised map[[2]int]bool
	}{
		{
			name:      "equal corridors, lower one penalised",
			blocked:   rowCells(1, 1, 5),
			penalised: rowCells(0, 1, 5),
		},
		{
			name:      "penalised straight line loses to clean detour",
			penalised: rowCells(1, 1, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(&costZones{blocked: tt.blocked, penalised: tt.penalised})
			require.NoError(t, g.Build(GridOptions{
				Origin:        Point3D{X: 3.5, Y: 1.5},
				Width:         7,
				Depth:         3,
				CellRadius:    0.5,
				PenaltyFactor: 2,
				Mask:          MaskAll,
			}))
			for c := range tt.penalised {
				cell, ok := g.Cell(c[0], c[1])
				require.True(t, ok)
				if cell.Walkable {
					require.Equal(t, NearObstaclePenalty, cell.Penalty)
				}
			}

			path, status := NewPlanner(g).FindPath(cellCentre(0, 1), cellCentre(6, 1))
			require.Equal(t, StatusFound, status)
			assertConnected(t, path)

			penalty := 0.0
			for _, c := range path[1:] {
				penalty += c.Penalty
				assert.False(t, tt.penalised[[2]int{c.GX, c.GY}], "path enters penalised cell (%d,%d)", c.GX, c.GY)
			}
			assert.Zero(t, penalty)
			assert.InDelta(t, detour, path.Length()+penalty, 1e-9)
		})
	}
}

func TestSearchEnclosedTargetTerminates(t *testing.T) {
	var ring [][2]int
	for x := 4; x <= 6; x++ {
		for y := 4; y <= 6; y++ {
			if x != 5 || y != 5 {
				ring = append(ring, [2]int{x, y})
			}
		}
	}
	g := newTestGrid(t, 10, ring...)
	p := NewPlanner(g)

	s := p.BeginSearch(cellCentre(0, 0), cellCentre(5, 5))
	var res Result
	calls := 0
	for !s.Done() {
		res = s.Step()
		calls++
		require.LessOrEqual(t, calls, g.Len(), "search must terminate within Len() calls")
	}

	assert.Equal(t, StatusExhausted, res.Status)
	assert.Empty(t, res.Path)
	assert.Equal(t, 91, s.Stats().Expansions, "every reachable cell is expanded once")
}

func TestSearchSlicedMatchesUnbounded(t *testing.T) {
	blocked := [][2]int{{2, 2}, {2, 3}, {2, 4}, {3, 4}, {4, 4}, {6, 7}, {7, 7}, {7, 6}, {7, 5}}
	g := newTestGrid(t, 10, blocked...)
	p := NewPlanner(g)

	start, target := cellCentre(0, 9), cellCentre(9, 0)
	want, status := p.FindPath(start, target)
	require.Equal(t, StatusFound, status)

	s := p.BeginSearch(start, target)
	var res Result
	for !s.Done() {
		res = s.Step()
	}
	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, want, res.Path)
	assert.Equal(t, s.Stats().Expansions, s.Stats().Ticks, "Step expands exactly once per call")
}

func TestSearchAdvanceTerminalIsStable(t *testing.T) {
	g := newTestGrid(t, 5)
	s := NewPlanner(g).BeginSearch(cellCentre(0, 0), cellCentre(4, 4))

	first := s.Advance(Unbounded)
	require.Equal(t, StatusFound, first.Status)
	ticks := s.Stats().Ticks

	again := s.Advance(time.Millisecond)
	assert.Equal(t, first, again)
	assert.Equal(t, ticks, s.Stats().Ticks, "terminal searches do no work")
}

func TestSearchCancelledByRebuild(t *testing.T) {
	g := newTestGrid(t, 10)
	s := NewPlanner(g).BeginSearch(cellCentre(0, 0), cellCentre(9, 9))
	s.Step()
	require.False(t, s.Done())

	require.NoError(t, g.Rebuild())

	res := s.Advance(Unbounded)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Empty(t, res.Path)
	assert.Equal(t, 1, s.Stats().Expansions, "stale search expands nothing")
}

func TestPlannerRequestSupersedes(t *testing.T) {
	g := newTestGrid(t, 10)
	p := NewPlanner(g)

	first := p.Request(7, cellCentre(0, 0), cellCentre(9, 9))
	first.Step()
	second := p.Request(7, cellCentre(0, 0), cellCentre(9, 0))
	other := p.Request(8, cellCentre(0, 0), cellCentre(0, 9))

	assert.Equal(t, StatusCancelled, first.Status())
	assert.Equal(t, StatusCancelled, first.Advance(Unbounded).Status, "cancelled search never reports a path")
	assert.Equal(t, 2, p.InFlight())

	res := second.Advance(Unbounded)
	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, 9, res.Path[len(res.Path)-1].GX)
	assert.Equal(t, 1, p.InFlight())

	p.Cancel(8)
	assert.Equal(t, StatusCancelled, other.Status())
	assert.Zero(t, p.InFlight())

	p.Cancel(99)
}

func TestPlannerWithSmoother(t *testing.T) {
	g := newTestGrid(t, 10)
	p := NewPlanner(g, WithSmoother(NewSmoother(NewGridRaycaster(g), MaskAll)))

	path, status := p.FindPath(cellCentre(0, 0), cellCentre(9, 9))
	require.Equal(t, StatusFound, status)
	assert.Len(t, path, 2, "unobstructed straight path smooths to its endpoints")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "FOUND", StatusFound.String())
	assert.Equal(t, "CANCELLED", StatusCancelled.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusExhausted.Terminal())
}

func BenchmarkFindPath(b *testing.B) {
	var blocked [][2]int
	for y := range 60 {
		blocked = append(blocked, [2]int{32, y})
	}
	g := newTestGrid(b, 64, blocked...)
	p := NewPlanner(g)

	b.ResetTimer()
	for b.Loop() {
		p.FindPath(cellCentre(0, 0), cellCentre(63, 0))
	}
}

func BenchmarkSearchSliced(b *testing.B) {
	g := newTestGrid(b, 64)
	p := NewPlanner(g)

	b.ResetTimer()
	for b.Loop() {
		s := p.BeginSearch(cellCentre(0, 0), cellCentre(63, 63))
		for !s.Done() {
			s.Advance(50 * time.Microsecond)
		}
	}
}
