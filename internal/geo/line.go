package geo

// LineIterator steps through grid cells along a 2D Bresenham line.
// The start cell is returned first and the end cell last.
type LineIterator struct {
	currentX, currentY int
	targetX, targetY   int
	deltaX, deltaY     int
	stepX, stepY       int
	err                int
	started            bool
}

// NewLineIterator creates an iterator from (sx, sy) to (ex, ey) inclusive.
func NewLineIterator(sx, sy, ex, ey int) *LineIterator {
	it := &LineIterator{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
		deltaX: absInt(ex - sx),
		deltaY: -absInt(ey - sy),
		stepX:  1,
		stepY:  1,
	}
	if sx > ex {
		it.stepX = -1
	}
	if sy > ey {
		it.stepY = -1
	}
	it.err = it.deltaX + it.deltaY
	return it
}

// Next advances the iterator to the next cell.
// Returns false when the target has already been returned.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}

	e2 := 2 * it.err
	if e2 >= it.deltaY {
		it.err += it.deltaY
		it.currentX += it.stepX
	}
	if e2 <= it.deltaX {
		it.err += it.deltaX
		it.currentY += it.stepY
	}
	return true
}

// X returns current X coordinate.
func (it *LineIterator) X() int { return it.currentX }

// Y returns current Y coordinate.
func (it *LineIterator) Y() int { return it.currentY }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
