package geo

import (
	"container/heap"
	"log/slog"
	"time"
)

// Status is the state of a search after an Advance call.
type Status uint8

const (
	// StatusInProgress - the search needs more Advance calls
	StatusInProgress Status = iota
	// StatusFound - the target was reached, Result.Path is set
	StatusFound
	// StatusExhausted - the open set emptied without reaching the target
	StatusExhausted
	// StatusCancelled - the search was superseded, cancelled or its grid rebuilt
	StatusCancelled
)

// String returns human-readable status name
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusFound:
		return "FOUND"
	case StatusExhausted:
		return "EXHAUSTED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further Advance call can change the status.
func (s Status) Terminal() bool {
	return s != StatusInProgress
}

// Path is an ordered list of cells from the start cell to the target cell.
// A path is immutable once produced.
type Path []*Cell

// Waypoints converts the path to world positions.
func (p Path) Waypoints() []Point3D {
	points := make([]Point3D, len(p))
	for i, c := range p {
		points[i] = c.World
	}
	return points
}

// Length returns the summed distance between consecutive cells.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i-1].Distance(p[i])
	}
	return total
}

// Result is returned by every Advance call.
type Result struct {
	Status Status
	Path   Path // non-empty only when Status == StatusFound
}

// SearchStats describes the work done by a search so far.
type SearchStats struct {
	Expansions int
	Ticks      int
	Elapsed    time.Duration
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithSmoother smooths every found path before it is returned.
func WithSmoother(s *Smoother) PlannerOption {
	return func(p *Planner) {
		p.smoother = s
	}
}

// Planner runs time-sliced A* searches over a Grid.
// At most one search per owner is in flight: Request supersedes the previous one.
type Planner struct {
	grid     *Grid
	smoother *Smoother
	inFlight map[uint32]*Search
}

// NewPlanner creates a planner over grid.
func NewPlanner(grid *Grid, opts ...PlannerOption) *Planner {
	p := &Planner{
		grid:     grid,
		inFlight: make(map[uint32]*Search),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grid returns the grid searched by this planner.
func (p *Planner) Grid() *Grid {
	return p.grid
}

// BeginSearch resolves both positions to cells and seeds a new search.
// The returned search is not tracked per owner.
func (p *Planner) BeginSearch(start, target Point3D) *Search {
	g := p.grid
	s := &Search{
		planner:    p,
		grid:       g,
		generation: g.Generation(),
		start:      g.CellAt(start).index,
		target:     g.CellAt(target).index,
		nodes:      make([]searchNode, g.Len()),
		neighbors:  make([]int32, 0, 8),
	}
	s.open.nodes = s.nodes

	first := &s.nodes[s.start]
	first.parent = noParent
	first.h = g.cells[s.start].Distance(&g.cells[s.target])
	first.state = nodeOpen
	heap.Push(&s.open, s.start)
	return s
}

// Request starts a search on behalf of owner, cancelling the owner's
// previous search if it is still in flight.
func (p *Planner) Request(owner uint32, start, target Point3D) *Search {
	p.Cancel(owner)
	s := p.BeginSearch(start, target)
	s.owner = owner
	s.owned = true
	p.inFlight[owner] = s
	return s
}

// Cancel cancels the in-flight search of owner, if any.
func (p *Planner) Cancel(owner uint32) {
	if s, ok := p.inFlight[owner]; ok {
		s.Cancel()
	}
}

// InFlight returns the number of owned searches not yet terminal.
func (p *Planner) InFlight() int {
	return len(p.inFlight)
}

// FindPath runs a search to completion in a single call.
func (p *Planner) FindPath(start, target Point3D) (Path, Status) {
	res := p.BeginSearch(start, target).Advance(Unbounded)
	return res.Path, res.Status
}

func (p *Planner) release(s *Search) {
	if !s.owned {
		return
	}
	if cur, ok := p.inFlight[s.owner]; ok && cur == s {
		delete(p.inFlight, s.owner)
	}
}

// Search is a resumable A* search. It holds its own open/closed sets and
// per-cell costs; the grid is only read.
type Search struct {
	planner    *Planner
	grid       *Grid
	generation uint64
	owner      uint32
	owned      bool

	nodes     []searchNode
	open      openHeap
	neighbors []int32

	start, target int32
	status        Status
	path          Path
	stats         SearchStats
}

// Advance expands nodes until budget is spent or the search terminates.
// The budget is checked between whole expansions and at least one
// expansion runs per call, so a search over N cells finishes within N calls.
func (s *Search) Advance(budget time.Duration) Result {
	if s.status.Terminal() {
		return s.result()
	}
	if s.grid.Generation() != s.generation {
		slog.Debug("search cancelled by grid rebuild",
			"owner", s.owner,
			"expansions", s.stats.Expansions)
		s.finish(StatusCancelled)
		return s.result()
	}

	s.stats.Ticks++
	began := time.Now()
	for {
		s.expand()
		if s.status.Terminal() || time.Since(began) >= budget {
			break
		}
	}
	s.stats.Elapsed += time.Since(began)

	if s.status.Terminal() {
		s.logOutcome()
	}
	return s.result()
}

// Step performs exactly one expansion.
func (s *Search) Step() Result {
	return s.Advance(0)
}

// Cancel terminates the search. A cancelled search never reports a path.
func (s *Search) Cancel() {
	if s.status.Terminal() {
		return
	}
	s.finish(StatusCancelled)
}

// Done reports whether the search reached a terminal status.
func (s *Search) Done() bool {
	return s.status.Terminal()
}

// Status returns the current status.
func (s *Search) Status() Status {
	return s.status
}

// Stats returns the work done so far.
func (s *Search) Stats() SearchStats {
	return s.stats
}

// Owner returns the requesting owner (zero for untracked searches).
func (s *Search) Owner() uint32 {
	return s.owner
}

func (s *Search) result() Result {
	return Result{Status: s.status, Path: s.path}
}

func (s *Search) finish(status Status) {
	s.status = status
	s.nodes = nil
	s.open = openHeap{}
	s.planner.release(s)
}

func (s *Search) expand() {
	if s.open.Len() == 0 {
		s.finish(StatusExhausted)
		return
	}

	current := heap.Pop(&s.open).(int32)
	cur := &s.nodes[current]
	cur.state = nodeClosed
	s.stats.Expansions++

	if current == s.target {
		path := s.retrace()
		if s.planner.smoother != nil {
			path = s.planner.smoother.Smooth(path)
		}
		s.path = path
		s.finish(StatusFound)
		return
	}

	cells := s.grid.cells
	curCell := &cells[current]
	targetCell := &cells[s.target]

	s.neighbors = s.grid.neighborIndices(curCell.GX, curCell.GY, s.neighbors[:0])
	for _, idx := range s.neighbors {
		cell := &cells[idx]
		node := &s.nodes[idx]
		if !cell.Walkable || node.state == nodeClosed {
			continue
		}

		newG := cur.g + curCell.Distance(cell) + cell.Penalty
		if node.state == nodeOpen && newG >= node.g {
			continue
		}

		node.g = newG
		node.h = cell.Distance(targetCell)
		node.parent = current
		if node.state == nodeOpen {
			heap.Fix(&s.open, int(node.heapIndex))
		} else {
			node.state = nodeOpen
			heap.Push(&s.open, idx)
		}
	}
}

// retrace follows parent indices from the target back to the start.
func (s *Search) retrace() Path {
	path := make(Path, 0, 32)
	for idx := s.target; idx != noParent; idx = s.nodes[idx].parent {
		path = append(path, &s.grid.cells[idx])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (s *Search) logOutcome() {
	switch s.status {
	case StatusFound:
		slog.Debug("path found",
			"owner", s.owner,
			"nodes", len(s.path),
			"expansions", s.stats.Expansions,
			"ticks", s.stats.Ticks,
			"elapsed", s.stats.Elapsed)
	case StatusExhausted:
		slog.Debug("no path",
			"owner", s.owner,
			"expansions", s.stats.Expansions,
			"ticks", s.stats.Ticks,
			"elapsed", s.stats.Elapsed)
	}
}
