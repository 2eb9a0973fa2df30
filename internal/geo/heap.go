package geo

// nodeState tracks membership of a cell within one search.
type nodeState uint8

const (
	nodeUnvisited nodeState = iota
	nodeOpen
	nodeClosed
)

// searchNode holds the search-scoped costs of one cell.
// parent is a cell index, valid only inside the owning search.
type searchNode struct {
	g, h      float64
	parent    int32
	heapIndex int32
	state     nodeState
}

func (n *searchNode) f() float64 { return n.g + n.h }

// openHeap implements container/heap for the A* open set: min-heap of cell
// indices by f cost, ties broken by lower h cost.
type openHeap struct {
	items []int32
	nodes []searchNode
}

func (h *openHeap) Len() int { return len(h.items) }

func (h *openHeap) Less(i, j int) bool {
	a := &h.nodes[h.items[i]]
	b := &h.nodes[h.items[j]]
	fa, fb := a.f(), b.f()
	if fa != fb {
		return fa < fb
	}
	return a.h < b.h
}

func (h *openHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.nodes[h.items[i]].heapIndex = int32(i)
	h.nodes[h.items[j]].heapIndex = int32(j)
}

func (h *openHeap) Push(x any) {
	idx := x.(int32)
	h.nodes[idx].heapIndex = int32(len(h.items))
	h.items = append(h.items, idx)
}

func (h *openHeap) Pop() any {
	old := h.items
	n := len(old)
	idx := old[n-1]
	h.nodes[idx].heapIndex = -1
	h.items = old[:n-1]
	return idx
}
