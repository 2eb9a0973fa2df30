package ai

import "github.com/udisondev/navsim/internal/geo"

// PathQueue is a consumable copy of a planned path.
type PathQueue struct {
	nodes []geo.Point3D
	head  int
}

// Reset replaces the queue contents with the waypoints of path.
func (q *PathQueue) Reset(path geo.Path) {
	q.nodes = path.Waypoints()
	q.head = 0
}

// Pop removes and returns the front node.
func (q *PathQueue) Pop() (geo.Point3D, bool) {
	if q.head >= len(q.nodes) {
		return geo.Point3D{}, false
	}
	p := q.nodes[q.head]
	q.head++
	return p, true
}

// Peek returns the front node without removing it.
func (q *PathQueue) Peek() (geo.Point3D, bool) {
	if q.head >= len(q.nodes) {
		return geo.Point3D{}, false
	}
	return q.nodes[q.head], true
}

// Len returns the number of nodes left.
func (q *PathQueue) Len() int {
	return len(q.nodes) - q.head
}

// Clear drops every node.
func (q *PathQueue) Clear() {
	q.nodes = nil
	q.head = 0
}
