package world

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/navsim/internal/geo"
)

// Occupant is anything tracked by the spatial index.
type Occupant interface {
	ObjectID() uint32
	Position() geo.Point3D
}

// Index is a uniform spatial hash over the walkable plane.
//
// Buckets are created on first use and dropped when they empty, so the
// indexed world has no bounds. Not safe for concurrent use: it is updated
// and queried from the tick goroutine only.
type Index struct {
	origin   geo.Point3D
	cellSize float64

	buckets map[BucketKey]*bucket
	owner   map[uint32]BucketKey // objectID -> bucket it is a member of
}

// NewIndex creates an index with square buckets of cellSize world units.
// Panics if cellSize is not positive.
func NewIndex(origin geo.Point3D, cellSize float64) *Index {
	if cellSize <= 0 {
		panic(fmt.Sprintf("world: bucket size %v must be positive", cellSize))
	}
	return &Index{
		origin:   origin,
		cellSize: cellSize,
		buckets:  make(map[BucketKey]*bucket),
		owner:    make(map[uint32]BucketKey),
	}
}

// CellSize returns the bucket edge length.
func (idx *Index) CellSize() float64 {
	return idx.cellSize
}

// KeyFor returns the bucket containing p.
func (idx *Index) KeyFor(p geo.Point3D) BucketKey {
	return keyFor(idx.origin, idx.cellSize, p)
}

// Register inserts o into the bucket of its current position.
// Registering a known occupant moves it, like UpdatePosition.
func (idx *Index) Register(o Occupant) {
	if _, ok := idx.owner[o.ObjectID()]; ok {
		idx.UpdatePosition(o)
		return
	}
	idx.insert(o, idx.KeyFor(o.Position()))
}

// Unregister removes o from the index. Unknown occupants are ignored.
func (idx *Index) Unregister(o Occupant) {
	id := o.ObjectID()
	key, ok := idx.owner[id]
	if !ok {
		return
	}
	idx.removeFrom(key, id)
	delete(idx.owner, id)
}

// UpdatePosition moves o to the bucket of its current position.
// Returns true if the bucket changed. Unknown occupants are registered.
func (idx *Index) UpdatePosition(o Occupant) bool {
	id := o.ObjectID()
	newKey := idx.KeyFor(o.Position())

	oldKey, ok := idx.owner[id]
	if !ok {
		idx.insert(o, newKey)
		return true
	}
	if oldKey == newKey {
		return false
	}

	idx.removeFrom(oldKey, id)
	idx.insert(o, newKey)

	if IsDebugEnabled() {
		slog.Debug("occupant changed bucket",
			"objectID", id,
			"from", oldKey,
			"to", newKey)
	}
	return true
}

// BucketOf returns the bucket o is registered in.
func (idx *Index) BucketOf(o Occupant) (BucketKey, bool) {
	key, ok := idx.owner[o.ObjectID()]
	return key, ok
}

// Len returns the number of registered occupants.
func (idx *Index) Len() int {
	return len(idx.owner)
}

// BucketCount returns the number of non-empty buckets.
func (idx *Index) BucketCount() int {
	return len(idx.buckets)
}

// QueryRadius returns members of every bucket within radiusInCells buckets
// of p (Chebyshev window, (2r+1)^2 buckets). Members of one bucket keep
// insertion order (modulo swap-removal); buckets are visited row by row.
func (idx *Index) QueryRadius(p geo.Point3D, radiusInCells int) []Occupant {
	var result []Occupant
	idx.QueryRadiusFunc(p, radiusInCells, func(o Occupant) bool {
		result = append(result, o)
		return true
	})
	return result
}

// QueryRadiusFunc calls fn for each occupant QueryRadius would return.
// If fn returns false, iteration stops.
func (idx *Index) QueryRadiusFunc(p geo.Point3D, radiusInCells int, fn func(Occupant) bool) {
	if radiusInCells < 0 {
		return
	}
	centre := idx.KeyFor(p)
	r := int32(radiusInCells)

	for y := centre.Y - r; y <= centre.Y+r; y++ {
		for x := centre.X - r; x <= centre.X+r; x++ {
			b, ok := idx.buckets[BucketKey{X: x, Y: y}]
			if !ok {
				continue
			}
			for _, o := range b.members {
				if !fn(o) {
					return
				}
			}
		}
	}
}

// Members returns a copy of the occupants of one bucket.
func (idx *Index) Members(key BucketKey) []Occupant {
	b, ok := idx.buckets[key]
	if !ok {
		return nil
	}
	out := make([]Occupant, len(b.members))
	copy(out, b.members)
	return out
}

// Reset removes every occupant.
func (idx *Index) Reset() {
	clear(idx.buckets)
	clear(idx.owner)
}

func (idx *Index) insert(o Occupant, key BucketKey) {
	b, ok := idx.buckets[key]
	if !ok {
		b = newBucket(key)
		idx.buckets[key] = b
	}
	b.add(o)
	idx.owner[o.ObjectID()] = key
}

func (idx *Index) removeFrom(key BucketKey, id uint32) {
	b, ok := idx.buckets[key]
	if !ok {
		return
	}
	b.remove(id)
	if b.len() == 0 {
		delete(idx.buckets, key)
	}
}
