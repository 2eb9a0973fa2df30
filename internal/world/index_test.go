package world

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navsim/internal/geo"
)

type testOccupant struct {
	id  uint32
	pos geo.Point3D
}

func (o *testOccupant) ObjectID() uint32       { return o.id }
func (o *testOccupant) Position() geo.Point3D { return o.pos }

func at(id uint32, x, y float64) *testOccupant {
	return &testOccupant{id: id, pos: geo.Point3D{X: x, Y: y}}
}

func ids(occupants []Occupant) []uint32 {
	out := make([]uint32, 0, len(occupants))
	for _, o := range occupants {
		out = append(out, o.ObjectID())
	}
	slices.Sort(out)
	return out
}

func TestKeyFor(t *testing.T) {
	idx := NewIndex(geo.Point3D{X: -10, Y: 5}, 4)

	tests := []struct {
		name string
		p    geo.Point3D
		want BucketKey
	}{
		{"origin", geo.Point3D{X: -10, Y: 5}, BucketKey{0, 0}},
		{"inside first bucket", geo.Point3D{X: -6.1, Y: 8.9}, BucketKey{0, 0}},
		{"bucket boundary", geo.Point3D{X: -6, Y: 9}, BucketKey{1, 1}},
		{"negative side", geo.Point3D{X: -10.5, Y: 4.9}, BucketKey{-1, -1}},
		{"far away", geo.Point3D{X: 1000, Y: -1000}, BucketKey{252, -252}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.KeyFor(tt.p); got != tt.want {
				t.Errorf("KeyFor(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBucketKeyCentre(t *testing.T) {
	origin := geo.Point3D{X: 1, Y: 2, Z: 3}
	idx := NewIndex(origin, 2)

	c := BucketKey{X: 2, Y: -1}.Centre(origin, 2)
	assert.Equal(t, geo.Point3D{X: 6, Y: 1, Z: 3}, c)
	assert.Equal(t, BucketKey{X: 2, Y: -1}, idx.KeyFor(c))
}

func TestNewIndexPanicsOnInvalidSize(t *testing.T) {
	assert.Panics(t, func() { NewIndex(geo.Point3D{}, 0) })
	assert.Panics(t, func() { NewIndex(geo.Point3D{}, -1) })
}

func TestIndexRegisterUnregister(t *testing.T) {
	idx := NewIndex(geo.Point3D{}, 10)
	a := at(1, 5, 5)
	b := at(2, 6, 6)

	idx.Register(a)
	idx.Register(b)
	idx.Register(a)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 1, idx.BucketCount())
	assert.Len(t, idx.Members(BucketKey{}), 2)

	key, ok := idx.BucketOf(a)
	require.True(t, ok)
	assert.Equal(t, BucketKey{}, key)

	idx.Unregister(a)
	idx.Unregister(a)
	_, ok = idx.BucketOf(a)
	assert.False(t, ok)
	assert.Equal(t, 1, idx.Len())

	idx.Unregister(b)
	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.BucketCount(), "empty buckets are dropped")
}

func TestIndexUpdatePosition(t *testing.T) {
	idx := NewIndex(geo.Point3D{}, 10)
	a := at(1, 5, 5)
	idx.Register(a)

	a.pos = geo.Point3D{X: 9, Y: 1}
	assert.False(t, idx.UpdatePosition(a), "same bucket")

	a.pos = geo.Point3D{X: 15, Y: 1}
	assert.True(t, idx.UpdatePosition(a))
	key, _ := idx.BucketOf(a)
	assert.Equal(t, BucketKey{X: 1, Y: 0}, key)
	assert.Nil(t, idx.Members(BucketKey{}))
	assert.Equal(t, 1, idx.BucketCount())

	stranger := at(9, -3, -3)
	assert.True(t, idx.UpdatePosition(stranger), "unknown occupant is registered")
	assert.Equal(t, 2, idx.Len())
}

func TestIndexQueryRadius(t *testing.T) {
	idx := NewIndex(geo.Point3D{}, 10)
	idx.Register(at(1, 5, 5))   // (0,0)
	idx.Register(at(2, 15, 5))  // (1,0)
	idx.Register(at(3, 15, 15)) // (1,1)
	idx.Register(at(4, 25, 5))  // (2,0)
	idx.Register(at(5, -5, -5)) // (-1,-1)

	assert.Equal(t, []uint32{1}, ids(idx.QueryRadius(geo.Point3D{X: 1, Y: 1}, 0)))
	assert.Equal(t, []uint32{1, 2, 3, 5}, ids(idx.QueryRadius(geo.Point3D{X: 1, Y: 1}, 1)))
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, ids(idx.QueryRadius(geo.Point3D{X: 1, Y: 1}, 2)))
	assert.Empty(t, idx.QueryRadius(geo.Point3D{X: 500, Y: 500}, 3))
	assert.Empty(t, idx.QueryRadius(geo.Point3D{}, -1))
}

func TestIndexQueryRadiusFuncStops(t *testing.T) {
	idx := NewIndex(geo.Point3D{}, 1)
	for i := range 10 {
		idx.Register(at(uint32(i+1), 0.5, 0.5))
	}

	visited := 0
	idx.QueryRadiusFunc(geo.Point3D{}, 1, func(Occupant) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

// TestIndexMatchesBruteForce replays random operations against the index
// and a naive map of positions and compares every query.
func TestIndexMatchesBruteForce(t *testing.T) {
	const cellSize = 5.0
	rng := rand.New(rand.NewPCG(1, 2))
	idx := NewIndex(geo.Point3D{X: -50, Y: -50}, cellSize)

	occupants := make([]*testOccupant, 40)
	for i := range occupants {
		occupants[i] = at(uint32(i+1), 0, 0)
	}
	model := make(map[uint32]*testOccupant)

	randomPos := func() geo.Point3D {
		return geo.Point3D{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
	}

	for step := range 2000 {
		o := occupants[rng.IntN(len(occupants))]
		switch rng.IntN(3) {
		case 0:
			o.pos = randomPos()
			idx.Register(o)
			model[o.id] = o
		case 1:
			idx.Unregister(o)
			delete(model, o.id)
		case 2:
			o.pos = randomPos()
			if _, ok := model[o.id]; ok {
				idx.UpdatePosition(o)
			}
		}

		// positions of unregistered occupants may drift; the index only
		// tracks registered ones
		require.Equal(t, len(model), idx.Len(), "step %d", step)

		q := randomPos()
		r := rng.IntN(4)
		centre := idx.KeyFor(q)
		var want []uint32
		for id, m := range model {
			k := idx.KeyFor(m.pos)
			if abs32(k.X-centre.X) <= int32(r) && abs32(k.Y-centre.Y) <= int32(r) {
				want = append(want, id)
			}
		}
		slices.Sort(want)

		got := ids(idx.QueryRadius(q, r))
		if len(want) == 0 {
			require.Empty(t, got, "step %d", step)
		} else {
			require.Equal(t, want, got, "step %d", step)
		}
	}

	for _, m := range model {
		key, ok := idx.BucketOf(m)
		require.True(t, ok)
		assert.Equal(t, idx.KeyFor(m.pos), key)
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func BenchmarkIndexUpdatePosition(b *testing.B) {
	idx := NewIndex(geo.Point3D{}, 8)
	occupants := make([]*testOccupant, 1000)
	for i := range occupants {
		occupants[i] = at(uint32(i+1), float64(i%100), float64(i/100))
		idx.Register(occupants[i])
	}

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		o := occupants[i%len(occupants)]
		o.pos.X += 0.7
		idx.UpdatePosition(o)
		i++
	}
}

func BenchmarkIndexQueryRadius(b *testing.B) {
	idx := NewIndex(geo.Point3D{}, 8)
	for i := range 1000 {
		idx.Register(at(uint32(i+1), float64(i%100), float64(i/10)))
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = idx.QueryRadius(geo.Point3D{X: 50, Y: 50}, 1)
	}
}

func TestDebugLoggingToggle(t *testing.T) {
	t.Cleanup(func() { EnableDebugLogging(false) })

	EnableDebugLogging(true)
	assert.True(t, IsDebugEnabled())

	idx := NewIndex(geo.Point3D{}, 4)
	o := at(1, 1, 1)
	idx.Register(o)
	o.pos = geo.Point3D{X: 9, Y: 9}
	assert.True(t, idx.UpdatePosition(o))
	key, ok := idx.BucketOf(o)
	require.True(t, ok)
	assert.Equal(t, idx.KeyFor(o.pos), key, "moves still apply with debug logs on")

	EnableDebugLogging(false)
	assert.False(t, IsDebugEnabled())
}
