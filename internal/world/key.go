package world

import (
	"math"

	"github.com/udisondev/navsim/internal/geo"
)

// BucketKey addresses one bucket of the spatial hash.
type BucketKey struct {
	X, Y int32
}

// keyFor converts a world position to bucket coordinates.
// Formula: floor((pos - origin) / cellSize) per planar axis.
func keyFor(origin geo.Point3D, cellSize float64, p geo.Point3D) BucketKey {
	return BucketKey{
		X: int32(math.Floor((p.X - origin.X) / cellSize)),
		Y: int32(math.Floor((p.Y - origin.Y) / cellSize)),
	}
}

// Centre returns the world position of the bucket centre (height of origin).
func (k BucketKey) Centre(origin geo.Point3D, cellSize float64) geo.Point3D {
	return geo.Point3D{
		X: origin.X + (float64(k.X)+0.5)*cellSize,
		Y: origin.Y + (float64(k.Y)+0.5)*cellSize,
		Z: origin.Z,
	}
}
