package geo

import "math"

// Point3D represents a position in world space.
// X and Y span the walkable plane, Z is height.
type Point3D struct {
	X, Y, Z float64
}

// Add returns p + o.
func (p Point3D) Add(o Point3D) Point3D {
	return Point3D{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns p - o.
func (p Point3D) Sub(o Point3D) Point3D {
	return Point3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Scale returns p * k.
func (p Point3D) Scale(k float64) Point3D {
	return Point3D{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
}

// Len returns the Euclidean length of p.
func (p Point3D) Len() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Normalize returns p scaled to unit length (zero vector stays zero).
func (p Point3D) Normalize() Point3D {
	l := p.Len()
	if l == 0 {
		return Point3D{}
	}
	return p.Scale(1 / l)
}

// Distance returns the Euclidean distance between two points.
func (p Point3D) Distance(o Point3D) float64 {
	return p.Sub(o).Len()
}

// PlanarDistance ignores height.
func (p Point3D) PlanarDistance(o Point3D) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp interpolates between p and o, t in [0,1].
func (p Point3D) Lerp(o Point3D, t float64) Point3D {
	return Point3D{
		X: p.X + (o.X-p.X)*t,
		Y: p.Y + (o.Y-p.Y)*t,
		Z: p.Z + (o.Z-p.Z)*t,
	}
}

// WithZ returns p with its height replaced.
func (p Point3D) WithZ(z float64) Point3D {
	p.Z = z
	return p
}
