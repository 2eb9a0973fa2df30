package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/paulmach/orb"

	"github.com/udisondev/navsim/internal/geo"
)

// allCategories matches every shape category.
const allCategories = ^uint(0)

// Space is a static obstacle world on a Chipmunk space. It answers the
// overlap and ray queries of the walkability grid and agent sight.
//
// Polygons are stored as their convex hull. Use the geometry host when
// obstacles are concave.
type Space struct {
	space  *cp.Space
	shapes int
}

// NewSpace creates an empty obstacle space.
func NewSpace() *Space {
	return &Space{space: cp.NewSpace()}
}

// Len returns the number of obstacle shapes.
func (s *Space) Len() int {
	return s.shapes
}

// AddBox adds an axis-aligned box spanning lo..hi on the walkable plane.
func (s *Space) AddBox(lo, hi geo.Point3D, layer geo.Mask) error {
	if hi.X <= lo.X || hi.Y <= lo.Y {
		return fmt.Errorf("adding box %v..%v: empty extent", lo, hi)
	}
	bb := cp.BB{L: lo.X, B: lo.Y, R: hi.X, T: hi.Y}
	s.add(cp.NewBox2(s.space.StaticBody, bb, 0), layer)
	return nil
}

// AddCircle adds a disc obstacle.
func (s *Space) AddCircle(centre geo.Point3D, radius float64, layer geo.Mask) error {
	if radius <= 0 {
		return fmt.Errorf("adding circle at %v: radius %.2f must be positive", centre, radius)
	}
	s.add(cp.NewCircle(s.space.StaticBody, radius, toVector(centre)), layer)
	return nil
}

// AddPolygon adds the convex hull of the outer ring of poly. Holes are ignored.
func (s *Space) AddPolygon(poly orb.Polygon, layer geo.Mask) error {
	if len(poly) == 0 {
		return fmt.Errorf("adding polygon: no rings")
	}
	hull := hullOf(poly[0])
	if len(hull) < 3 {
		return fmt.Errorf("adding polygon: %d points span no area", len(poly[0]))
	}
	s.add(cp.NewPolyShapeRaw(s.space.StaticBody, len(hull), hull, 0), layer)
	return nil
}

// AddSegment adds a thick line obstacle, e.g. a thin wall.
func (s *Space) AddSegment(a, b geo.Point3D, thickness float64, layer geo.Mask) error {
	if a.PlanarDistance(b) == 0 {
		return fmt.Errorf("adding segment at %v: zero length", a)
	}
	s.add(cp.NewSegment(s.space.StaticBody, toVector(a), toVector(b), thickness/2), layer)
	return nil
}

func (s *Space) add(shape *cp.Shape, layer geo.Mask) {
	shape.SetFilter(cp.ShapeFilter{
		Group:      0,
		Categories: uint(layer),
		Mask:       allCategories,
	})
	s.space.AddShape(shape)
	s.shapes++
}

// Overlap reports whether an obstacle on mask is closer than radius to p.
func (s *Space) Overlap(p geo.Point3D, radius float64, mask geo.Mask) bool {
	info := s.space.PointQueryNearest(toVector(p), radius, queryFilter(mask))
	return info != nil && info.Shape != nil
}

// Raycast reports whether the segment origin..origin+dir*maxDist touches an
// obstacle on mask.
func (s *Space) Raycast(origin, dir geo.Point3D, maxDist float64, mask geo.Mask) bool {
	if maxDist <= 0 || dir.Len() == 0 {
		return false
	}
	end := origin.Add(dir.Normalize().Scale(maxDist))
	info := s.space.SegmentQueryFirst(toVector(origin), toVector(end), 0, queryFilter(mask))
	return info.Shape != nil
}

func queryFilter(mask geo.Mask) cp.ShapeFilter {
	return cp.ShapeFilter{
		Group:      0,
		Categories: allCategories,
		Mask:       uint(mask),
	}
}

func toVector(p geo.Point3D) cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}

// hullOf returns the counter-clockwise convex hull of ring.
func hullOf(ring orb.Ring) []cp.Vector {
	if len(ring) == 0 {
		return nil
	}
	verts := make([]cp.Vector, len(ring))
	for i, p := range ring {
		verts[i] = cp.Vector{X: p[0], Y: p[1]}
	}
	n := cp.ConvexHull(len(verts), verts, nil, 0)
	return verts[:n]
}
