// Package geometry answers obstacle queries against exact 2D polygons.
// Obstacles are indexed by bounding box in an R-tree; candidates are
// then tested with planar geometry, so concave shapes are handled as
// authored.
package geometry

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/udisondev/navsim/internal/geo"
)

// minExtent pads degenerate bounding boxes, rtreego rejects zero lengths.
const minExtent = 1e-9

// circleSides is the polygon resolution of AddCircle.
const circleSides = 24

// Obstacle is one polygon stored in the tree.
type Obstacle struct {
	Polygon orb.Polygon
	Layer   geo.Mask
	bbox    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (o *Obstacle) Bounds() rtreego.Rect {
	return o.bbox
}

// Host stores static obstacle polygons.
type Host struct {
	tree  *rtreego.Rtree
	count int
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{tree: rtreego.NewTree(2, 25, 50)}
}

// Len returns the number of obstacles.
func (h *Host) Len() int {
	return h.count
}

// AddPolygon adds poly on layer. Rings are closed if needed; the outer ring
// needs at least three distinct points.
func (h *Host) AddPolygon(poly orb.Polygon, layer geo.Mask) error {
	if len(poly) == 0 {
		return fmt.Errorf("adding polygon: no rings")
	}
	closed := make(orb.Polygon, 0, len(poly))
	for i, ring := range poly {
		r := closeRing(ring)
		if len(r) < 4 {
			return fmt.Errorf("adding polygon: ring %d has %d points", i, len(ring))
		}
		closed = append(closed, r)
	}

	bbox, err := boundsRect(closed.Bound(), 0)
	if err != nil {
		return fmt.Errorf("adding polygon: %w", err)
	}
	h.tree.Insert(&Obstacle{Polygon: closed, Layer: layer, bbox: bbox})
	h.count++
	return nil
}

// AddBox adds an axis-aligned box spanning lo..hi.
func (h *Host) AddBox(lo, hi geo.Point3D, layer geo.Mask) error {
	if hi.X <= lo.X || hi.Y <= lo.Y {
		return fmt.Errorf("adding box %v..%v: empty extent", lo, hi)
	}
	ring := orb.Ring{
		{lo.X, lo.Y}, {hi.X, lo.Y}, {hi.X, hi.Y}, {lo.X, hi.Y}, {lo.X, lo.Y},
	}
	return h.AddPolygon(orb.Polygon{ring}, layer)
}

// AddCircle adds a regular polygon circumscribing the circle.
func (h *Host) AddCircle(centre geo.Point3D, radius float64, layer geo.Mask) error {
	if radius <= 0 {
		return fmt.Errorf("adding circle at %v: radius %.2f must be positive", centre, radius)
	}
	// circumradius so the polygon contains the whole disc
	r := radius / math.Cos(math.Pi/circleSides)
	ring := make(orb.Ring, 0, circleSides+1)
	for i := range circleSides {
		a := 2 * math.Pi * float64(i) / circleSides
		ring = append(ring, orb.Point{centre.X + r*math.Cos(a), centre.Y + r*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return h.AddPolygon(orb.Polygon{ring}, layer)
}

// Overlap reports whether an obstacle on mask contains p or has an edge
// closer than radius.
func (h *Host) Overlap(p geo.Point3D, radius float64, mask geo.Mask) bool {
	pt := orb.Point{p.X, p.Y}
	rect, err := boundsRect(orb.Bound{Min: pt, Max: pt}, math.Max(radius, 0))
	if err != nil {
		return false
	}

	for _, item := range h.tree.SearchIntersect(rect) {
		o := item.(*Obstacle)
		if o.Layer&mask == 0 {
			continue
		}
		if planar.PolygonContains(o.Polygon, pt) {
			return true
		}
		if radius > 0 && edgeWithin(o.Polygon, pt, radius) {
			return true
		}
	}
	return false
}

// Raycast reports whether the segment origin..origin+dir*maxDist crosses an
// obstacle edge on mask or ends inside an obstacle.
func (h *Host) Raycast(origin, dir geo.Point3D, maxDist float64, mask geo.Mask) bool {
	if maxDist <= 0 || dir.Len() == 0 {
		return false
	}
	end := origin.Add(dir.Normalize().Scale(maxDist))
	a := orb.Point{origin.X, origin.Y}
	b := orb.Point{end.X, end.Y}

	rect, err := boundsRect(orb.MultiPoint{a, b}.Bound(), 0)
	if err != nil {
		return false
	}

	for _, item := range h.tree.SearchIntersect(rect) {
		o := item.(*Obstacle)
		if o.Layer&mask == 0 {
			continue
		}
		if planar.PolygonContains(o.Polygon, a) || planar.PolygonContains(o.Polygon, b) {
			return true
		}
		if crossesPolygon(a, b, o.Polygon) {
			return true
		}
	}
	return false
}

func edgeWithin(poly orb.Polygon, pt orb.Point, radius float64) bool {
	for _, ring := range poly {
		for i := 1; i < len(ring); i++ {
			if planar.DistanceFromSegment(ring[i-1], ring[i], pt) < radius {
				return true
			}
		}
	}
	return false
}

func crossesPolygon(a, b orb.Point, poly orb.Polygon) bool {
	for _, ring := range poly {
		for i := 1; i < len(ring); i++ {
			if segmentsIntersect(a, b, ring[i-1], ring[i]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect includes touching and collinear overlap.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}

func direction(a, b, c orb.Point) float64 {
	return (c[0]-a[0])*(b[1]-a[1]) - (b[0]-a[0])*(c[1]-a[1])
}

// onSegment reports whether p, known collinear with a..b, lies within its box.
func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r.Closed() {
		return r
	}
	closed := make(orb.Ring, len(r), len(r)+1)
	copy(closed, r)
	return append(closed, r[0])
}

func boundsRect(b orb.Bound, pad float64) (rtreego.Rect, error) {
	b = b.Pad(pad)
	w := math.Max(b.Max[0]-b.Min[0], minExtent)
	d := math.Max(b.Max[1]-b.Min[1], minExtent)
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, d})
}
