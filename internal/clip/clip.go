// Package clip intersects Voronoi cells with a boundary polygon.
//
// A cell whose intersection with the boundary is not one simple polygon is
// replaced by the convex hull of the intersection vertices. That hull is a
// visual approximation, reported through Outcome and Region.Approximate.
package clip

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/voronoimap/internal/geo"

	"github.com/ctessum/geom"
)

// eps is the coordinate tolerance, in degrees, for treating vertices as equal.
const eps = 1e-12

// ErrBoundaryTooSmall is returned for a boundary with fewer than 3 distinct vertices.
var ErrBoundaryTooSmall = errors.New("boundary polygon needs at least 3 vertices")

// Outcome tells how a cell was turned into a region.
type Outcome int

const (
	// Degenerate cells are unbounded or have fewer than 3 distinct vertices.
	Degenerate Outcome = iota
	// Exact means the intersection is a single simple polygon.
	Exact
	// HullFallback means the intersection was split or otherwise not simple
	// and its convex hull is used instead.
	HullFallback
	// Empty means the intersection has no area, not even after the fallback.
	Empty
)

func (o Outcome) String() string {
	switch o {
	case Degenerate:
		return "degenerate"
	case Exact:
		return "exact"
	case HullFallback:
		return "hull_fallback"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// HasRegion reports whether the outcome produces a region.
func (o Outcome) HasRegion() bool {
	return o == Exact || o == HullFallback
}

// Cell is a Voronoi cell resolved to geographic vertices.
type Cell struct {
	Vertices  []geo.GeoPoint
	Unbounded bool
}

// Region is a cell clipped to the boundary. Ring is open.
type Region struct {
	Ring        []geo.GeoPoint
	Approximate bool
}

// Clipper intersects cells with one boundary polygon.
type Clipper struct {
	boundary geom.Polygon
}

// New prepares a clipper for boundary.
func New(b geo.Boundary) (*Clipper, error) {
	ring := distinct(b.Ring)
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBoundaryTooSmall, len(ring))
	}

	return &Clipper{boundary: toPolygon(ring)}, nil
}

// Clip intersects cell with the boundary.
func (c *Clipper) Clip(cell Cell) (Region, Outcome) {
	if cell.Unbounded {
		return Region{}, Degenerate
	}
	ring := distinct(cell.Vertices)
	if len(ring) < 3 {
		return Region{}, Degenerate
	}

	result := toPolygon(ring).Intersection(c.boundary)

	var parts [][]geo.GeoPoint
	var all []geo.GeoPoint
	for _, poly := range result.Polygons() {
		for _, path := range poly {
			pts := fromPath(path)
			all = append(all, pts...)
			if len(pts) >= 3 {
				parts = append(parts, pts)
			}
		}
	}

	if len(parts) == 1 && simple(parts[0]) {
		return Region{Ring: parts[0]}, Exact
	}

	hull := ConvexHull(all)
	if len(hull) < 3 {
		return Region{}, Empty
	}
	return Region{Ring: hull, Approximate: true}, HullFallback
}

// simple reports whether ring neither visits a vertex twice nor has two
// non-adjacent edges crossing each other. Edges that only touch or overlap
// along a line are not counted as crossings.
func simple(ring []geo.GeoPoint) bool {
	seen := make(map[geo.GeoPoint]struct{}, len(ring))
	for _, p := range ring {
		if _, ok := seen[p]; ok {
			return false
		}
		seen[p] = struct{}{}
	}

	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if crosses(a, b, ring[j], ring[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// crosses reports whether segments ab and cd cross at a single interior point.
func crosses(a, b, c, d geo.GeoPoint) bool {
	d1, d2 := cross(a, b, c), cross(a, b, d)
	d3, d4 := cross(c, d, a), cross(c, d, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func toPolygon(ring []geo.GeoPoint) geom.Polygon {
	path := make([]geom.Point, 0, len(ring))
	for _, p := range ring {
		path = append(path, geom.Point{X: p.Lon, Y: p.Lat})
	}
	return geom.Polygon{path}
}

func fromPath(path []geom.Point) []geo.GeoPoint {
	pts := make([]geo.GeoPoint, 0, len(path))
	for _, p := range path {
		pts = append(pts, geo.GeoPoint{Lat: p.Y, Lon: p.X})
	}
	return distinct(pts)
}

// distinct drops consecutive near-equal vertices and the closing vertex.
func distinct(ring []geo.GeoPoint) []geo.GeoPoint {
	out := make([]geo.GeoPoint, 0, len(ring))
	for _, p := range ring {
		if !p.IsFinite() {
			continue
		}
		if len(out) > 0 && near(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && near(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func near(a, b geo.GeoPoint) bool {
	return math.Abs(a.Lat-b.Lat) <= eps && math.Abs(a.Lon-b.Lon) <= eps
}
