// Package voronoi builds an anisotropy-corrected Voronoi diagram over stations
// and keeps an explicit station to cell mapping.
package voronoi

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/voronoimap/internal/geo"

	fortune "github.com/pzsz/voronoi"
)

// Unbounded is the ring entry standing for a vertex at infinity.
const Unbounded = -1

// MinStations is the smallest station count a diagram is built for.
const MinStations = 4

const (
	// frame sites sit on a square this many reaches away from the centre
	frameScale = 16.0
	// the clipping box of the sweep is this many reaches wide on each side
	boxScale = 64.0
	// frame square rotation, keeps frame sites off the axes of gridded inputs
	frameAngle = 0.3
)

var (
	// ErrTooFewStations is returned for fewer than MinStations stations.
	ErrTooFewStations = errors.New("too few stations for a voronoi diagram")
	// ErrCollinearStations is returned when all stations lie on one line.
	ErrCollinearStations = errors.New("stations are collinear")
	// ErrInvalidFactor is returned for a non-positive or non-finite scaling factor.
	ErrInvalidFactor = errors.New("invalid scaling factor")
	// ErrDiagram is returned when the sweep fails on the given sites.
	ErrDiagram = errors.New("voronoi diagram failed")
)

// PlanePoint is a station position after scaling: X = lat*factor, Y = lon.
type PlanePoint struct {
	X, Y float64
}

// Project maps a geographic point into the scaled plane.
func Project(p geo.GeoPoint, factor float64) PlanePoint {
	return PlanePoint{X: p.Lat * factor, Y: p.Lon}
}

// CellRing is an ordered list of vertex indices of one cell.
// It may contain Unbounded.
type CellRing []int

// IsUnbounded reports whether the ring reaches infinity.
func (r CellRing) IsUnbounded() bool {
	for _, v := range r {
		if v == Unbounded {
			return true
		}
	}
	return false
}

// Options tune diagram construction.
type Options struct {
	// Frame surrounds the stations with far sites so that hull stations get
	// finite cells. Without it hull cells stay unbounded.
	Frame bool
	// Bounds is the area the cells will be clipped to. Frame sites are kept
	// far enough away that they never own any point of it.
	Bounds []geo.GeoPoint
}

// Diagram is a Voronoi diagram in the scaled plane.
type Diagram struct {
	Factor   float64
	Vertices []PlanePoint
	// Cells are kept in sweep order, which is unrelated to station order.
	Cells []CellRing
	// Owner maps a station index to its index in Cells, or -1 when the
	// station has no cell of its own (an exact duplicate of an earlier one).
	Owner []int
}

// Geo converts vertex i back to geographic coordinates.
func (d *Diagram) Geo(i int) geo.GeoPoint {
	v := d.Vertices[i]
	return geo.GeoPoint{Lat: v.X / d.Factor, Lon: v.Y}
}

// Ring returns the cell ring owned by station i.
func (d *Diagram) Ring(station int) (CellRing, bool) {
	if station < 0 || station >= len(d.Owner) || d.Owner[station] < 0 {
		return nil, false
	}
	return d.Cells[d.Owner[station]], true
}

// Resolve converts ring indices to geographic vertices.
// Unbounded entries are skipped and reported by the second result.
func (d *Diagram) Resolve(ring CellRing) ([]geo.GeoPoint, bool) {
	pts := make([]geo.GeoPoint, 0, len(ring))
	unbounded := false
	for _, idx := range ring {
		if idx == Unbounded {
			unbounded = true
			continue
		}
		pts = append(pts, d.Geo(idx))
	}
	return pts, unbounded
}

// Build computes the diagram for stations scaled by factor.
func Build(stations []geo.NamedStation, factor float64, opts Options) (d *Diagram, err error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}

	owner := make(map[fortune.Vertex]int, len(stations))
	sites := make([]fortune.Vertex, 0, len(stations)+4)
	for i, s := range stations {
		p := Project(s.Point, factor)
		v := fortune.Vertex{X: p.X, Y: p.Y}
		if _, dup := owner[v]; dup {
			continue
		}
		owner[v] = i
		sites = append(sites, v)
	}

	if len(sites) < MinStations {
		return nil, fmt.Errorf("%w: got %d distinct of %d, need %d",
			ErrTooFewStations, len(sites), len(stations), MinStations)
	}

	ext := extentOf(sites)
	if ext.span == 0 || collinear(sites, ext.span) {
		return nil, fmt.Errorf("%w: %d distinct sites", ErrCollinearStations, len(sites))
	}

	reach := ext.reach(opts.Bounds, factor)
	if opts.Frame {
		r := frameScale * reach
		for k := 0; k < 4; k++ {
			a := frameAngle + float64(k)*math.Pi/2
			sites = append(sites, fortune.Vertex{X: ext.cx + r*math.Cos(a), Y: ext.cy + r*math.Sin(a)})
		}
	}

	half := boxScale * reach
	bbox := fortune.BBox{Xl: ext.cx - half, Xr: ext.cx + half, Yt: ext.cy - half, Yb: ext.cy + half}

	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: %v", ErrDiagram, r)
		}
	}()
	raw := fortune.ComputeDiagram(sites, bbox, false)

	d = &Diagram{
		Factor: factor,
		Owner:  make([]int, len(stations)),
	}
	for i := range d.Owner {
		d.Owner[i] = -1
	}

	w := ringWalker{
		bbox:  bbox,
		eps:   1e-9 * half,
		index: make(map[fortune.Vertex]int),
		d:     d,
	}
	for _, cell := range raw.Cells {
		station, ok := owner[cell.Site]
		if !ok {
			continue
		}
		d.Owner[station] = len(d.Cells)
		d.Cells = append(d.Cells, w.ring(cell))
	}

	return d, nil
}

type ringWalker struct {
	bbox  fortune.BBox
	eps   float64
	index map[fortune.Vertex]int
	d     *Diagram
}

// ring lists the start point of every half-edge of cell. A jump between the end
// of one half-edge and the start of the next, or a vertex on the sweep box,
// means the cell is open there.
func (w *ringWalker) ring(cell *fortune.Cell) CellRing {
	n := len(cell.Halfedges)
	if n == 0 {
		return CellRing{Unbounded}
	}

	ring := make(CellRing, 0, n+1)
	push := func(id int) {
		if id == Unbounded && len(ring) > 0 && ring[len(ring)-1] == Unbounded {
			return
		}
		ring = append(ring, id)
	}

	for i, he := range cell.Halfedges {
		push(w.vertex(he.GetStartpoint()))

		end := he.GetEndpoint()
		next := cell.Halfedges[(i+1)%n].GetStartpoint()
		if w.onBox(end) || !w.same(end, next) {
			push(Unbounded)
		}
	}

	if len(ring) > 1 && ring[0] == Unbounded && ring[len(ring)-1] == Unbounded {
		ring = ring[:len(ring)-1]
	}
	return ring
}

func (w *ringWalker) vertex(v fortune.Vertex) int {
	if math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || w.onBox(v) {
		return Unbounded
	}
	if id, ok := w.index[v]; ok {
		return id
	}

	id := len(w.d.Vertices)
	w.index[v] = id
	w.d.Vertices = append(w.d.Vertices, PlanePoint{X: v.X, Y: v.Y})
	return id
}

func (w *ringWalker) onBox(v fortune.Vertex) bool {
	if math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
		return true
	}
	return math.Abs(v.X-w.bbox.Xl) < w.eps || math.Abs(v.X-w.bbox.Xr) < w.eps ||
		math.Abs(v.Y-w.bbox.Yt) < w.eps || math.Abs(v.Y-w.bbox.Yb) < w.eps
}

func (w *ringWalker) same(a, b fortune.Vertex) bool {
	return math.Abs(a.X-b.X) < w.eps && math.Abs(a.Y-b.Y) < w.eps
}

type extent struct {
	cx, cy float64
	span   float64
}

func extentOf(sites []fortune.Vertex) extent {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range sites {
		minX, maxX = math.Min(minX, s.X), math.Max(maxX, s.X)
		minY, maxY = math.Min(minY, s.Y), math.Max(maxY, s.Y)
	}

	return extent{
		cx:   (minX + maxX) / 2,
		cy:   (minY + maxY) / 2,
		span: math.Max(maxX-minX, maxY-minY),
	}
}

// reach is the distance scale for frame sites and the sweep box. A bounds
// point at distance b from the centre is nearer to some station than to any
// frame site as long as the frame radius exceeds 2*b + span.
func (e extent) reach(bounds []geo.GeoPoint, factor float64) float64 {
	far := 0.0
	for _, g := range bounds {
		p := Project(g, factor)
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		far = math.Max(far, math.Hypot(p.X-e.cx, p.Y-e.cy))
	}
	return math.Max(e.span, 2*far+e.span)
}

// collinear reports whether every site lies within a tiny distance of the line
// through the first site and the site farthest from it.
func collinear(sites []fortune.Vertex, span float64) bool {
	if len(sites) < 3 {
		return true
	}

	a := sites[0]
	b, far := a, 0.0
	for _, s := range sites[1:] {
		if d := math.Hypot(s.X-a.X, s.Y-a.Y); d > far {
			b, far = s, d
		}
	}

	tol := 1e-12 * span
	for _, s := range sites {
		cross := (b.X-a.X)*(s.Y-a.Y) - (b.Y-a.Y)*(s.X-a.X)
		if math.Abs(cross)/far > tol {
			return false
		}
	}
	return true
}
