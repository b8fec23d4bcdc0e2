package voronoi

import (
	"errors"
	"math"
	"testing"

	"github.com/woozymasta/voronoimap/internal/geo"
)

func station(lat, lon float64, label string) geo.NamedStation {
	return geo.NamedStation{Point: geo.GeoPoint{Lat: lat, Lon: lon}, Label: label}
}

func squareStations() []geo.NamedStation {
	return []geo.NamedStation{
		station(0, 0, "sw"),
		station(0, 1, "se"),
		station(1, 0, "nw"),
		station(1, 1, "ne"),
	}
}

// inside is an even-odd point in polygon test.
func inside(p geo.GeoPoint, ring []geo.GeoPoint) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lon < (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			in = !in
		}
	}
	return in
}

func TestBuildTooFewStations(t *testing.T) {
	_, err := Build(squareStations()[:3], 1, Options{Frame: true})
	if !errors.Is(err, ErrTooFewStations) {
		t.Fatalf("Build error = %v, want ErrTooFewStations", err)
	}
}

func TestBuildCollinearStations(t *testing.T) {
	stations := []geo.NamedStation{
		station(0, 0, "a"), station(1, 1, "b"), station(2, 2, "c"), station(3, 3, "d"), station(4, 4, "e"),
	}
	_, err := Build(stations, 1, Options{Frame: true})
	if !errors.Is(err, ErrCollinearStations) {
		t.Fatalf("Build error = %v, want ErrCollinearStations", err)
	}
}

func TestBuildInvalidFactor(t *testing.T) {
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Build(squareStations(), f, Options{}); !errors.Is(err, ErrInvalidFactor) {
			t.Fatalf("Build(factor=%v) error = %v, want ErrInvalidFactor", f, err)
		}
	}
}

func TestBuildFramedSquare(t *testing.T) {
	stations := squareStations()
	d, err := Build(stations, 1, Options{Frame: true})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(d.Owner) != len(stations) {
		t.Fatalf("len(Owner) = %d, want %d", len(d.Owner), len(stations))
	}
	if len(d.Cells) != len(stations) {
		t.Fatalf("len(Cells) = %d, want %d", len(d.Cells), len(stations))
	}

	seen := make(map[int]bool)
	for i, s := range stations {
		ring, ok := d.Ring(i)
		if !ok {
			t.Fatalf("station %d has no cell", i)
		}
		if seen[d.Owner[i]] {
			t.Fatalf("cell %d owned twice", d.Owner[i])
		}
		seen[d.Owner[i]] = true

		if ring.IsUnbounded() {
			t.Fatalf("framed cell of station %d is unbounded: %v", i, ring)
		}
		pts, unbounded := d.Resolve(ring)
		if unbounded || len(pts) < 3 {
			t.Fatalf("station %d resolved to %d points, unbounded=%v", i, len(pts), unbounded)
		}
		if !inside(s.Point, pts) {
			t.Fatalf("station %s not inside its own cell %v", s.Label, pts)
		}

		center := false
		for _, p := range pts {
			if math.Abs(p.Lat-0.5) < 1e-6 && math.Abs(p.Lon-0.5) < 1e-6 {
				center = true
			}
		}
		if !center {
			t.Fatalf("cell of %s misses the square centre: %v", s.Label, pts)
		}
	}
}

func TestBuildUnframedHullIsUnbounded(t *testing.T) {
	stations := []geo.NamedStation{
		station(0, 0, "sw"),
		station(0, 2, "se"),
		station(1, 1, "center"),
		station(2, 0, "nw"),
		station(2, 2, "ne"),
	}
	d, err := Build(stations, 1, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	for i := range stations {
		ring, ok := d.Ring(i)
		if !ok {
			t.Fatalf("station %d has no cell", i)
		}
		if got, want := ring.IsUnbounded(), i != 2; got != want {
			t.Fatalf("station %s unbounded = %v, want %v (ring %v)", stations[i].Label, got, want, ring)
		}
	}

	ring, _ := d.Ring(2)
	pts, _ := d.Resolve(ring)
	if len(pts) != 4 {
		t.Fatalf("center cell has %d vertices, want 4: %v", len(pts), pts)
	}
	want := []geo.GeoPoint{{Lat: 1, Lon: 0}, {Lat: 2, Lon: 1}, {Lat: 1, Lon: 2}, {Lat: 0, Lon: 1}}
	for _, w := range want {
		found := false
		for _, p := range pts {
			if math.Abs(p.Lat-w.Lat) < 1e-9 && math.Abs(p.Lon-w.Lon) < 1e-9 {
				found = true
			}
		}
		if !found {
			t.Fatalf("center cell %v misses vertex %+v", pts, w)
		}
	}
}

func TestBuildOwnerFollowsStationsNotSweepOrder(t *testing.T) {
	stations := []geo.NamedStation{
		station(5, 5, "a"),
		station(-3, 2, "b"),
		station(1, -4, "c"),
		station(0.5, 0.2, "d"),
		station(4, -1, "e"),
		station(-2, -3, "f"),
	}
	reversed := make([]geo.NamedStation, len(stations))
	for i, s := range stations {
		reversed[len(stations)-1-i] = s
	}

	for _, set := range [][]geo.NamedStation{stations, reversed} {
		d, err := Build(set, 1.3, Options{Frame: true})
		if err != nil {
			t.Fatalf("Build error: %v", err)
		}
		for i, s := range set {
			ring, ok := d.Ring(i)
			if !ok {
				t.Fatalf("station %s has no cell", s.Label)
			}
			pts, _ := d.Resolve(ring)
			if !inside(s.Point, pts) {
				t.Fatalf("station %s not inside the cell mapped to it", s.Label)
			}
		}
	}
}

func TestBuildDuplicateStation(t *testing.T) {
	stations := append(squareStations(), station(1, 1, "ne-copy"))
	d, err := Build(stations, 1, Options{Frame: true})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if d.Owner[4] != -1 {
		t.Fatalf("duplicate station owner = %d, want -1", d.Owner[4])
	}
	if _, ok := d.Ring(4); ok {
		t.Fatalf("duplicate station should have no ring")
	}
	if _, ok := d.Ring(3); !ok {
		t.Fatalf("original station lost its ring")
	}
}

func TestBuildTooFewDistinctStations(t *testing.T) {
	stations := append(squareStations()[:3], station(1, 0, "nw-copy"))
	_, err := Build(stations, 1, Options{Frame: true})
	if !errors.Is(err, ErrTooFewStations) {
		t.Fatalf("Build error = %v, want ErrTooFewStations", err)
	}
}

func TestBuildFrameStaysOutsideBounds(t *testing.T) {
	stations := []geo.NamedStation{
		station(0.5, 0.5, "c"),
		station(0.505, 0.492, "a"),
		station(0.495, 0.507, "b"),
		station(0.509, 0.508, "d"),
		station(0.491, 0.493, "e"),
	}
	bounds := []geo.GeoPoint{{Lat: -1, Lon: -1}, {Lat: -1, Lon: 2}, {Lat: 2, Lon: 2}, {Lat: 2, Lon: -1}}

	d, err := Build(stations, 1, Options{Frame: true, Bounds: bounds})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	cells := make([][]geo.GeoPoint, 0, len(stations))
	for i := range stations {
		ring, ok := d.Ring(i)
		if !ok || ring.IsUnbounded() {
			t.Fatalf("station %d has no finite cell: %v", i, ring)
		}
		pts, _ := d.Resolve(ring)
		cells = append(cells, pts)
	}

	// sample the bounds on a grid offset from every cell edge
	for lat := -0.987; lat < 2; lat += 0.25 {
		for lon := -0.993; lon < 2; lon += 0.25 {
			p := geo.GeoPoint{Lat: lat, Lon: lon}
			owned := false
			for _, c := range cells {
				if inside(p, c) {
					owned = true
					break
				}
			}
			if !owned {
				t.Fatalf("point %+v inside bounds belongs to no station cell", p)
			}
		}
	}
}

func TestGeoInvertsScaling(t *testing.T) {
	d := &Diagram{Factor: 2, Vertices: []PlanePoint{{X: 3, Y: 7}}}
	if got := d.Geo(0); got != (geo.GeoPoint{Lat: 1.5, Lon: 7}) {
		t.Fatalf("Geo(0) = %+v, want (1.5, 7)", got)
	}
	if p := Project(geo.GeoPoint{Lat: 1.5, Lon: 7}, 2); p != (PlanePoint{X: 3, Y: 7}) {
		t.Fatalf("Project = %+v, want (3, 7)", p)
	}
}

func TestResolveReportsUnbounded(t *testing.T) {
	d := &Diagram{Factor: 1, Vertices: []PlanePoint{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	pts, unbounded := d.Resolve(CellRing{0, Unbounded, 1})
	if !unbounded || len(pts) != 2 {
		t.Fatalf("Resolve = %v, %v; want 2 points and unbounded", pts, unbounded)
	}
}
