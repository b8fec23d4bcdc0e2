// Package geo holds geographic value types, distance helpers and GeoJSON conversion.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p GeoPoint) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// Orb converts the point to orb ordering (lon, lat).
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb point (lon, lat) back to a GeoPoint.
func FromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// NamedStation is a point of interest with a display label.
type NamedStation struct {
	Point GeoPoint `json:"point" yaml:"point"`
	Label string   `json:"label" yaml:"label"`
}

// Boundary is the enclosing polygon of a partition and its centroid.
// Ring is open: the first vertex is not repeated at the end.
type Boundary struct {
	Ring     []GeoPoint
	Centroid GeoPoint
}

// NewBoundary builds a boundary from a ring and derives its area centroid.
// A closing vertex equal to the first one is dropped.
func NewBoundary(ring []GeoPoint) Boundary {
	open := OpenRing(ring)
	b := Boundary{Ring: open}
	if len(open) == 0 {
		return b
	}

	c, _ := planar.CentroidArea(orb.Polygon{toOrbRing(open)})
	b.Centroid = FromOrb(c)
	return b
}

// OpenRing returns ring without a trailing copy of its first vertex.
func OpenRing(ring []GeoPoint) []GeoPoint {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}

	out := make([]GeoPoint, n)
	copy(out, ring[:n])
	return out
}

// ClosedRing returns ring with its first vertex repeated at the end.
func ClosedRing(ring []GeoPoint) []GeoPoint {
	ring = OpenRing(ring)
	if len(ring) == 0 {
		return ring
	}

	return append(ring, ring[0])
}

func toOrbRing(ring []GeoPoint) orb.Ring {
	r := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		r = append(r, p.Orb())
	}
	if len(r) > 0 {
		r = append(r, r[0])
	}

	return r
}
