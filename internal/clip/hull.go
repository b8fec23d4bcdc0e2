package clip

import (
	"math"
	"sort"

	"github.com/woozymasta/voronoimap/internal/geo"
)

// ConvexHull returns the convex hull of pts in counterclockwise order
// (lon as x, lat as y), without repeating the first vertex.
// Collinear points on hull edges are dropped.
func ConvexHull(pts []geo.GeoPoint) []geo.GeoPoint {
	sorted := make([]geo.GeoPoint, 0, len(pts))
	for _, p := range pts {
		if p.IsFinite() {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lon != sorted[j].Lon {
			return sorted[i].Lon < sorted[j].Lon
		}
		return sorted[i].Lat < sorted[j].Lat
	})
	sorted = distinct(sorted)
	if len(sorted) < 3 {
		return sorted
	}

	hull := make([]geo.GeoPoint, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}

// Area returns the planar area of an open or closed ring in square degrees.
func Area(ring []geo.GeoPoint) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return math.Abs(sum) / 2
}

func cross(o, a, b geo.GeoPoint) float64 {
	return (a.Lon-o.Lon)*(b.Lat-o.Lat) - (a.Lat-o.Lat)*(b.Lon-o.Lon)
}
