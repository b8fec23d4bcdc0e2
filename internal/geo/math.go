package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371008.8

// DefaultDelta is the latitude/longitude step, in degrees, used to sample
// local ground distances around a centroid.
const DefaultDelta = 0.001

// minLonDistance is the smallest longitude span, in meters, still treated as non-zero.
const minLonDistance = 1e-6

var (
	// ErrZeroLonDistance is returned when a degree of longitude spans no ground
	// distance at the centroid (a pole).
	ErrZeroLonDistance = errors.New("longitude distance is zero at centroid")
	// ErrInvalidCentroid is returned for a centroid with non-finite or out of range coordinates.
	ErrInvalidCentroid = errors.New("invalid centroid")
)

// Haversine returns the great circle distance between a and b in meters.
func Haversine(a, b GeoPoint) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * EarthRadius
}

// ScalingFactor returns the ratio of the ground distance covered by delta degrees
// of latitude to the distance covered by delta degrees of longitude at c.
//
// Multiplying latitudes by the factor makes both axes locally comparable, which
// holds for boundaries of city scale. A non-positive delta selects DefaultDelta.
func ScalingFactor(c GeoPoint, delta float64) (float64, error) {
	if !c.IsFinite() || math.Abs(c.Lat) > 90 {
		return 0, fmt.Errorf("%w: %+v", ErrInvalidCentroid, c)
	}
	if delta <= 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = DefaultDelta
	}

	latDist := Haversine(c, GeoPoint{Lat: c.Lat + delta, Lon: c.Lon})
	lonDist := Haversine(c, GeoPoint{Lat: c.Lat, Lon: c.Lon + delta})
	if lonDist < minLonDistance || math.IsNaN(lonDist) {
		return 0, fmt.Errorf("%w: lat=%g", ErrZeroLonDistance, c.Lat)
	}

	return latDist / lonDist, nil
}
