package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultLabelKey is the feature property used for station labels.
const DefaultLabelKey = "name"

var (
	// ErrNoStations is returned when a document holds no usable station geometry.
	ErrNoStations = errors.New("geojson: no stations found")
	// ErrNoBoundary is returned when a document holds no polygon.
	ErrNoBoundary = errors.New("geojson: no boundary polygon found")
)

// decodeFeatures accepts a FeatureCollection, a single Feature or a bare geometry.
func decodeFeatures(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	switch strings.ToLower(head.Type) {
	case "featurecollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		return fc.Features, nil

	case "feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		return []*geojson.Feature{f}, nil

	case "":
		return nil, errors.New("geojson: missing type")

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}

// StationsFromGeoJSON extracts named stations from a GeoJSON document.
//
// Points and multipoints are used as is; areal features contribute their
// area centroid. Labels come from labelKey (DefaultLabelKey when empty).
func StationsFromGeoJSON(data []byte, labelKey string) ([]NamedStation, error) {
	if labelKey == "" {
		labelKey = DefaultLabelKey
	}

	features, err := decodeFeatures(data)
	if err != nil {
		return nil, err
	}

	var stations []NamedStation
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		label := f.Properties.MustString(labelKey, "")

		switch g := f.Geometry.(type) {
		case orb.Point:
			stations = append(stations, NamedStation{Point: FromOrb(g), Label: label})
		case orb.MultiPoint:
			for _, p := range g {
				stations = append(stations, NamedStation{Point: FromOrb(p), Label: label})
			}
		case orb.Polygon, orb.MultiPolygon:
			c, _ := planar.CentroidArea(g)
			stations = append(stations, NamedStation{Point: FromOrb(c), Label: label})
		}
	}

	if len(stations) == 0 {
		return nil, ErrNoStations
	}
	return stations, nil
}

// BoundaryFromGeoJSON returns the outer ring of the largest polygon in a GeoJSON document.
func BoundaryFromGeoJSON(data []byte) (Boundary, error) {
	features, err := decodeFeatures(data)
	if err != nil {
		return Boundary{}, err
	}

	var best orb.Ring
	bestArea := -1.0
	consider := func(p orb.Polygon) {
		if len(p) == 0 || len(p[0]) == 0 {
			return
		}
		if a := math.Abs(planar.Area(orb.Polygon{p[0]})); a > bestArea {
			best, bestArea = p[0], a
		}
	}

	for _, f := range features {
		if f == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			consider(g)
		case orb.MultiPolygon:
			for _, p := range g {
				consider(p)
			}
		}
	}

	if best == nil {
		return Boundary{}, ErrNoBoundary
	}

	ring := make([]GeoPoint, 0, len(best))
	for _, p := range best {
		ring = append(ring, FromOrb(p))
	}
	return NewBoundary(ring), nil
}

// StationFeature encodes a station as a GeoJSON point feature.
func StationFeature(s NamedStation, index int) *geojson.Feature {
	f := geojson.NewFeature(s.Point.Orb())
	f.Properties["name"] = s.Label
	f.Properties["index"] = index
	return f
}

// RingFeature encodes an open ring as a closed GeoJSON polygon feature.
func RingFeature(ring []GeoPoint) *geojson.Feature {
	closed := ClosedRing(ring)
	r := make(orb.Ring, 0, len(closed))
	for _, p := range closed {
		r = append(r, p.Orb())
	}
	return geojson.NewFeature(orb.Polygon{r})
}
