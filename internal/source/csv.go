package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/woozymasta/voronoimap/internal/geo"
)

// ErrNoCoordinateColumns is returned when a CSV header has no latitude or longitude column.
var ErrNoCoordinateColumns = errors.New("csv: latitude/longitude columns not found")

// ReadCSV reads stations from CSV with a header row.
//
// Latitude is taken from lat/latitude/y, longitude from lon/lng/long/longitude/x
// and the label from name/label/station/title. Rows with unparsable
// coordinates are skipped.
func ReadCSV(r io.Reader) ([]geo.NamedStation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(recs) == 0 {
		return nil, errors.New("csv: empty input")
	}

	idxLat, idxLon, idxLabel := -1, -1, -1
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "name", "label", "station", "title":
			if idxLabel == -1 {
				idxLabel = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, ErrNoCoordinateColumns
	}

	var stations []geo.NamedStation
	for _, row := range recs[1:] {
		if idxLat >= len(row) || idxLon >= len(row) {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		if err1 != nil || err2 != nil {
			continue
		}

		s := geo.NamedStation{Point: geo.GeoPoint{Lat: lat, Lon: lon}}
		if !s.Point.IsFinite() {
			continue
		}
		if idxLabel >= 0 && idxLabel < len(row) {
			s.Label = strings.TrimSpace(row[idxLabel])
		}
		stations = append(stations, s)
	}

	if len(stations) == 0 {
		return nil, geo.ErrNoStations
	}
	return stations, nil
}
