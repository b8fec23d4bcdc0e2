package main

import (
	"strings"
	"testing"

	"github.com/woozymasta/voronoimap/internal/geo"

	"gopkg.in/yaml.v3"
)

func TestEncode(t *testing.T) {
	stations := []geo.NamedStation{
		{Point: geo.GeoPoint{Lat: 52.23, Lon: 21.01}, Label: "Centrum"},
	}

	js, err := encode(stations, "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(js), `"FeatureCollection"`) || !strings.Contains(string(js), "21.01") {
		t.Fatalf("json output:\n%s", js)
	}

	y, err := encode(stations, "yaml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(y), "type: FeatureCollection") {
		t.Fatalf("yaml output:\n%s", y)
	}

	inline, err := encode(stations, "inline")
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	var doc struct {
		Stations struct {
			Inline []geo.NamedStation `yaml:"inline"`
		} `yaml:"stations"`
	}
	if err := yaml.Unmarshal(inline, &doc); err != nil {
		t.Fatalf("inline output does not parse: %v\n%s", err, inline)
	}
	if len(doc.Stations.Inline) != 1 || doc.Stations.Inline[0] != stations[0] {
		t.Fatalf("inline stations = %+v", doc.Stations.Inline)
	}
}
