package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/partition"

	xwebp "golang.org/x/image/webp"
)

func quadrants() *partition.Result {
	sq := func(minLat, minLon, maxLat, maxLon float64) []geo.GeoPoint {
		return []geo.GeoPoint{
			{Lat: minLat, Lon: minLon}, {Lat: minLat, Lon: maxLon},
			{Lat: maxLat, Lon: maxLon}, {Lat: maxLat, Lon: minLon},
		}
	}

	return &partition.Result{
		Points: []geo.NamedStation{
			{Point: geo.GeoPoint{Lat: 0, Lon: 0}}, {Point: geo.GeoPoint{Lat: 0, Lon: 1}},
			{Point: geo.GeoPoint{Lat: 1, Lon: 0}}, {Point: geo.GeoPoint{Lat: 1, Lon: 1}},
		},
		Regions: []partition.Region{
			{Index: 0, Ring: sq(-1, -1, 0.5, 0.5)},
			{Index: 1, Ring: sq(-1, 0.5, 0.5, 2)},
			{Index: 2, Ring: sq(0.5, -1, 2, 0.5)},
			{Index: 3, Ring: sq(0.5, 0.5, 2, 2), Approximate: true},
		},
		Boundary: geo.NewBoundary(sq(-1, -1, 2, 2)),
		Factor:   1,
	}
}

func TestPreview(t *testing.T) {
	img, err := Preview(quadrants(), 200, "square")
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 200 || b.Dy() < 200 || b.Dy() > 201 {
		t.Fatalf("bounds = %v, want 200x200", b)
	}

	// square boundary maps to [8, 192]; quadrant centres sit 46px from each edge
	checks := []struct {
		x, y  int
		index int
	}{
		{54, 146, 0}, // south-west
		{146, 146, 1},
		{54, 54, 2},
	}
	for _, c := range checks {
		if got, want := img.RGBAAt(c.x, c.y), RegionColor(c.index, false); got != want {
			t.Fatalf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, want)
		}
	}

	if got := img.RGBAAt(146, 54); got == RegionColor(3, false) || got == background {
		t.Fatalf("approximate region drawn opaque or not at all: %v", got)
	}
	if got := img.RGBAAt(2, 100); got != background {
		t.Fatalf("margin pixel = %v, want background", got)
	}
}

func TestPreviewFactorStretchesHeight(t *testing.T) {
	res := quadrants()
	res.Factor = 1.5

	img, err := Preview(res, 200, "")
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if got := img.Bounds().Dy(); got < 292 || got > 293 {
		t.Fatalf("height = %d, want 292", got)
	}
}

func TestPreviewEmptyBoundary(t *testing.T) {
	for _, res := range []*partition.Result{
		{},
		{Boundary: geo.Boundary{Ring: []geo.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 2}}}},
	} {
		if _, err := Preview(res, 100, ""); !errors.Is(err, ErrEmptyBoundary) {
			t.Fatalf("error = %v, want ErrEmptyBoundary", err)
		}
	}
}

func TestEncodeWebP(t *testing.T) {
	img, err := Preview(quadrants(), 64, "")
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img); err != nil {
		t.Fatalf("EncodeWebP error: %v", err)
	}

	decoded, err := xwebp.Decode(&buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
