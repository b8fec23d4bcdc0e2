// Package render draws partition previews and encodes them as webp.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/partition"

	"github.com/chai2010/webp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	margin      = 8
	maxAspect   = 4
	strokeWidth = 1.5
	markerSize  = 2.0
)

// ErrEmptyBoundary is returned when the boundary has no extent to draw.
var ErrEmptyBoundary = errors.New("render: boundary has no extent")

var (
	background = color.RGBA{0xf7, 0xf7, 0xf2, 0xff}
	outline    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	marker     = color.RGBA{0xc0, 0x1c, 0x28, 0xff}

	palette = []color.RGBA{
		{0x8d, 0xd3, 0xc7, 0xff},
		{0xff, 0xff, 0xb3, 0xff},
		{0xbe, 0xba, 0xda, 0xff},
		{0xfb, 0x80, 0x72, 0xff},
		{0x80, 0xb1, 0xd3, 0xff},
		{0xfd, 0xb4, 0x62, 0xff},
		{0xb3, 0xde, 0x69, 0xff},
		{0xfc, 0xcd, 0xe5, 0xff},
		{0xbc, 0x80, 0xbd, 0xff},
		{0xcc, 0xeb, 0xc5, 0xff},
	}
)

// RegionColor returns the fill color of the region of station index.
func RegionColor(index int, approximate bool) color.RGBA {
	c := palette[index%len(palette)]
	if approximate {
		// premultiplied half alpha
		c = color.RGBA{c.R / 2, c.G / 2, c.B / 2, 0x80}
	}
	return c
}

// projection maps degrees to pixels. Latitudes are stretched by the
// partition factor so distances look the same along both axes.
type projection struct {
	minLon, maxLat float64
	scale, factor  float64
}

func (p projection) point(g geo.GeoPoint) (float32, float32) {
	x := margin + (g.Lon-p.minLon)*p.scale
	y := margin + (p.maxLat-g.Lat)*p.scale*p.factor
	return float32(x), float32(y)
}

// Preview draws the regions, boundary outline and stations of res.
// The image is width pixels wide; height follows the boundary shape.
func Preview(res *partition.Result, width int, title string) (*image.RGBA, error) {
	ring := res.Boundary.Ring
	if len(ring) == 0 {
		return nil, ErrEmptyBoundary
	}

	minLon, maxLon := ring[0].Lon, ring[0].Lon
	minLat, maxLat := ring[0].Lat, ring[0].Lat
	for _, p := range ring[1:] {
		minLon, maxLon = math.Min(minLon, p.Lon), math.Max(maxLon, p.Lon)
		minLat, maxLat = math.Min(minLat, p.Lat), math.Max(maxLat, p.Lat)
	}
	if maxLon <= minLon || maxLat <= minLat {
		return nil, ErrEmptyBoundary
	}

	factor := res.Factor
	if factor <= 0 {
		factor = 1
	}
	if width <= 2*margin {
		width = 2*margin + 1
	}

	proj := projection{
		minLon: minLon,
		maxLat: maxLat,
		scale:  float64(width-2*margin) / (maxLon - minLon),
		factor: factor,
	}
	height := int(math.Ceil((maxLat-minLat)*proj.scale*factor)) + 2*margin
	if height > maxAspect*width {
		height = maxAspect * width
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, r := range res.Regions {
		fillRing(img, proj, r.Ring, RegionColor(r.Index, r.Approximate))
	}

	strokeRing(img, proj, ring, outline)
	for _, r := range res.Regions {
		strokeRing(img, proj, r.Ring, color.RGBA{0x55, 0x55, 0x55, 0xff})
	}

	z := vector.NewRasterizer(width, height)
	for _, s := range res.Points {
		x, y := proj.point(s.Point)
		z.MoveTo(x-markerSize, y-markerSize)
		z.LineTo(x+markerSize, y-markerSize)
		z.LineTo(x+markerSize, y+markerSize)
		z.LineTo(x-markerSize, y+markerSize)
		z.ClosePath()
	}
	z.Draw(img, img.Bounds(), image.NewUniform(marker), image.Point{})

	if title != "" {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(outline),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(margin, margin+basicfont.Face7x13.Ascent),
		}
		d.DrawString(title)
	}

	return img, nil
}

func fillRing(img *image.RGBA, proj projection, ring []geo.GeoPoint, c color.RGBA) {
	if len(ring) < 3 {
		return
	}

	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	x, y := proj.point(ring[0])
	z.MoveTo(x, y)
	for _, p := range ring[1:] {
		z.LineTo(proj.point(p))
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

// strokeRing draws every edge of ring as a thin quad.
func strokeRing(img *image.RGBA, proj projection, ring []geo.GeoPoint, c color.RGBA) {
	n := len(ring)
	if n < 2 {
		return
	}

	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(strokeWidth / 2)
	for i := 0; i < n; i++ {
		x0, y0 := proj.point(ring[i])
		x1, y1 := proj.point(ring[(i+1)%n])
		dx, dy := x1-x0, y1-y0
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half

		// each quad is its own closed subpath wound the same way
		z.MoveTo(x0+nx, y0+ny)
		z.LineTo(x1+nx, y1+ny)
		z.LineTo(x1-nx, y1-ny)
		z.LineTo(x0-nx, y0-ny)
		z.ClosePath()
	}
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

// EncodeWebP writes img as a lossless webp image.
func EncodeWebP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: true})
}
