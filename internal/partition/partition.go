// Package partition splits a boundary polygon into per-station Voronoi regions.
package partition

import (
	"fmt"

	"github.com/woozymasta/voronoimap/internal/clip"
	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/voronoi"

	"github.com/rs/zerolog/log"
)

// Options tune a partition run.
type Options struct {
	// Delta is the degree step used for the scaling factor; 0 selects geo.DefaultDelta.
	Delta float64
	// Frame gives hull stations finite cells; see voronoi.Options.
	Frame bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Delta: geo.DefaultDelta, Frame: true}
}

// Region is the clipped cell of one station.
type Region struct {
	// Index is the position of Station in the input list.
	Index       int
	Station     geo.NamedStation
	Ring        []geo.GeoPoint
	Approximate bool
}

// Stats counts clip outcomes of a run.
type Stats struct {
	Exact        int `json:"exact"`
	HullFallback int `json:"hull_fallback"`
	Empty        int `json:"empty"`
	Degenerate   int `json:"degenerate"`
}

func (s *Stats) add(o clip.Outcome) {
	switch o {
	case clip.Exact:
		s.Exact++
	case clip.HullFallback:
		s.HullFallback++
	case clip.Empty:
		s.Empty++
	default:
		s.Degenerate++
	}
}

// Result is the output of Compute.
type Result struct {
	// Points holds every input station in input order.
	Points []geo.NamedStation
	// Regions holds stations that produced a region, in input order.
	Regions  []Region
	Boundary geo.Boundary
	Factor   float64
	Stats    Stats
}

// Coverage returns the summed region area divided by the boundary area.
func (r *Result) Coverage() float64 {
	total := clip.Area(r.Boundary.Ring)
	if total == 0 {
		return 0
	}

	sum := 0.0
	for _, reg := range r.Regions {
		sum += clip.Area(reg.Ring)
	}
	return sum / total
}

// Compute partitions boundary among stations.
//
// The result depends only on the arguments. Stations whose cell is unbounded,
// degenerate or misses the boundary keep their place in Points but get no Region.
func Compute(stations []geo.NamedStation, boundary geo.Boundary, opts Options) (*Result, error) {
	clipper, err := clip.New(boundary)
	if err != nil {
		return nil, err
	}

	factor, err := geo.ScalingFactor(boundary.Centroid, opts.Delta)
	if err != nil {
		return nil, fmt.Errorf("scaling factor: %w", err)
	}

	diagram, err := voronoi.Build(stations, factor, voronoi.Options{Frame: opts.Frame, Bounds: boundary.Ring})
	if err != nil {
		return nil, fmt.Errorf("voronoi: %w", err)
	}

	points := make([]geo.NamedStation, len(stations))
	copy(points, stations)

	res := &Result{
		Points:   points,
		Boundary: boundary,
		Factor:   factor,
	}

	for i, s := range stations {
		ring, ok := diagram.Ring(i)
		if !ok {
			res.Stats.add(clip.Degenerate)
			log.Trace().Int("index", i).Str("station", s.Label).Msg("Station has no cell of its own")
			continue
		}

		vertices, unbounded := diagram.Resolve(ring)
		region, outcome := clipper.Clip(clip.Cell{Vertices: vertices, Unbounded: unbounded})
		res.Stats.add(outcome)
		if !outcome.HasRegion() {
			log.Trace().
				Int("index", i).
				Str("station", s.Label).
				Stringer("outcome", outcome).
				Msg("Station dropped from regions")
			continue
		}

		res.Regions = append(res.Regions, Region{
			Index:       i,
			Station:     s,
			Ring:        region.Ring,
			Approximate: region.Approximate,
		})
	}

	return res, nil
}
