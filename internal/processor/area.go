// Package processor runs configured areas through the partition and writes their assets.
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/voronoimap/internal/config"
	"github.com/woozymasta/voronoimap/internal/metrics"
	"github.com/woozymasta/voronoimap/internal/partition"
	"github.com/woozymasta/voronoimap/internal/source"

	"github.com/rs/zerolog/log"
)

// Processor holds what every area run shares.
type Processor struct {
	Loader  *source.Loader
	Metrics *metrics.Collector

	// OutputDir receives one directory per area.
	OutputDir string
	Force     bool
}

// ProcessArea loads the sources of a, partitions them and writes the area assets.
// An area with existing assets is skipped unless Force is set; the returned
// summary is nil then.
func (p *Processor) ProcessArea(ctx context.Context, a config.Area) (*Summary, error) {
	destDir := filepath.Join(p.OutputDir, a.Name)
	destFile := filepath.Join(destDir, DataFile)

	// Check if file exists
	if _, err := os.Stat(destFile); err == nil {
		if !p.Force {
			log.Debug().Str("area", a.Name).Msg("Area assets exist, skipping")
			return nil, nil
		}
	}

	start := time.Now()
	summary, err := p.run(ctx, a, destDir)
	if err != nil {
		p.Metrics.ObserveFailure(a.Name, time.Since(start))
		return nil, err
	}

	return summary, nil
}

func (p *Processor) run(ctx context.Context, a config.Area, destDir string) (*Summary, error) {
	start := time.Now()

	stations, err := p.Loader.Stations(ctx, a.Stations)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	boundary, err := p.Loader.Boundary(ctx, a.Boundary)
	if err != nil {
		return nil, fmt.Errorf("load boundary: %w", err)
	}

	log.Debug().
		Str("area", a.Name).
		Int("stations", len(stations)).
		Int("boundary_vertices", len(boundary.Ring)).
		Msg("Sources loaded")

	res, err := partition.Compute(stations, boundary, partition.Options{
		Delta: a.Delta,
		Frame: !a.NoFrame,
	})
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	if err := writeData(destDir, res, a.Minify); err != nil {
		return nil, fmt.Errorf("write %s: %w", DataFile, err)
	}
	if err := writeJSON(filepath.Join(destDir, GeoJSONFile), FeatureCollection(res)); err != nil {
		return nil, fmt.Errorf("write %s: %w", GeoJSONFile, err)
	}
	if !a.NoPreview {
		title := a.Title
		if title == "" {
			title = a.Name
		}
		if err := writePreview(destDir, res, a.PreviewWidth, title); err != nil {
			return nil, fmt.Errorf("write %s: %w", PreviewFile, err)
		}
	}

	summary := newSummary(a.Name, res)
	if err := writeJSON(filepath.Join(destDir, SummaryFile), summary); err != nil {
		return nil, fmt.Errorf("write %s: %w", SummaryFile, err)
	}

	p.Metrics.ObservePartition(a.Name, res, time.Since(start))

	log.Info().
		Str("area", a.Name).
		Int("stations", summary.Stations).
		Int("regions", summary.Regions).
		Int("approximate", summary.Approximate).
		Float64("coverage", summary.Coverage).
		Dur("took", time.Since(start)).
		Msg("Area processed")

	return &summary, nil
}
