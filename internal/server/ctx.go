package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/voronoimap/assets"
	"github.com/woozymasta/voronoimap/internal/config"
	"github.com/woozymasta/voronoimap/internal/metrics"
	"github.com/woozymasta/voronoimap/internal/processor"
)

// AreaInfo is the public description of a generated area.
type AreaInfo struct {
	config.Area
	Summary *processor.Summary `json:"summary,omitempty"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config       *config.Config
	Areas        []AreaInfo
	AreaResolver map[string]string
	Metrics      *metrics.Collector
	IndexHTML    []byte
	Favicon      []byte
}

// NewServerContext initializes the context from configured areas.
// Areas without generated assets in cfg.Output are left out.
func NewServerContext(cfg *config.Config, m *metrics.Collector) *ServerContext {
	log.Info().Int("config_areas_count", len(cfg.Areas)).Msg("Initializing server context")

	resolver := make(map[string]string)
	areas := make([]AreaInfo, 0, len(cfg.Areas))

	for _, a := range cfg.Areas {
		dir := filepath.Join(cfg.Output, a.Name)

		if _, err := os.Stat(filepath.Join(dir, processor.DataFile)); err != nil {
			log.Warn().
				Str("area", a.Name).
				Str("path", dir).
				Msg("Skipping area: assets not generated")
			continue
		}

		info := AreaInfo{Area: a}
		if raw, err := os.ReadFile(filepath.Join(dir, processor.SummaryFile)); err == nil {
			var s processor.Summary
			if err := json.Unmarshal(raw, &s); err != nil {
				log.Warn().Err(err).Str("area", a.Name).Msg("Ignoring unreadable area summary")
			} else {
				info.Summary = &s
			}
		}

		// Preview is optional
		if !a.NoPreview {
			if _, err := os.Stat(filepath.Join(dir, processor.PreviewFile)); err != nil {
				info.NoPreview = true
				log.Trace().Str("area", a.Name).Msg("Preview not found")
			}
		}

		resolver[a.Name] = a.Name
		for _, alias := range a.Aliases {
			resolver[alias] = a.Name
		}

		log.Debug().
			Str("area", a.Name).
			Bool("summary", info.Summary != nil).
			Bool("preview", !info.NoPreview).
			Msg("Area validated and added to context")

		areas = append(areas, info)
	}

	sort.Slice(areas, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if areas[i].Index != nil {
			idxI = *areas[i].Index
		}
		if areas[j].Index != nil {
			idxJ = *areas[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return areas[i].Name < areas[j].Name
	})

	log.Info().
		Int("valid_areas_count", len(areas)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:       cfg,
		Areas:        areas,
		AreaResolver: resolver,
		Metrics:      m,
		IndexHTML:    assets.Index,
		Favicon:      assets.Favicon,
	}
}
