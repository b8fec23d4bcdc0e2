// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/voronoimap/internal/geo"

	"gopkg.in/yaml.v3"
)

// DefaultOutput is the directory generated area assets are written to.
const DefaultOutput = "areas"

// DefaultPreviewWidth is the preview image width in pixels.
const DefaultPreviewWidth = 1024

// DatabaseURLEnv is read when the config file sets no database_url.
const DatabaseURLEnv = "DATABASE_URL"

// Config represents the root configuration file structure.
type Config struct {
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Output      string `yaml:"output,omitempty" json:"-"`
	DatabaseURL string `yaml:"database_url,omitempty" json:"-"`
	Areas       []Area `yaml:"areas" json:"areas"`

	// Delta is the default scaling sample step in degrees for every area.
	Delta float64 `yaml:"delta,omitempty" json:"-"`
}

// Area is one partition job: a station set and the boundary it is clipped to.
type Area struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	Stations StationSource  `yaml:"stations" json:"-"`
	Boundary BoundarySource `yaml:"boundary" json:"-"`

	Name         string   `yaml:"name" json:"name"`
	Title        string   `yaml:"title,omitempty" json:"title,omitempty"`
	Attribution  string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Aliases      []string `yaml:"aliases,omitempty" json:"-"`
	Delta        float64  `yaml:"delta,omitempty" json:"-"`
	PreviewWidth int      `yaml:"preview_width,omitempty" json:"-"`
	NoFrame      bool     `yaml:"no_frame,omitempty" json:"-"`
	Minify       bool     `yaml:"minify,omitempty" json:"-"`
	NoPreview    bool     `yaml:"no_preview,omitempty" json:"no_preview,omitempty"`
}

// StationSource describes where the stations of an area come from.
// Exactly one of Path, Query or Inline is used, in that order.
type StationSource struct {
	// Path is a local file or http(s) URL holding GeoJSON or CSV.
	Path string `yaml:"path,omitempty"`
	// Format forces "geojson" or "csv"; empty picks by extension.
	Format   string `yaml:"format,omitempty"`
	LabelKey string `yaml:"label_key,omitempty"`

	// Query selects lat, lon, label rows from Config.DatabaseURL.
	Query string `yaml:"query,omitempty"`

	Inline []geo.NamedStation `yaml:"inline,omitempty"`
}

// BoundarySource describes where the boundary polygon of an area comes from.
type BoundarySource struct {
	// Path is a local file or http(s) URL holding GeoJSON.
	Path   string         `yaml:"path,omitempty"`
	Inline []geo.GeoPoint `yaml:"inline,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates configuration from YAML bytes, filling defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	cfg.DatabaseURL = os.ExpandEnv(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
	if cfg.Delta <= 0 {
		cfg.Delta = geo.DefaultDelta
	}

	for i := range cfg.Areas {
		a := &cfg.Areas[i]
		if a.Delta <= 0 {
			a.Delta = cfg.Delta
		}
		if a.PreviewWidth <= 0 {
			a.PreviewWidth = DefaultPreviewWidth
		}
		if a.Attribution == "" {
			a.Attribution = cfg.Attribution
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that area names are unique and every area has its sources.
func (c *Config) Validate() error {
	var errs []error
	names := make(map[string]string)

	claim := func(name, owner string) {
		if prev, ok := names[name]; ok {
			errs = append(errs, fmt.Errorf("area %q: name %q already used by %q", owner, name, prev))
			return
		}
		names[name] = owner
	}

	for i, a := range c.Areas {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("area #%d: name is required", i))
			continue
		}
		claim(a.Name, a.Name)
		for _, alias := range a.Aliases {
			claim(alias, a.Name)
		}

		if a.Stations.Path == "" && a.Stations.Query == "" && len(a.Stations.Inline) == 0 {
			errs = append(errs, fmt.Errorf("area %q: no station source", a.Name))
		}
		if a.Stations.Query != "" && c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("area %q: stations query needs database_url", a.Name))
		}
		switch a.Stations.Format {
		case "", "geojson", "csv":
		default:
			errs = append(errs, fmt.Errorf("area %q: unknown stations format %q", a.Name, a.Stations.Format))
		}
		if a.Boundary.Path == "" && len(a.Boundary.Inline) == 0 {
			errs = append(errs, fmt.Errorf("area %q: no boundary source", a.Name))
		}
	}

	return errors.Join(errs...)
}

// Find returns the area with the given name, or nil.
func (c *Config) Find(name string) *Area {
	for i := range c.Areas {
		if c.Areas[i].Name == name {
			return &c.Areas[i]
		}
	}
	return nil
}
