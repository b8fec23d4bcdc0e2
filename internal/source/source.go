// Package source loads stations and boundaries from files, URLs, inline config and PostgreSQL.
package source

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/woozymasta/voronoimap/internal/config"
	"github.com/woozymasta/voronoimap/internal/geo"

	"github.com/rs/zerolog/log"
)

// maxBody caps downloaded documents.
const maxBody = 64 << 20

// ErrNoDatabase is returned for a query source when the loader has no database.
var ErrNoDatabase = errors.New("source: no database configured")

// Loader resolves station and boundary sources of an area.
type Loader struct {
	Client *http.Client
	DB     *sql.DB
}

// NewHTTPClient returns the client used for remote sources.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
		},
		Timeout: 30 * time.Second,
	}
}

// Stations loads the stations described by src.
func (l *Loader) Stations(ctx context.Context, src config.StationSource) ([]geo.NamedStation, error) {
	switch {
	case src.Path != "":
		data, err := l.read(ctx, src.Path)
		if err != nil {
			return nil, err
		}

		if stationFormat(src) == "csv" {
			return ReadCSV(bytes.NewReader(data))
		}
		return geo.StationsFromGeoJSON(data, src.LabelKey)

	case src.Query != "":
		if l.DB == nil {
			return nil, ErrNoDatabase
		}
		return QueryStations(ctx, l.DB, src.Query)

	case len(src.Inline) > 0:
		out := make([]geo.NamedStation, len(src.Inline))
		copy(out, src.Inline)
		return out, nil
	}

	return nil, geo.ErrNoStations
}

// Boundary loads the boundary described by src.
func (l *Loader) Boundary(ctx context.Context, src config.BoundarySource) (geo.Boundary, error) {
	if src.Path != "" {
		data, err := l.read(ctx, src.Path)
		if err != nil {
			return geo.Boundary{}, err
		}
		return geo.BoundaryFromGeoJSON(data)
	}

	if len(src.Inline) > 0 {
		return geo.NewBoundary(src.Inline), nil
	}

	return geo.Boundary{}, geo.ErrNoBoundary
}

func stationFormat(src config.StationSource) string {
	if src.Format != "" {
		return src.Format
	}

	path := src.Path
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "geojson"
}

// read returns the contents of a local file or http(s) URL.
func (l *Loader) read(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return os.ReadFile(path)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	log.Debug().Str("url", path).Msg("Downloading source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", path, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}
