// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/voronoimap/internal/processor"
)

const etagCap = 64

// assetTypes lists the files served from an area directory.
var assetTypes = map[string]string{
	processor.DataFile:    "text/javascript; charset=utf-8",
	processor.GeoJSONFile: "application/geo+json",
	processor.PreviewFile: "image/webp",
}

// Routes returns the application handler with request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/areas", s.HandleAreasList)
	mux.HandleFunc("/favicon.svg", s.HandleFavicon)
	mux.HandleFunc("/areas/", s.HandleAreaAsset)
	mux.Handle("/metrics", s.Metrics.Handler())
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux, s.Metrics)
}

// HandleAreasList serves the JSON list of available areas.
func (s *ServerContext) HandleAreasList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Areas)
}

// HandleFavicon serves the site icon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleAreaAsset serves generated files of an area.
func (s *ServerContext) HandleAreaAsset(w http.ResponseWriter, r *http.Request) {
	// Path: /areas/{areaName}/{file}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		http.NotFound(w, r)
		return
	}

	realName, ok := s.AreaResolver[parts[1]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	// allow only known files to prevent path probing
	contentType, ok := assetTypes[parts[2]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.Config.Output, realName, parts[2])
	if !s.serveFile(w, r, path, contentType) {
		http.NotFound(w, r)
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
