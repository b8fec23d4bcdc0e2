package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/voronoimap/internal/metrics"
)

// RequestLogger is a middleware to log HTTP requests and count them in m.
func RequestLogger(next http.Handler, m *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		m.ObserveRequest(route(r.URL.Path), ww.statusCode)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})
}

// route maps a path to a fixed label to bound metric cardinality.
func route(path string) string {
	switch {
	case path == "/", path == "/api/areas", path == "/metrics", path == "/favicon.svg":
		return path
	case strings.HasPrefix(path, "/areas/"):
		return "/areas"
	}
	return "other"
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
