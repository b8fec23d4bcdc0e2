package metrics

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/partition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func squareResult() *partition.Result {
	ring := []geo.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	return &partition.Result{
		Points:   make([]geo.NamedStation, 5),
		Regions:  []partition.Region{{Index: 0, Ring: ring}},
		Boundary: geo.NewBoundary(ring),
		Stats:    partition.Stats{Exact: 1, Empty: 3, Degenerate: 1},
	}
}

func TestObservePartition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.ObservePartition("warsaw", squareResult(), 150*time.Millisecond)
	c.ObservePartition("warsaw", squareResult(), 50*time.Millisecond)
	c.ObserveFailure("broken", time.Second)

	if got := testutil.ToFloat64(c.Runs.WithLabelValues("warsaw", "ok")); got != 2 {
		t.Fatalf("runs ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Runs.WithLabelValues("broken", "error")); got != 1 {
		t.Fatalf("runs error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Outcomes.WithLabelValues("warsaw", "empty")); got != 6 {
		t.Fatalf("empty outcomes = %v, want 6", got)
	}
	if got := testutil.ToFloat64(c.Stations.WithLabelValues("warsaw")); got != 5 {
		t.Fatalf("stations = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.Coverage.WithLabelValues("warsaw")); got != 1 {
		t.Fatalf("coverage = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.Duration); got != 2 {
		t.Fatalf("duration series = %d, want 2", got)
	}
}

func TestNewTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(reg)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}

	a.ObserveRequest("/api/areas", 200)
	if got := testutil.ToFloat64(b.Requests.WithLabelValues("/api/areas", "200")); got != 1 {
		t.Fatalf("shared requests = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObservePartition("a", squareResult(), time.Second)
	c.ObserveFailure("a", time.Second)
	c.ObserveRequest("/", 200)
	if c.Handler() == nil {
		t.Fatalf("nil collector returned nil handler")
	}
}

func TestHandlerAndTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.ObserveRequest("/areas", 404)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `voronoimap_http_requests_total{code="404",route="/areas"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", rec.Body.String())
	}

	path := filepath.Join(t.TempDir(), "voronoimap.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "voronoimap_http_requests_total") {
		t.Fatalf("textfile missing counter:\n%s", data)
	}
}
