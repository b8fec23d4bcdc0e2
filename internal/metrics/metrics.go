// Package metrics bundles Prometheus metrics for partition runs and the asset server.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/woozymasta/voronoimap/internal/partition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voronoimap"

// Collector holds the registered metrics. A nil *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Outcomes *prometheus.CounterVec
	Stations *prometheus.GaugeVec
	Regions  *prometheus.GaugeVec
	Coverage *prometheus.GaugeVec
	Requests *prometheus.CounterVec
}

// New registers metrics against reg, defaulting to the global registry when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partition_runs_total",
		Help:      "Partition runs per area, labeled by result (ok or error).",
	}, []string{"area", "result"})); err != nil {
		return nil, err
	}

	if c.Duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "partition_duration_seconds",
		Help:      "Time spent loading, partitioning and writing one area.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"area"})); err != nil {
		return nil, err
	}

	if c.Outcomes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clip_outcomes_total",
		Help:      "Clipped cells per area, labeled by outcome.",
	}, []string{"area", "outcome"})); err != nil {
		return nil, err
	}

	if c.Stations, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "area_stations",
		Help:      "Stations in the last successful run of an area.",
	}, []string{"area"})); err != nil {
		return nil, err
	}

	if c.Regions, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "area_regions",
		Help:      "Regions in the last successful run of an area.",
	}, []string{"area"})); err != nil {
		return nil, err
	}

	if c.Coverage, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "area_coverage_ratio",
		Help:      "Summed region area over boundary area in the last successful run.",
	}, []string{"area"})); err != nil {
		return nil, err
	}

	if c.Requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Served HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})); err != nil {
		return nil, err
	}

	return c, nil
}

// ObservePartition records a successful area run.
func (c *Collector) ObservePartition(area string, res *partition.Result, d time.Duration) {
	if c == nil || res == nil {
		return
	}

	c.Runs.WithLabelValues(area, "ok").Inc()
	c.Duration.WithLabelValues(area).Observe(d.Seconds())

	c.Outcomes.WithLabelValues(area, "exact").Add(float64(res.Stats.Exact))
	c.Outcomes.WithLabelValues(area, "hull_fallback").Add(float64(res.Stats.HullFallback))
	c.Outcomes.WithLabelValues(area, "empty").Add(float64(res.Stats.Empty))
	c.Outcomes.WithLabelValues(area, "degenerate").Add(float64(res.Stats.Degenerate))

	c.Stations.WithLabelValues(area).Set(float64(len(res.Points)))
	c.Regions.WithLabelValues(area).Set(float64(len(res.Regions)))
	c.Coverage.WithLabelValues(area).Set(res.Coverage())
}

// ObserveFailure records a failed area run.
func (c *Collector) ObserveFailure(area string, d time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(area, "error").Inc()
	c.Duration.WithLabelValues(area).Observe(d.Seconds())
}

// ObserveRequest counts a served HTTP request.
func (c *Collector) ObserveRequest(route string, code int) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps current metrics in the node exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return prometheus.WriteToTextfile(path, gatherer)
}

// register adds col to reg, reusing an existing collector of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
