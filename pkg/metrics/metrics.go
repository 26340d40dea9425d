// Package metrics exposes Prometheus instrumentation for the optimization
// pipeline: network builds, problem sizes and solver runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the application
type Registry struct {
	// Network construction
	BuildsTotal   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	NetworkNodes  prometheus.Gauge
	NetworkEdges  prometheus.Gauge

	// Encoded problem size
	ProblemColumns  prometheus.Gauge
	ProblemRows     prometheus.Gauge
	ProblemIntegers prometheus.Gauge

	// Solver
	SolvesTotal   *prometheus.CounterVec
	SolveDuration prometheus.Histogram
	ObjectiveUSD  prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.BuildsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hygrid_network_builds_total",
			Help: "Total number of network construction attempts",
		},
		[]string{"status"},
	)
	r.BuildDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hygrid_network_build_duration_seconds",
			Help:    "Network construction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
	r.NetworkNodes = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_network_nodes",
			Help: "Node count of the last built network",
		},
	)
	r.NetworkEdges = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_network_edges",
			Help: "Edge count of the last built network",
		},
	)

	r.ProblemColumns = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_problem_columns",
			Help: "Column count of the last encoded problem",
		},
	)
	r.ProblemRows = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_problem_rows",
			Help: "Row count of the last encoded problem",
		},
	)
	r.ProblemIntegers = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_problem_integer_columns",
			Help: "Integer and binary column count of the last encoded problem",
		},
	)

	r.SolvesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hygrid_solves_total",
			Help: "Total number of solver runs",
		},
		[]string{"status"},
	)
	r.SolveDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hygrid_solve_duration_seconds",
			Help:    "Solver run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
	r.ObjectiveUSD = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "hygrid_objective_usd_per_day",
			Help: "Objective value of the last successful solve",
		},
	)

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordBuild records one network construction attempt
func (r *Registry) RecordBuild(status string, duration time.Duration, nodes, edges int) {
	r.BuildsTotal.WithLabelValues(status).Inc()
	r.BuildDuration.Observe(duration.Seconds())
	if status == "ok" {
		r.NetworkNodes.Set(float64(nodes))
		r.NetworkEdges.Set(float64(edges))
	}
}

// RecordProblemSize records the dimensions of an encoded problem
func (r *Registry) RecordProblemSize(columns, rows, integers int) {
	r.ProblemColumns.Set(float64(columns))
	r.ProblemRows.Set(float64(rows))
	r.ProblemIntegers.Set(float64(integers))
}

// RecordSolve records one solver run
func (r *Registry) RecordSolve(status string, duration time.Duration) {
	r.SolvesTotal.WithLabelValues(status).Inc()
	r.SolveDuration.Observe(duration.Seconds())
}
