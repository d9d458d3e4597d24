package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solveDuration *prometheus.HistogramVec
	solvesTotal   *prometheus.CounterVec
	nodesExplored prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "Wall-clock runtime of solve invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	tot := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solves_total",
			Help: "Number of solve invocations by outcome",
		},
		[]string{"status"},
	)
	nodes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "search_nodes_explored_total",
			Help: "Number of branch-and-bound nodes explored",
		},
	)
	return dur, tot, nodes
}

func init() {
	solveDuration, solvesTotal, nodesExplored = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers solver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, solvesTotal, nodesExplored)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, solvesTotal, nodesExplored = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
