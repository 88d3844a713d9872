package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	requests   *prometheus.CounterVec
}

// newMetrics registers the server's collectors on reg. Each Server gets
// its own registry so tests can run several servers in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		statements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sumdb_statements_total",
				Help: "Number of statements executed, by kind and result code.",
			},
			[]string{"kind", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sumdb_statement_duration_seconds",
				Help:    "Statement execution latency.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"kind"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sumdb_http_requests_total",
				Help: "Number of HTTP requests, by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}
}
