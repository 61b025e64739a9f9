// Package metrics holds the prometheus instrumentation for the HTTP API.
//
// The metrics handle owns its registry and is constructed and passed down
// explicitly instead of registering into a process-wide default.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	DatasetSize     prometheus.Histogram
	ComputeDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outlier_requests_total",
				Help: "number of handled http requests",
			}, []string{"path", "status"}),

		DatasetSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outlier_dataset_size",
				Help:    "number of values per calculation request",
				Buckets: prometheus.ExponentialBuckets(10, 10, 7),
			}),

		ComputeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outlier_compute_duration_seconds",
				Help:    "time spent in the percentile computation",
				Buckets: prometheus.DefBuckets,
			}),
	}

	m.registry.MustRegister(m.RequestsTotal, m.DatasetSize, m.ComputeDuration)
	return m
}

// Handler serves the metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
