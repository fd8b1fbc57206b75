// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "habitboard"

// Metrics is a private registry plus the dashboard collectors
type Metrics struct {
	Registry *prometheus.Registry

	Renders        *prometheus.CounterVec
	CacheRequests  *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	DatasetRows    prometheus.Gauge
	Reloads        *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_renders_total",
			Help:      "Dashboard views rendered, by theme.",
		}, []string{"theme"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Aggregate cache lookups, by result.",
		}, []string{"result"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent filtering, aggregating and building figures.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the currently loaded dataset.",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts, by result.",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(
		m.Renders, m.CacheRequests, m.RenderDuration, m.DatasetRows, m.Reloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CacheHit and CacheMiss count aggregate cache lookups
func (m *Metrics) CacheHit()  { m.CacheRequests.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.CacheRequests.WithLabelValues("miss").Inc() }

// ReloadResult counts one reload attempt
func (m *Metrics) ReloadResult(err error) {
	if err != nil {
		m.Reloads.WithLabelValues("error").Inc()
		return
	}
	m.Reloads.WithLabelValues("ok").Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
