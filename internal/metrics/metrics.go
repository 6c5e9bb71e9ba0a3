// Package metrics exposes upload and generation instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry so tests and
// multiple servers never collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	uploads       *prometheus.CounterVec
	generations   *prometheus.CounterVec
	generationDur *prometheus.HistogramVec
	archiveBytes  prometheus.Histogram
}

// New registers all collectors plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperstack_uploads_total",
			Help: "Uploads received, by outcome status.",
		}, []string{"status"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperstack_generations_total",
			Help: "Completed generations, by technology stack.",
		}, []string{"technology"}),
		generationDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paperstack_generation_seconds",
			Help:    "Wall time of a full generation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"technology"}),
		archiveBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paperstack_archive_bytes",
			Help:    "Size of produced archives.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
	reg.MustRegister(
		m.uploads, m.generations, m.generationDur, m.archiveBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpload counts one upload with status such as "ok" or an error code.
func (m *Metrics) ObserveUpload(status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(status).Inc()
}

// ObserveGeneration records a successful generation.
func (m *Metrics) ObserveGeneration(technology string, d time.Duration, archiveSize int64) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(technology).Inc()
	m.generationDur.WithLabelValues(technology).Observe(d.Seconds())
	m.archiveBytes.Observe(float64(archiveSize))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
