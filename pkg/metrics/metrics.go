// Package metrics exposes the Prometheus collectors Fae registers for
// compilation and render activity: counters/histograms registered
// against a private registry, served by Handler.
//
// Grounded on the teacher's pkg/metrics/metrics.go: a Metrics struct
// holding one field per collector, built once in NewMetrics against a
// dedicated prometheus.Registry, and a Handler method wrapping
// promhttp.HandlerFor. Renamed from GlyphLang's HTTP-request metrics to
// Fae's compile/render metrics, and trimmed the runtime-resource and
// ad hoc custom-collector machinery that has no Fae analogue.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fae"

// Metrics implements library.Metrics, backing it with Prometheus
// collectors registered against a private registry.
type Metrics struct {
	compileTotal    *prometheus.CounterVec
	renderTotal     *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	templatesLoaded prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers Fae's Prometheus collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{registry: registry}

	m.compileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "compile_total", Help: "Total number of template compile attempts.",
	}, []string{"result"})

	m.renderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "render_total", Help: "Total number of template renders.",
	}, []string{"template", "result"})

	m.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "render_duration_seconds", Help: "Render latency in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"template"})

	m.templatesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "templates_loaded", Help: "Number of templates currently loaded in the library.",
	})

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_hits_total", Help: "Total number of render cache hits.",
	})
	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_misses_total", Help: "Total number of render cache misses.",
	})

	registry.MustRegister(m.compileTotal, m.renderTotal, m.renderDuration, m.templatesLoaded, m.cacheHits, m.cacheMisses)
	return m
}

// ObserveCompile implements library.Metrics.
func (m *Metrics) ObserveCompile(ok bool) {
	m.compileTotal.WithLabelValues(resultLabel(ok)).Inc()
}

// ObserveRender implements library.Metrics.
func (m *Metrics) ObserveRender(template string, dur time.Duration, ok bool) {
	m.renderTotal.WithLabelValues(template, resultLabel(ok)).Inc()
	m.renderDuration.WithLabelValues(template).Observe(dur.Seconds())
}

// SetTemplatesLoaded implements library.Metrics.
func (m *Metrics) SetTemplatesLoaded(n int) {
	m.templatesLoaded.Set(float64(n))
}

// ObserveCacheHit records a render-cache hit or miss. pkg/rendercache
// keeps its own counters (Cache.Stats) and does not call it.
func (m *Metrics) ObserveCacheHit(hit bool) {
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// Handler serves Fae's metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
