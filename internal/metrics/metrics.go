// Package metrics exposes Prometheus collectors for the chart pipelines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spotchart"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	fetches   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	stale     *prometheus.CounterVec
	redraws   *prometheus.CounterVec
	clientLog *prometheus.CounterVec
}

// New registers all collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Backend fetches by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlay_fallbacks_total",
			Help:      "Overlays derived client-side, by overlay and reason.",
		}, []string{"overlay", "reason"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Pipeline results discarded because a newer request superseded them.",
		}, []string{"pipeline"}),
		redraws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redraws_total",
			Help:      "Renderer calls by kind.",
		}, []string{"kind"}),
		clientLog: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_log_entries_total",
			Help:      "Diagnostic entries received on /client-log by level.",
		}, []string{"level"}),
	}
	reg.MustRegister(m.fetches, m.fallbacks, m.stale, m.redraws, m.clientLog)
	return m
}

func (m *Metrics) Fetch(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) Fallback(overlay, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(overlay, reason).Inc()
}

func (m *Metrics) Stale(pipeline string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(pipeline).Inc()
}

func (m *Metrics) Redraw(kind string) {
	if m == nil {
		return
	}
	m.redraws.WithLabelValues(kind).Inc()
}

func (m *Metrics) ClientLog(level string) {
	if m == nil {
		return
	}
	m.clientLog.WithLabelValues(level).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
