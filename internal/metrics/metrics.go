// Package metrics exposes Prometheus collectors for scoring outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/browserscan/trustscore/internal/model"
)

type Metrics struct {
	registry   *prometheus.Registry
	scans      *prometheus.CounterVec
	deductions *prometheus.CounterVec
	scores     prometheus.Histogram
	lookupErrs prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trustscore",
			Name:      "scans_total",
			Help:      "Score cards produced, by grade.",
		}, []string{"grade"}),
		deductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trustscore",
			Name:      "deductions_total",
			Help:      "Triggered deductions, by code.",
		}, []string{"code"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trustscore",
			Name:      "score",
			Help:      "Distribution of final trust scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		lookupErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trustscore",
			Name:      "lookup_errors_total",
			Help:      "IP-intelligence lookups that failed.",
		}),
	}
	m.registry.MustRegister(m.scans, m.deductions, m.scores, m.lookupErrs)
	return m
}

// ObserveCard records one final score card.
func (m *Metrics) ObserveCard(card model.ScoreCard) {
	m.scans.WithLabelValues(card.Grade).Inc()
	m.scores.Observe(float64(card.Total))
	for _, d := range card.Deductions {
		m.deductions.WithLabelValues(d.Code).Inc()
	}
}

// LookupFailed counts a failed IP-intelligence lookup.
func (m *Metrics) LookupFailed() {
	m.lookupErrs.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Scans returns the per-grade counter vector.
func (m *Metrics) Scans() *prometheus.CounterVec { return m.scans }

// Deductions returns the per-code counter vector.
func (m *Metrics) Deductions() *prometheus.CounterVec { return m.deductions }
