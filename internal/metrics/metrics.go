// Package metrics exposes assessment counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dream"

// Metrics owns a private registry so that tests can build as many as they
// like. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	assessments *prometheus.CounterVec
	failures    *prometheus.CounterVec
	irrStatus   *prometheus.CounterVec
	duration    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed assessments by the option with the lower lifecycle cost.",
		}, []string{"lower_lifecycle_cost"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_failures_total",
			Help:      "Assessments that did not complete, by reason.",
		}, []string{"reason"}),
		irrStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "irr_results_total",
			Help:      "IRR outcomes by system and solver status.",
		}, []string{"system", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Time spent in the analysis engine.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		}),
	}

	m.registry.MustRegister(
		m.assessments,
		m.failures,
		m.irrStatus,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveSuccess(elapsed time.Duration, pvIRR, dieselIRR, lower string) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(lower).Inc()
	m.irrStatus.WithLabelValues("pv", pvIRR).Inc()
	m.irrStatus.WithLabelValues("diesel", dieselIRR).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
