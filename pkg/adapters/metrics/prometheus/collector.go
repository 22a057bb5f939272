package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	compilations       *prometheus.CounterVec
	compileDuration    *prometheus.HistogramVec
	parseWarnings      *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	validations        *prometheus.CounterVec
	validationIssues   *prometheus.CounterVec
}

// NewCollector registers the compiler metrics on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dagoc_compilations_total",
				Help: "Total number of compilation requests by result",
			},
			[]string{"result"},
		),
		compileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dagoc_compile_duration_seconds",
				Help:    "Compilation request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"result"},
		),
		parseWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dagoc_parse_warnings_total",
				Help: "Total number of edge parse warnings",
			},
			[]string{"graph"},
		),
		cacheInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dagoc_cache_invalidations_total",
				Help: "Total number of cached bundles discarded",
			},
			[]string{"reason"},
		),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dagoc_validations_total",
				Help: "Total number of validation requests by outcome",
			},
			[]string{"outcome"},
		),
		validationIssues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dagoc_validation_issues_total",
				Help: "Total number of validation issues by severity",
			},
			[]string{"severity"},
		),
	}
}

// RecordCompilation records one compilation request. result is "hit", "miss"
// or "error".
func (c *Collector) RecordCompilation(result string, duration time.Duration) {
	c.compilations.WithLabelValues(result).Inc()
	c.compileDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordParseWarnings adds count warnings for graph.
func (c *Collector) RecordParseWarnings(graph string, count int) {
	if count <= 0 {
		return
	}
	c.parseWarnings.WithLabelValues(graph).Add(float64(count))
}

// RecordCacheInvalidation records a discarded cache entry.
func (c *Collector) RecordCacheInvalidation(reason string) {
	c.cacheInvalidations.WithLabelValues(reason).Inc()
}

// RecordValidation records one validation report.
func (c *Collector) RecordValidation(valid bool, errors, warnings int) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	c.validations.WithLabelValues(outcome).Inc()
	c.validationIssues.WithLabelValues("error").Add(float64(errors))
	c.validationIssues.WithLabelValues("warning").Add(float64(warnings))
}
