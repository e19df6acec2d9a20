// Package metrics holds the process-local Prometheus collectors the
// discovery runner updates as it works. There is no HTTP exporter: metrics
// are registered against a private registry and read back only through
// Gather, which the CLI's -stats flag uses to print a snapshot.
package metrics

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles the collectors for one discovery run.
type Registry struct {
	registry *prometheus.Registry

	CandidatesEvaluated prometheus.Counter
	CandidatesSkipped   prometheus.Counter
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CycleDuration       prometheus.Histogram
	CurrentCycle        prometheus.Gauge
}

// New registers a fresh set of collectors against a private registry so
// concurrent discovery runs (e.g. in tests) never collide on the default
// global registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		CandidatesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discover_candidates_evaluated_total",
			Help: "Total number of strategy descriptors evaluated against cached bars.",
		}),
		CandidatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discover_candidates_skipped_total",
			Help: "Total number of descriptors skipped because an identical hash already ran.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discover_cache_hits_total",
			Help: "Total number of descriptor hashes found already persisted.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discover_cache_misses_total",
			Help: "Total number of descriptor hashes not found in the persistence cache.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "discover_cycle_duration_seconds",
			Help:    "Wall-clock duration of one continuous-mode discovery cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CurrentCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "discover_current_cycle",
			Help: "Index of the continuous-mode cycle currently running.",
		}),
	}
	reg.MustRegister(r.CandidatesEvaluated, r.CandidatesSkipped, r.CacheHits, r.CacheMisses, r.CycleDuration, r.CurrentCycle)
	return r
}

// CacheHitRatio returns hits/(hits+misses), or 0 when nothing has been
// looked up yet.
func (r *Registry) CacheHitRatio() float64 {
	hits := counterValue(r.CacheHits)
	misses := counterValue(r.CacheMisses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return hits / total
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Gather returns every registered metric family for the CLI's -stats flag
// to render.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}
