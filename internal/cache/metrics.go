package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the cache engine.
type Metrics struct {
	HitsTotal               prometheus.Counter
	MissesTotal             prometheus.Counter
	EvictionsTotal          prometheus.Counter
	Entries                 prometheus.Gauge
	FetchesTotal            prometheus.Counter
	SingleflightSharedTotal prometheus.Counter
	InvalidationsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers the cache metrics.
//
// sync.Once guards registration so repeated construction (tests, CLI
// re-entry) cannot panic with a duplicate-collector error. All metrics
// are prefixed with "boardd_cache_".
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "boardd_cache_hits_total",
				Help: "Total number of cache hits across all tiers",
			}),
			MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "boardd_cache_misses_total",
				Help: "Total number of cache misses",
			}),
			EvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "boardd_cache_evictions_total",
				Help: "Total number of expired entries evicted",
			}),
			Entries: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "boardd_cache_entries",
				Help: "Current number of entries in the volatile tier",
			}),
			FetchesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "boardd_cache_fetches_total",
				Help: "Total number of upstream fetches executed on cache miss",
			}),
			SingleflightSharedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "boardd_cache_singleflight_shared_total",
				Help: "Total number of callers that shared an in-flight fetch instead of triggering their own",
			}),
			InvalidationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "boardd_cache_invalidations_total",
					Help: "Total number of invalidation events processed",
				},
				[]string{"event"},
			),
		}
	})
	return globalMetrics
}

// RecordHit records a cache hit.
func (m *Metrics) RecordHit() {
	m.HitsTotal.Inc()
}

// RecordMiss records a cache miss.
func (m *Metrics) RecordMiss() {
	m.MissesTotal.Inc()
}

// RecordEviction records an expired-entry eviction.
func (m *Metrics) RecordEviction() {
	m.EvictionsTotal.Inc()
}

// SetEntries updates the volatile-tier size gauge.
func (m *Metrics) SetEntries(n int) {
	m.Entries.Set(float64(n))
}

// RecordFetch records an upstream fetch.
func (m *Metrics) RecordFetch() {
	m.FetchesTotal.Inc()
}

// RecordShared records a caller that joined an in-flight fetch.
func (m *Metrics) RecordShared() {
	m.SingleflightSharedTotal.Inc()
}

// RecordInvalidation records a processed invalidation event.
func (m *Metrics) RecordInvalidation(event string) {
	m.InvalidationsTotal.WithLabelValues(event).Inc()
}
