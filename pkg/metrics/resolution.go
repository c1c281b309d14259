package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"

	SourceStore    = "store"
	SourcePushdown = "pushdown"
	SourceCache    = "cache"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ResolutionMetrics records how price lookups are answered.
type ResolutionMetrics struct {
	resolutions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewResolutionMetrics registers the resolution collectors on the provided registerer.
func NewResolutionMetrics(reg prometheus.Registerer) *ResolutionMetrics {
	if reg == nil {
		return &ResolutionMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_resolutions_total",
		Help: "Price resolutions partitioned by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_resolution_duration_seconds",
		Help:    "Time spent answering a price query, by the source that answered it.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"source"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_cache_lookups_total",
		Help: "Resolution cache lookups partitioned by result.",
	}, []string{"result"})
	reg.MustRegister(resolutions, duration, cacheLookups)
	return &ResolutionMetrics{
		resolutions:  resolutions,
		duration:     duration,
		cacheLookups: cacheLookups,
	}
}

// IncOutcome counts one finished resolution.
func (m *ResolutionMetrics) IncOutcome(outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long the named source took.
func (m *ResolutionMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncCacheLookup counts a cache hit, miss or error.
func (m *ResolutionMetrics) IncCacheLookup(result string) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
