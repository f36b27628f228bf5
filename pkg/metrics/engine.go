package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records query engine health: probe outcomes, store fallbacks,
// and query latency per backing store.
type EngineMetrics struct {
	probes    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	probes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_probe_total",
		Help: "Availability probe attempts by outcome.",
	}, []string{"outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_fallback_total",
		Help: "Requests re-executed against the in-memory store.",
	}, []string{"resource"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_query_duration_seconds",
		Help:    "Listing query duration by backing store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "store"})
	reg.MustRegister(probes, fallbacks, duration)
	return &EngineMetrics{
		probes:    probes,
		fallbacks: fallbacks,
		duration:  duration,
	}
}

// IncProbe counts one probe attempt with the given outcome ("ok" or "fail").
func (m *EngineMetrics) IncProbe(outcome string) {
	if m == nil || m.probes == nil {
		return
	}
	m.probes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncFallback counts one request served by the in-memory store.
func (m *EngineMetrics) IncFallback(resource string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(resource)).Inc()
}

// ObserveQuery records one listing query duration.
func (m *EngineMetrics) ObserveQuery(resource, store string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(resource), normalizeLabel(store)).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
