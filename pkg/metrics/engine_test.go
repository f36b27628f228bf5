package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.IncProbe("ok")
	m.IncProbe("fail")
	m.IncProbe("fail")
	m.IncFallback("products")
	m.ObserveQuery("products", "memory", 30*time.Millisecond)

	if got := testutil.ToFloat64(m.probes.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok probe, got %f", got)
	}
	if got := testutil.ToFloat64(m.probes.WithLabelValues("fail")); got != 2 {
		t.Fatalf("expected 2 failed probes, got %f", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("products")); got != 1 {
		t.Fatalf("expected 1 fallback, got %f", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.IncProbe("ok")
	m.IncFallback("orders")
	m.ObserveQuery("orders", "relational", time.Millisecond)

	empty := NewEngineMetrics(nil)
	empty.IncProbe("ok")
	empty.IncFallback("products")
}

func TestEmptyLabelNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)
	m.IncFallback("")
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty label to normalize to unknown, got %f", got)
	}
}
