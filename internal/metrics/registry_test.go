package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// value reads the current value of a counter or gauge
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var metric dto.Metric
	if err := m.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter != nil {
		return metric.Counter.GetValue()
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.GenerationRoundsTotal == nil || r.SelectionsTotal == nil || r.ReplicatesTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Fatal("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordGeneration(t *testing.T) {
	r := NewRegistry()
	r.RecordGeneration("capped", 50, 3, 1)
	r.RecordGeneration("capped", 50, 0, 0)
	r.RecordGeneration("empty", 0, 0, 0)

	counter, err := r.GenerationRoundsTotal.GetMetricWithLabelValues("capped")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("capped rounds = %v, want 2", metric.Counter.GetValue())
	}

	if got := value(t, r.CandidatePairsDrawn); got != 100 {
		t.Errorf("drawn = %v, want 100", got)
	}
	if got := value(t, r.KnownPPIExclusions); got != 3 {
		t.Errorf("known exclusions = %v, want 3", got)
	}
}

func TestRecordSelection(t *testing.T) {
	r := NewRegistry()
	r.RecordSelection(10, 6, 4, 4, time.Millisecond)
	r.RecordSelection(10, 2, 4, 2, time.Millisecond)

	if got := value(t, r.SelectionsTotal.WithLabelValues("sampled")); got != 1 {
		t.Errorf("sampled selections = %v, want 1", got)
	}
	if got := value(t, r.SelectionsTotal.WithLabelValues("all")); got != 1 {
		t.Errorf("all selections = %v, want 1", got)
	}
	if got := value(t, r.InstancesTotal); got != 6 {
		t.Errorf("instances = %v, want 6", got)
	}
}

func TestReplicateLifecycle(t *testing.T) {
	r := NewRegistry()
	r.ReplicateStarted()
	r.ReplicateStarted()
	r.ReplicateFinished("completed", time.Second)

	if got := value(t, r.ReplicatesInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	if got := value(t, r.ReplicatesTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("completed = %v, want 1", got)
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.RecordGeneration("capped", 1, 0, 0)
	r.RecordSelection(1, 1, 1, 1, 0)
	r.ReplicateStarted()
	r.ReplicateFinished("failed", 0)
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordGeneration("exhaustive", 6, 1, 0)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `rrs_generation_rounds_total{regime="exhaustive"} 1`) {
		t.Errorf("expected generation counter in exposition, got:\n%s", body)
	}
}
