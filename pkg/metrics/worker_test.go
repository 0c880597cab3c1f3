package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWorkerJobMetricsNilRegisterer(t *testing.T) {
	m := NewWorkerJobMetrics(nil)
	// All helpers must be safe no-ops.
	m.ObserveDuration("publish", time.Second)
	m.IncSuccess("publish")
	m.IncFailure("publish")
}

func TestWorkerJobMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerJobMetrics(reg)
	m.ObserveDuration("outbox_dispatch", 120*time.Millisecond)
	m.IncSuccess("outbox_dispatch")
	m.IncFailure("outbox_dispatch")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("normalizeLabel(\"\") = %q", got)
	}
	if got := normalizeLabel("refund_credit"); got != "refund_credit" {
		t.Fatalf("normalizeLabel = %q", got)
	}
}
