package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWorkflowMetricsNilSafe(t *testing.T) {
	var m *WorkflowMetrics
	m.IncDocument("GRN")
	m.ObserveDuration("receive_goods", time.Second)
	m.IncFailure("create_sale")

	empty := NewWorkflowMetrics(nil)
	empty.IncDocument("RET")
	empty.IncFailure("")
}

func TestWorkflowMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.IncDocument("GRN")
	m.ObserveDuration("receive_goods", 120*time.Millisecond)
	m.IncFailure("create_return")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}
