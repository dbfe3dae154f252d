package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records how the ledger workflows behave in production:
// documents created per series and commit latency per workflow.
type WorkflowMetrics struct {
	documents *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
}

// NewWorkflowMetrics registers the ledger workflow metrics on the provided
// registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_documents_created_total",
		Help: "Documents committed, labelled by series (GRN, INV, RET).",
	}, []string{"series"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_workflow_duration_seconds",
		Help:    "Duration of ledger workflow transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_workflow_failures_total",
		Help: "Ledger workflow transactions rolled back, labelled by workflow.",
	}, []string{"workflow"})
	reg.MustRegister(documents, duration, failures)
	return &WorkflowMetrics{
		documents: documents,
		duration:  duration,
		failures:  failures,
	}
}

// IncDocument counts one committed document for the series.
func (m *WorkflowMetrics) IncDocument(series string) {
	if m == nil || m.documents == nil {
		return
	}
	m.documents.WithLabelValues(normalizeLabel(series)).Inc()
}

// ObserveDuration records the elapsed time for the named workflow.
func (m *WorkflowMetrics) ObserveDuration(workflow string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(workflow)).Observe(elapsed.Seconds())
}

// IncFailure counts one rolled-back workflow transaction.
func (m *WorkflowMetrics) IncFailure(workflow string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(workflow)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
