package graph

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments the scheduler updates as it
// drives a graph. A nil *Metrics is safe to use (every method is a no-op),
// mirroring the teacher's tolerance for an unconfigured observability stack.
type Metrics struct {
	superSteps      prometheus.Counter
	nodeDuration     *prometheus.HistogramVec
	checkpointWrites prometheus.Counter
	duplicateWrites  prometheus.Counter
}

// NewMetrics registers the scheduler's instruments against reg and returns a
// *Metrics ready to pass to Scheduler via WithMetrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		superSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "langgraph_super_steps_total",
			Help: "Total number of super-steps executed across all runs.",
		}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "langgraph_node_duration_seconds",
			Help: "Node execution duration in seconds.",
		}, []string{"node_id"}),
		checkpointWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "langgraph_checkpoint_writes_total",
			Help: "Total number of checkpoints persisted.",
		}),
		duplicateWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "langgraph_duplicate_writes_total",
			Help: "Total number of DuplicateWrite conflicts detected.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.superSteps, m.nodeDuration, m.checkpointWrites, m.duplicateWrites)
	}
	return m
}

func (m *Metrics) recordSuperStep() {
	if m == nil {
		return
	}
	m.superSteps.Inc()
}

func (m *Metrics) recordNodeDuration(nodeID string, seconds float64) {
	if m == nil {
		return
	}
	m.nodeDuration.WithLabelValues(nodeID).Observe(seconds)
}

func (m *Metrics) recordCheckpointWrite() {
	if m == nil {
		return
	}
	m.checkpointWrites.Inc()
}

func (m *Metrics) recordDuplicateWrite() {
	if m == nil {
		return
	}
	m.duplicateWrites.Inc()
}
