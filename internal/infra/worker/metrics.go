package worker

import (
	"summarly/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics provides Prometheus metrics for the extraction worker pool.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// pool-specific metrics for task execution tracking.
//
// Pool-specific metrics:
//   - worker_pool_tasks_total: Total tasks by task name and status
//   - worker_pool_task_duration_seconds: Duration histogram of task execution
//   - worker_pool_queue_wait_seconds: Time tasks spent waiting for a slot
type PoolMetrics struct {
	*config.ConfigMetrics

	// TasksTotal counts executed tasks.
	// Labels: task (e.g. "extract_pdf"), status (success, failure, rejected)
	TasksTotal *prometheus.CounterVec

	// TaskDurationSeconds measures task execution time once a slot is held.
	// Buckets cover the 100ms-30s range typical for document extraction.
	TaskDurationSeconds prometheus.Histogram

	// QueueWaitSeconds measures how long tasks waited for a free slot.
	// Sustained non-zero waits mean the pool is undersized for the load.
	QueueWaitSeconds prometheus.Histogram
}

// NewPoolMetrics creates a PoolMetrics instance with all metrics registered
// on the default registry via promauto.
func NewPoolMetrics() *PoolMetrics {
	return &PoolMetrics{
		ConfigMetrics: config.NewConfigMetrics("extract_pool"),

		TasksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_pool_tasks_total",
			Help: "Total number of pool tasks by name and status",
		}, []string{"task", "status"}),

		TaskDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_pool_task_duration_seconds",
			Help:    "Duration of pool task execution in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		QueueWaitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_pool_queue_wait_seconds",
			Help:    "Time tasks spent waiting for a pool slot in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		}),
	}
}

// RecordTask records one task completion with its status and duration.
// Rejected tasks (queue-wait cancellation) record no duration.
func (m *PoolMetrics) RecordTask(task, status string, seconds float64) {
	m.TasksTotal.WithLabelValues(task, status).Inc()
	if status != "rejected" {
		m.TaskDurationSeconds.Observe(seconds)
	}
}

// RecordQueueWait records how long a task waited for a slot.
func (m *PoolMetrics) RecordQueueWait(seconds float64) {
	m.QueueWaitSeconds.Observe(seconds)
}
