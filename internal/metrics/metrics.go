// Package metrics exports worker pool activity as Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gopool"

// PoolMetrics implements pool.Observer on top of Prometheus collectors.
type PoolMetrics struct {
	TasksSubmitted prometheus.Counter
	TasksRejected  prometheus.Counter
	TasksCompleted *prometheus.CounterVec
	TasksPanicked  *prometheus.CounterVec
	BusyWorkers    prometheus.Gauge
	TaskDuration   prometheus.Histogram
}

// NewPoolMetrics creates the pool collectors and registers them with reg.
func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	m := &PoolMetrics{
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks accepted by the pool",
		}),
		TasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_rejected_total",
			Help:      "Total number of tasks submitted after shutdown began",
		}),
		TasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that returned normally, per worker",
		}, []string{"worker"}),
		TasksPanicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_panicked_total",
			Help:      "Total number of tasks that panicked, per worker",
		}, []string{"worker"}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a task",
		}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "task_duration_seconds",
			Help:      "Histogram of task execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.TasksSubmitted,
		m.TasksRejected,
		m.TasksCompleted,
		m.TasksPanicked,
		m.BusyWorkers,
		m.TaskDuration,
	)
	return m
}

func (m *PoolMetrics) TaskSubmitted() {
	m.TasksSubmitted.Inc()
}

func (m *PoolMetrics) TaskRejected() {
	m.TasksRejected.Inc()
}

func (m *PoolMetrics) TaskStarted(workerID int) {
	m.BusyWorkers.Inc()
}

func (m *PoolMetrics) TaskFinished(workerID int, elapsed time.Duration, panicked bool) {
	m.BusyWorkers.Dec()
	m.TaskDuration.Observe(elapsed.Seconds())

	worker := strconv.Itoa(workerID)
	if panicked {
		m.TasksPanicked.WithLabelValues(worker).Inc()
	} else {
		m.TasksCompleted.WithLabelValues(worker).Inc()
	}
}
