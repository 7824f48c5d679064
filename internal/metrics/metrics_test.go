package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gopool/pkg/pool"
)

var _ pool.Observer = (*PoolMetrics)(nil)

func TestPoolMetrics_Observer(t *testing.T) {
	m := NewPoolMetrics(prometheus.NewRegistry())

	m.TaskSubmitted()
	m.TaskSubmitted()
	m.TaskRejected()

	m.TaskStarted(0)
	m.TaskStarted(1)
	require.Equal(t, float64(2), testutil.ToFloat64(m.BusyWorkers))

	m.TaskFinished(0, 10*time.Millisecond, false)
	m.TaskFinished(1, 20*time.Millisecond, true)

	require.Equal(t, float64(2), testutil.ToFloat64(m.TasksSubmitted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TasksRejected))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TasksCompleted.WithLabelValues("0")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TasksPanicked.WithLabelValues("1")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.BusyWorkers))
	require.Equal(t, 1, testutil.CollectAndCount(m.TaskDuration))
}

func TestPoolMetrics_WiredIntoPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPoolMetrics(reg)

	p := pool.New(2, pool.WithObserver(m))
	for range 5 {
		require.NoError(t, p.Submit(func() {}))
	}
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Close())
	require.ErrorIs(t, p.Submit(func() {}), pool.ErrPoolClosed)

	require.Equal(t, float64(6), testutil.ToFloat64(m.TasksSubmitted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TasksRejected))
	require.Equal(t, float64(0), testutil.ToFloat64(m.BusyWorkers))

	completed := testutil.ToFloat64(m.TasksCompleted.WithLabelValues("0")) +
		testutil.ToFloat64(m.TasksCompleted.WithLabelValues("1"))
	require.Equal(t, float64(5), completed)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	require.Contains(t, names, "gopool_pool_task_duration_seconds")
	require.Contains(t, names, "gopool_pool_tasks_panicked_total")
}
