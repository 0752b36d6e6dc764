package observability

import (
	"context"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	completions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	starts      prometheus.Counter
	restores    prometheus.Counter
	activated   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_task_completions_total",
			Help: "Total number of completed tasks by task name",
		}, []string{"task"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_task_rejections_total",
			Help: "Total number of refused completions by task name and error code",
		}, []string{"task", "code"}),
		starts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_process_starts_total",
			Help: "Total number of started (or restarted) processes",
		}),
		restores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_process_restores_total",
			Help: "Total number of sessions overwritten by a restore",
		}),
		activated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskflow_activated_tasks",
			Help:    "Number of follow-on tasks activated per completion",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}

	for _, c := range []prometheus.Collector{m.completions, m.rejections, m.starts, m.restores, m.activated} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record every event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessStart: func(context.Context, *domain.ProcessEvent) {
			m.starts.Inc()
		},
		OnProcessRestore: func(context.Context, *domain.ProcessEvent) {
			m.restores.Inc()
		},
		OnTaskComplete: func(_ context.Context, e *domain.TaskEvent) {
			m.completions.WithLabelValues(e.Task).Inc()
			if e.Diff != nil {
				m.activated.Observe(float64(len(e.Diff.Activated)))
			}
		},
		OnTaskReject: func(_ context.Context, e *domain.TaskEvent) {
			m.rejections.WithLabelValues(e.Task, rejectionCode(e)).Inc()
		},
	}
}

// rejectionCode keeps the label set bounded: policy errors have no TaskError code.
func rejectionCode(e *domain.TaskEvent) string {
	if e.Code != "" {
		return string(e.Code)
	}
	return "POLICY_FAILED"
}
