// Package metrics exposes Prometheus collectors driven by one planning
// invocation: jobs scheduled and left non-processed, per-group solve
// duration, the two objective components, plan-write duration, and an
// invocation counter by outcome. pkg/orchestrator sets/observes these
// directly around the steps they describe; a scrape failure never
// affects planning behaviour.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsScheduled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_jobs_scheduled",
			Help: "Number of jobs placed on a machine in the most recent invocation",
		},
	)

	JobsNonProcessed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_jobs_non_processed",
			Help: "Number of jobs left unscheduled in the most recent invocation",
		},
	)

	GroupSolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_group_solve_duration_seconds",
			Help:    "Time taken to solve one machine group's CP model",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"machine_group"},
	)

	ObjectiveAdjustmentComponent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_objective_adjustment_component",
			Help: "Sum of idle-time adjustment across the most recent invocation",
		},
	)

	ObjectiveTardyComponent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_objective_tardy_component",
			Help: "Sum of tardiness across the most recent invocation",
		},
	)

	PlanWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_plan_write_duration_seconds",
			Help:    "Time taken to transactionally replace the stored plan",
			Buckets: prometheus.DefBuckets,
		},
	)

	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_invocations_total",
			Help: "Total planning invocations by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(JobsScheduled)
	prometheus.MustRegister(JobsNonProcessed)
	prometheus.MustRegister(GroupSolveDuration)
	prometheus.MustRegister(ObjectiveAdjustmentComponent)
	prometheus.MustRegister(ObjectiveTardyComponent)
	prometheus.MustRegister(PlanWriteDuration)
	prometheus.MustRegister(InvocationsTotal)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times one operation and reports it to a histogram on Observe.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
