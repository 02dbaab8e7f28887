// Package metrics exposes prometheus instruments for the processing engine.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PassTriggerStartup = "startup"
	PassTriggerTick    = "tick"
	PassTriggerManual  = "manual"
)

// SchedulerMetrics captures processing-pass health signals.
type SchedulerMetrics struct {
	passRuns        *prometheus.CounterVec
	passSkipped     *prometheus.CounterVec
	passDuration    prometheus.Histogram
	bookingsCreated prometheus.Counter
	seriesFailed    prometheus.Counter
	seriesCompleted prometheus.Counter
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer)
	})
	return schedulerMetrics
}

func newSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		passRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookflow_scheduler_pass_runs_total",
			Help: "Processing passes started, by trigger.",
		}, []string{"trigger"}),
		passSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookflow_scheduler_pass_skipped_total",
			Help: "Ticks or manual triggers skipped because a pass was in flight.",
		}, []string{"trigger"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookflow_scheduler_pass_duration_seconds",
			Help:    "Wall time of a full processing pass.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookflow_scheduler_bookings_created_total",
			Help: "Bookings created by the processing engine.",
		}),
		seriesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookflow_scheduler_series_failed_total",
			Help: "Series whose processing failed within a pass.",
		}),
		seriesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookflow_scheduler_series_completed_total",
			Help: "Series transitioned to completed.",
		}),
	}

	reg.MustRegister(
		m.passRuns,
		m.passSkipped,
		m.passDuration,
		m.bookingsCreated,
		m.seriesFailed,
		m.seriesCompleted,
	)
	return m
}

func (m *SchedulerMetrics) IncPassRun(trigger string) {
	m.passRuns.WithLabelValues(trigger).Inc()
}

func (m *SchedulerMetrics) IncPassSkipped(trigger string) {
	m.passSkipped.WithLabelValues(trigger).Inc()
}

func (m *SchedulerMetrics) ObservePassDuration(d time.Duration) {
	m.passDuration.Observe(d.Seconds())
}

func (m *SchedulerMetrics) AddBookingsCreated(n int) {
	if n > 0 {
		m.bookingsCreated.Add(float64(n))
	}
}

func (m *SchedulerMetrics) AddSeriesFailed(n int) {
	if n > 0 {
		m.seriesFailed.Add(float64(n))
	}
}

func (m *SchedulerMetrics) IncSeriesCompleted() {
	m.seriesCompleted.Inc()
}
