package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AttendanceOutcomes counts employee-day evaluations by outcome (processed, absent, skipped, error).
	AttendanceOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ess",
		Subsystem: "attendance",
		Name:      "outcomes_total",
		Help:      "Employee-day attendance evaluations by outcome.",
	}, []string{"outcome"})

	// LeaveDeductions counts auto-deducted leave applications.
	LeaveDeductions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ess",
		Subsystem: "leave",
		Name:      "auto_deductions_total",
		Help:      "Leave applications created for monthly late marks.",
	})

	SyncTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ess",
		Subsystem: "sync",
		Name:      "transitions_total",
		Help:      "Sync queue item state transitions.",
	}, []string{"doctype", "status"})

	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ess",
		Subsystem: "cron",
		Name:      "job_duration_seconds",
		Help:      "Scheduled job run time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job", "result"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AttendanceOutcomes, LeaveDeductions, SyncTransitions, JobDuration)
}

// ObserveJob records a job run.
func ObserveJob(name string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	JobDuration.WithLabelValues(name, result).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RegisterStreamGauge exposes the number of open notification streams.
func RegisterStreamGauge(reg prometheus.Registerer, subscribers func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "ess",
		Name:      "notification_streams_open",
		Help:      "Open server-sent event streams.",
	}, func() float64 { return float64(subscribers()) }))
}
