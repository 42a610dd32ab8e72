package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric exported by the service.
const namespace = "mealprep"

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// CronJobMetrics covers the cron worker: per-job run outcomes and latency,
// the last good run for staleness alerts, and cycles skipped because another
// replica held the lock.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	lockSkips   prometheus.Counter
}

// NewCronJobMetrics registers on reg. A nil reg yields a no-op recorder.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return nil
	}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Subsystem: "cron", Name: name, Help: help}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"job_runs_total", "Cron job executions by result.",
		)), []string{"job", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   []float64{.05, .1, .5, 1, 5, 15, 30, 60, 300},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts(
			"job_last_success_timestamp_seconds", "Unix time of the last successful run.",
		)), []string{"job"}),
		lockSkips: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"lock_skips_total", "Cycles skipped because another worker held the lock.",
		))),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.lockSkips)
	return m
}

// ObserveRun records one execution of job. A nil err counts as ok.
func (c *CronJobMetrics) ObserveRun(job string, took time.Duration, err error) {
	if c == nil {
		return
	}
	job = normalizeLabel(job)
	c.duration.WithLabelValues(job).Observe(took.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, ResultFailed).Inc()
		return
	}
	c.runs.WithLabelValues(job, ResultOK).Inc()
	c.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}

func (c *CronJobMetrics) IncLockSkipped() {
	if c != nil {
		c.lockSkips.Inc()
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
