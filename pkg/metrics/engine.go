package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks subscriber-state mutations and the lock guarding them.
type EngineMetrics struct {
	pauseToggles    *prometheus.CounterVec
	selectionWrites *prometheus.CounterVec
	lockWait        *prometheus.HistogramVec
	reportBuild     *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	pauseToggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pause_toggles_total",
		Help:      "Pause toggles by outcome (paused, resumed, rejected).",
	}, []string{"outcome"})
	selectionWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selection_writes_total",
		Help:      "Meal selection writes by operation.",
	}, []string{"op"})
	lockWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "subscriber_lock_wait_seconds",
		Help:      "Time spent waiting for the per-subscriber mutation lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"result"})
	reportBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_build_seconds",
		Help:      "Time to load a day snapshot and fold it into a report.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"report"})
	reg.MustRegister(pauseToggles, selectionWrites, lockWait, reportBuild)
	return &EngineMetrics{
		pauseToggles:    pauseToggles,
		selectionWrites: selectionWrites,
		lockWait:        lockWait,
		reportBuild:     reportBuild,
	}
}

// IncPauseToggle counts a pause toggle outcome.
func (m *EngineMetrics) IncPauseToggle(outcome string) {
	if m == nil || m.pauseToggles == nil {
		return
	}
	m.pauseToggles.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSelectionWrite counts a selection write (select, save, clear, skipped).
func (m *EngineMetrics) IncSelectionWrite(op string) {
	if m == nil || m.selectionWrites == nil {
		return
	}
	m.selectionWrites.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveLockWait records how long a lock acquisition took; result is acquired or busy.
func (m *EngineMetrics) ObserveLockWait(result string, wait time.Duration) {
	if m == nil || m.lockWait == nil {
		return
	}
	m.lockWait.WithLabelValues(normalizeLabel(result)).Observe(wait.Seconds())
}

// ObserveReport records how long building a report took.
func (m *EngineMetrics) ObserveReport(report string, took time.Duration) {
	if m == nil || m.reportBuild == nil {
		return
	}
	m.reportBuild.WithLabelValues(normalizeLabel(report)).Observe(took.Seconds())
}
