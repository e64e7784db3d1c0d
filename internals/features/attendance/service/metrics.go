package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submissions  *prometheus.CounterVec
	AtomicWait   *prometheus.HistogramVec
	ReportBuild  *prometheus.HistogramVec
	AuditDropped prometheus.Counter
}

// NewMetrics: daftar ke reg (test pakai prometheus.NewRegistry()).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "submissions_total",
			Help:      "Submission attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		AtomicWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "atomic_seconds",
			Help:      "Time spent in the per-key lock + transaction.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		ReportBuild: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "read_seconds",
			Help:      "Duration of history and report reads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "audit_dropped_total",
			Help:      "Audit rows that could not be written.",
		}),
	}
}

func (m *Metrics) submission(op, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) atomicTimer(op string) *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
	}
	return prometheus.NewTimer(m.AtomicWait.WithLabelValues(op))
}

func (m *Metrics) readTimer(kind string) *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
	}
	return prometheus.NewTimer(m.ReportBuild.WithLabelValues(kind))
}

func (m *Metrics) auditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
