package storage

import "github.com/prometheus/client_golang/prometheus"

type EngineMetrics struct {
	appendsTotal   prometheus.Counter
	appendFailures prometheus.Counter
	rotationsTotal prometheus.Counter
	readsTotal     prometheus.Counter
	readFailures   prometheus.Counter
	fsyncDuration  prometheus.Summary
	activeSegment  prometheus.Gauge
}

func NewEngineMetrics(registerer prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{}

	m.appendsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appends_total",
		Help: "Total number of records appended to the log.",
	})

	m.appendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "append_failures_total",
		Help: "Total number of appends that failed.",
	})

	m.rotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "segment_rotations_total",
		Help: "Total number of segment rotations.",
	})

	m.readsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reads_total",
		Help: "Total number of record reads.",
	})

	m.readFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "read_failures_total",
		Help: "Total number of reads that failed.",
	})

	m.fsyncDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:       "fsync_duration_seconds",
		Help:       "Duration of segment fsync.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})

	m.activeSegment = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_segment_id",
		Help: "Id of the segment currently accepting writes.",
	})

	if registerer != nil {
		registerer.MustRegister(
			m.appendsTotal,
			m.appendFailures,
			m.rotationsTotal,
			m.readsTotal,
			m.readFailures,
			m.fsyncDuration,
			m.activeSegment,
		)
	}

	return m
}
