package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursetree"

// Metrics holds the ingestion collectors on a private registry so batch runs
// can dump them to a node-exporter textfile without a scrape endpoint.
type Metrics struct {
	reg *prometheus.Registry

	stageLatency   *prometheus.HistogramVec
	violations     *prometheus.CounterVec
	patches        *prometheus.CounterVec
	chapters       *prometheus.CounterVec
	runs           *prometheus.CounterVec
	projections    *prometheus.CounterVec
	aggregateOps   *prometheus.HistogramVec
	aggregateConfl *prometheus.CounterVec
	aggregateRetry *prometheus.CounterVec
	aggregateRows  *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		stageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each ingestion stage.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage", "status"}),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "violations_total",
			Help:      "Structural violations reported, by kind and severity.",
		}, []string{"kind", "severity"}),
		patches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patch",
			Name:      "edits_total",
			Help:      "Patch edits applied, by operation.",
		}, []string{"op"}),
		chapters: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "chapters_total",
			Help:      "Chapter outcomes, by status.",
		}, []string{"status"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Ingestion runs, by result.",
		}, []string{"result"}),
		projections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "projections_total",
			Help:      "Post-commit graph projections, by status.",
		}, []string{"status"}),
		aggregateOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "operation_duration_seconds",
			Help:      "Aggregate write duration, by operation and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		aggregateConfl: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "conflicts_total",
			Help:      "Aggregate writes rejected with a conflict.",
		}, []string{"op"}),
		aggregateRetry: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "retryable_total",
			Help:      "Aggregate writes that failed with a retryable error.",
		}, []string{"op"}),
		aggregateRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "rows_total",
			Help:      "Course tree rows touched by committed writes, by operation and action.",
		}, []string{"op", "action"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(normLabel(stage), normLabel(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncViolation(kind, severity string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(normLabel(kind), normLabel(severity)).Inc()
}

func (m *Metrics) IncPatch(op string) {
	if m == nil {
		return
	}
	m.patches.WithLabelValues(normLabel(op)).Inc()
}

func (m *Metrics) IncChapter(status string) {
	if m == nil {
		return
	}
	m.chapters.WithLabelValues(normLabel(status)).Inc()
}

func (m *Metrics) IncProjection(status string) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(normLabel(status)).Inc()
}

func (m *Metrics) FinishRun(result string, at time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(normLabel(result)).Inc()
	m.lastRun.Set(float64(at.Unix()))
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(normLabel(op), normLabel(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConfl.WithLabelValues(normLabel(op)).Inc()
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetry.WithLabelValues(normLabel(op)).Inc()
}

// AddAggregateRows counts rows upserted or pruned by a committed write.
func (m *Metrics) AddAggregateRows(op, action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.aggregateRows.WithLabelValues(normLabel(op), normLabel(action)).Add(float64(n))
}

// WriteTextfile atomically writes every collector in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}

func normLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
