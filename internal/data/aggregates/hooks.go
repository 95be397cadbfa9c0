package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/coursetree/internal/observability"
)

// Hooks receives one signal per course tree write. AddRows fires only after
// a commit, so rolled-back chapters never inflate the row counters.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	AddRows(name string, written, pruned int)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) AddRows(string, int, int)                       {}

type metricsHooks struct {
	m *observability.Metrics
}

// NewObservabilityHooks reports aggregate writes to the run's prometheus
// collectors. A nil metrics set yields no-op hooks.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(name string) { h.m.IncAggregateConflict(strings.TrimSpace(name)) }

func (h metricsHooks) IncRetry(name string) { h.m.IncAggregateRetry(strings.TrimSpace(name)) }

func (h metricsHooks) AddRows(name string, written, pruned int) {
	name = strings.TrimSpace(name)
	h.m.AddAggregateRows(name, "written", written)
	h.m.AddAggregateRows(name, "pruned", pruned)
}
