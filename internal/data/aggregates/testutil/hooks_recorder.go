package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/coursetree/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
	Rows       map[string]RowCount
}

// RowCount accumulates AddRows calls for one operation.
type RowCount struct {
	Written int
	Pruned  int
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

func (h *HooksRecorder) AddRows(name string, written, pruned int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Rows == nil {
		h.Rows = map[string]RowCount{}
	}
	rc := h.Rows[name]
	rc.Written += written
	rc.Pruned += pruned
	h.Rows[name] = rc
}

// Statuses returns the recorded statuses of operation name, in order.
func (h *HooksRecorder) Statuses(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, op := range h.Operations {
		if op.Name == name {
			out = append(out, op.Status)
		}
	}
	return out
}
