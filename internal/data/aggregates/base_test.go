package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/platform/dbctx"
)

func write(hooks Hooks, op, scope string, fn func(dbctx.Context) (rowDelta, error)) error {
	return executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, op, scope, fn)
}

func TestExecuteWrite_CommittedReportsRows(t *testing.T) {
	hooks := &spyHooks{}
	err := write(hooks, "Course.Tree.CommitChapter", "chapter:1", func(dbctx.Context) (rowDelta, error) {
		return rowDelta{Written: 9, Pruned: 2}, nil
	})
	if err != nil {
		t.Fatalf("executeWrite: %v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != "success" {
		t.Fatalf("operations: %+v", hooks.Operations)
	}
	if hooks.Written != 9 || hooks.Pruned != 2 {
		t.Fatalf("rows: written=%d pruned=%d", hooks.Written, hooks.Pruned)
	}
}

func TestExecuteWrite_FailureTagsScopeAndSkipsRows(t *testing.T) {
	hooks := &spyHooks{}
	err := write(hooks, "Course.Tree.CommitChapter", "chapter:3", func(dbctx.Context) (rowDelta, error) {
		return rowDelta{Written: 4}, InvariantError("learning count drifted")
	})
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("code: %v", err)
	}
	if got := domainagg.ScopeOf(err); got != "chapter:3" {
		t.Fatalf("scope = %q", got)
	}
	if hooks.Written != 0 {
		t.Fatalf("rolled-back write reported %d rows", hooks.Written)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("operations: %+v", hooks.Operations)
	}
}

func TestExecuteWrite_EmptyScopeLeavesErrorUntagged(t *testing.T) {
	err := write(&spyHooks{}, "", "", func(dbctx.Context) (rowDelta, error) {
		return rowDelta{}, ConflictError("slug taken")
	})
	if got := domainagg.ScopeOf(err); got != "" {
		t.Fatalf("scope = %q", got)
	}
}

func TestExecuteWrite_ConflictAndRetryCounters(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      domainagg.ErrorCode
		conflicts int
		retries   int
	}{
		{"conflict", ConflictError("stale version"), domainagg.CodeConflict, 1, 0},
		{"retryable", RetryableError("lock timeout"), domainagg.CodeRetryable, 0, 1},
		{"deadline", context.DeadlineExceeded, domainagg.CodeRetryable, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := write(hooks, "Course.Tree.UpsertCourse", "course", func(dbctx.Context) (rowDelta, error) {
				return rowDelta{}, tc.err
			})
			if !domainagg.IsCode(err, tc.code) {
				t.Fatalf("code: %v", err)
			}
			if len(hooks.Conflicts) != tc.conflicts || len(hooks.Retries) != tc.retries {
				t.Fatalf("conflicts=%v retries=%v", hooks.Conflicts, hooks.Retries)
			}
			if hooks.Operations[0].Status != string(tc.code) {
				t.Fatalf("status = %s", hooks.Operations[0].Status)
			}
		})
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
	Written    int
	Pruned     int
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }

func (h *spyHooks) IncRetry(name string) { h.Retries = append(h.Retries, name) }

func (h *spyHooks) AddRows(_ string, written, pruned int) {
	h.Written += written
	h.Pruned += pruned
}
