package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/platform/dbctx"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

// BaseDeps is shared by every course tree write.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// rowDelta is what a write body reports about the rows it touched.
type rowDelta struct {
	Written int
	Pruned  int
}

// executeWrite runs fn in one transaction. A failure is mapped to a coded
// error tagged with scope (the unit that was rolled back).
func executeWrite(ctx context.Context, deps BaseDeps, op, scope string, fn func(dbc dbctx.Context) (rowDelta, error)) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "Course.Tree.Write"
	}

	var delta rowDelta
	err := deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		d, err := fn(dbc)
		delta = d
		return err
	})
	mapped := MapError(op, err)

	switch {
	case mapped == nil:
		deps.Hooks.AddRows(op, delta.Written, delta.Pruned)
	case domainagg.IsCode(mapped, domainagg.CodeConflict):
		deps.Hooks.IncConflict(op)
	case domainagg.IsCode(mapped, domainagg.CodeRetryable):
		deps.Hooks.IncRetry(op)
	}
	deps.Hooks.ObserveOperation(op, aggregateErrorStatus(mapped), time.Since(start))

	if mapped != nil && strings.TrimSpace(scope) != "" {
		return domainagg.WithScope(mapped, scope)
	}
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
