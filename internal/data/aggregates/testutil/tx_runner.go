package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/coursetree/internal/data/aggregates"
	"github.com/yungbote/coursetree/internal/platform/dbctx"
)

// InjectedTxRunner injects begin/body/commit failures into aggregate writes.
//
// With DB set, callbacks run inside a real transaction that is rolled back on
// any injected or returned error; without DB they run with no transaction.
// FailOnCall makes the Nth InTx call (1-based) fail with FailOnCallErr after
// its body ran, which simulates a commit failure for one chapter only.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin     error
	FailCommit    error
	FailOnCall    int
	FailOnCallErr error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	call := r.BeginCalls
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	if r.FailOnCall > 0 && call == r.FailOnCall {
		failCommit = r.FailOnCallErr
	}
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	body := func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		return failCommit
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(body)
	} else {
		err = body(nil)
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}
