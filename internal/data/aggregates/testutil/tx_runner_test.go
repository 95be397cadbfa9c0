package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/coursetree/internal/platform/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_RollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailOnCallHitsOnlyThatCall(t *testing.T) {
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{FailOnCall: 2, FailOnCallErr: commitErr}
	noop := func(_ dbctx.Context) error { return nil }

	if err := r.InTx(context.Background(), noop); err != nil {
		t.Fatalf("call 1: %v", err)
	}
	if err := r.InTx(context.Background(), noop); !errors.Is(err, commitErr) {
		t.Fatalf("call 2: expected commit err, got %v", err)
	}
	if err := r.InTx(context.Background(), noop); err != nil {
		t.Fatalf("call 3: %v", err)
	}
	if r.BeginCalls != 3 || r.CommitCalls != 2 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailBeginSkipsBody(t *testing.T) {
	beginErr := errors.New("no connection")
	r := &InjectedTxRunner{FailBegin: beginErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin err, got %v", err)
	}
}
