package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Course.Tree.CommitChapter", "success", 10*time.Millisecond)
	h.ObserveOperation("Course.Tree.UpsertCourse", "success", time.Millisecond)
	h.ObserveOperation("Course.Tree.CommitChapter", "conflict", time.Millisecond)
	h.IncConflict("Course.Tree.CommitChapter")
	h.IncRetry("Course.Tree.CommitChapter")
	h.AddRows("Course.Tree.CommitChapter", 12, 0)
	h.AddRows("Course.Tree.CommitChapter", 12, 3)

	got := h.Statuses("Course.Tree.CommitChapter")
	if len(got) != 2 || got[0] != "success" || got[1] != "conflict" {
		t.Fatalf("unexpected statuses: %v", got)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 1 {
		t.Fatalf("unexpected counters conflicts=%v retries=%v", h.Conflicts, h.Retries)
	}
	if rc := h.Rows["Course.Tree.CommitChapter"]; rc.Written != 24 || rc.Pruned != 3 {
		t.Fatalf("rows = %+v", rc)
	}
}
