package validation

import (
	"fmt"
	"sort"
)

type Kind string

const (
	NonContiguousIndex       Kind = "NonContiguousIndex"
	QuestionCountOutOfBounds Kind = "QuestionCountOutOfBounds"
	CorrectnessRuleViolated  Kind = "CorrectnessRuleViolated"
	MissingFeedback          Kind = "MissingFeedback"
	IncompleteChapter        Kind = "IncompleteChapter"
	DanglingChapter          Kind = "DanglingChapter"
	InvalidURL               Kind = "InvalidURL"
	DuplicateSlug            Kind = "DuplicateSlug"
	MissingField             Kind = "MissingField"
	InvalidValue             Kind = "InvalidValue"
)

type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// SeverityOf returns the fixed severity of a kind.
func SeverityOf(k Kind) Severity {
	if k == MissingFeedback {
		return SeverityWarning
	}
	return SeverityBlocking
}

// Violation is one structural problem. Chapter is the chapter ix the problem
// belongs to; 0 means course scope and Unattached means neither. Field names the offending field for
// MissingField and InvalidValue.
type Violation struct {
	Path              string   `json:"path"`
	Kind              Kind     `json:"kind"`
	Severity          Severity `json:"severity"`
	Detail            string   `json:"detail"`
	Chapter           int      `json:"chapter"`
	Field             string   `json:"field,omitempty"`
	RequiresAuthoring bool     `json:"requires_authoring,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", v.Severity, v.Kind, v.Path, v.Detail)
}

// Blocking reports whether v prevents persistence. Warnings block only in
// strict mode.
func Blocking(v Violation, strict bool) bool {
	return v.Severity == SeverityBlocking || strict
}

func HasBlocking(vs []Violation, strict bool) bool {
	for _, v := range vs {
		if Blocking(v, strict) {
			return true
		}
	}
	return false
}

// Unattached is the Chapter of a violation that belongs to no tree chapter
// and is not course scope. It blocks no chapter and does not halt the run,
// but still makes the run not OK.
const Unattached = -1

// ByChapter groups violations by chapter ix; course scope is key 0.
func ByChapter(vs []Violation) map[int][]Violation {
	out := map[int][]Violation{}
	for _, v := range vs {
		out[v.Chapter] = append(out[v.Chapter], v)
	}
	return out
}

// CountByKind returns kind counts in kind order.
func CountByKind(vs []Violation) []KindCount {
	counts := map[Kind]int{}
	for _, v := range vs {
		counts[v.Kind]++
	}
	out := make([]KindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KindCount{Kind: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

type KindCount struct {
	Kind  Kind `json:"kind"`
	Count int  `json:"count"`
}
