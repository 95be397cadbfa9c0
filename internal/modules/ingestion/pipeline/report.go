package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yungbote/coursetree/internal/modules/ingestion/patch"
	"github.com/yungbote/coursetree/internal/modules/ingestion/persist"
	"github.com/yungbote/coursetree/internal/modules/ingestion/validation"
)

type ChapterReport struct {
	Ix         int                    `json:"ix"`
	Title      string                 `json:"title"`
	Status     persist.ChapterStatus  `json:"status"`
	Error      string                 `json:"error,omitempty"`
	Violations []validation.Violation `json:"violations,omitempty"`
	Learnings  int                    `json:"learnings,omitempty"`
	Questions  int                    `json:"questions,omitempty"`
	Pruned     int                    `json:"pruned,omitempty"`
	Projected  bool                   `json:"projected,omitempty"`
}

// Report is produced by every run, including failed ones.
type Report struct {
	Location   string    `json:"location"`
	Course     string    `json:"course"`
	CourseID   string    `json:"course_id,omitempty"`
	TraceID    string    `json:"trace_id,omitempty"`
	DryRun     bool      `json:"dry_run"`
	Strict     bool      `json:"strict"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Rounds          int                    `json:"rounds"`
	Applied         []patch.Edit           `json:"applied,omitempty"`
	Violations      []validation.Violation `json:"violations"`
	ViolationCounts []validation.KindCount `json:"violation_counts,omitempty"`
	Chapters        []ChapterReport        `json:"chapters"`

	// Halted is set when course-scope violations stopped all persistence.
	Halted    bool   `json:"halted"`
	LoadError string `json:"load_error,omitempty"`
	Error     string `json:"error,omitempty"`
	OK        bool   `json:"ok"`
}

// Failed reports whether any chapter hit a storage failure.
func (r *Report) Failed() bool {
	if r == nil {
		return false
	}
	for _, ch := range r.Chapters {
		if ch.Status == persist.StatusFailed {
			return true
		}
	}
	return false
}

// Blocking returns the violations that block under the run's strictness.
func (r *Report) Blocking() []validation.Violation {
	var out []validation.Violation
	for _, v := range r.Violations {
		if validation.Blocking(v, r.Strict) {
			out = append(out, v)
		}
	}
	return out
}

// WriteFile stores the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
