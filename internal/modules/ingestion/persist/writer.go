// Package persist writes validated course trees through the course tree
// aggregate: the course row once, then one transaction per chapter.
package persist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/coursetree/internal/domain"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
	"github.com/yungbote/coursetree/internal/observability"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type ChapterStatus string

const (
	StatusCommitted    ChapterStatus = "committed"
	StatusBlocked      ChapterStatus = "blocked"
	StatusFailed       ChapterStatus = "failed"
	StatusNotAttempted ChapterStatus = "not_attempted"
)

// Projector mirrors a committed chapter somewhere outside the database.
type Projector interface {
	ProjectChapter(ctx context.Context, course *types.Course, cw domainagg.ChapterWrite) error
}

type Options struct {
	// Workers bounds concurrent chapter transactions; below 2 chapters run in order.
	Workers int
}

type ChapterOutcome struct {
	Ix        int
	Status    ChapterStatus
	Err       error
	Result    domainagg.CommitChapterResult
	Projected bool
}

type Result struct {
	Course   *types.Course
	Chapters []ChapterOutcome
	// PrunedChapters counts rows removed for chapters past the tree's end.
	PrunedChapters int
}

// FirstError returns the error of the first failed chapter, if any.
func (r *Result) FirstError() error {
	if r == nil {
		return nil
	}
	for _, ch := range r.Chapters {
		if ch.Status == StatusFailed {
			return ch.Err
		}
	}
	return nil
}

type Writer struct {
	agg       domainagg.CourseTreeAggregate
	projector Projector
	metrics   *observability.Metrics
	log       *logger.Logger
}

func NewWriter(agg domainagg.CourseTreeAggregate, projector Projector, metrics *observability.Metrics, baseLog *logger.Logger) *Writer {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Writer{
		agg:       agg,
		projector: projector,
		metrics:   metrics,
		log:       baseLog.With("component", "persist.Writer"),
	}
}

// WriteCourse upserts the course row by slug and returns it with its id set.
func (w *Writer) WriteCourse(ctx context.Context, c *tree.Course, ids IDs) (*types.Course, error) {
	ctx, span := observability.StartSpan(ctx, "persist.course", attribute.String("slug", c.Slug))
	row, err := CourseRow(c, ids)
	if err == nil {
		var res domainagg.UpsertCourseResult
		res, err = w.agg.UpsertCourse(ctx, domainagg.UpsertCourseInput{Course: row})
		row.ID = res.CourseID
	}
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// WriteChapter commits one chapter subtree in its own transaction and
// projects it once committed.
func (w *Writer) WriteChapter(ctx context.Context, course *types.Course, ch *tree.Chapter) (ChapterOutcome, error) {
	out := ChapterOutcome{Ix: ch.Ix, Status: StatusFailed}
	ctx, span := observability.StartSpan(ctx, "persist.chapter", attribute.Int("chapter", ch.Ix))
	start := time.Now()

	cw, err := ChapterRows(ch)
	if err == nil {
		out.Result, err = w.agg.CommitChapter(ctx, domainagg.CommitChapterInput{CourseID: course.ID, Chapter: cw})
	}
	observability.EndSpan(span, err)
	if err != nil {
		out.Err = err
		w.metrics.IncChapter(string(StatusFailed))
		w.log.Error("chapter write failed", "chapter", ch.Ix, "error", err)
		return out, err
	}
	out.Status = StatusCommitted
	w.metrics.IncChapter(string(StatusCommitted))
	w.log.Info("chapter committed",
		"chapter", ch.Ix,
		"learnings", out.Result.Learnings,
		"questions", out.Result.Questions,
		"pruned", out.Result.Pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	out.Projected = w.project(ctx, course, cw)
	return out, nil
}

func (w *Writer) project(ctx context.Context, course *types.Course, cw domainagg.ChapterWrite) bool {
	if w.projector == nil {
		w.metrics.IncProjection("skipped")
		return false
	}
	if err := w.projector.ProjectChapter(ctx, course, cw); err != nil {
		w.metrics.IncProjection("error")
		w.log.Warn("graph projection failed", "chapter", cw.Chapter.Ix, "error", err)
		return false
	}
	w.metrics.IncProjection("ok")
	return true
}

// Write upserts the course, then commits chapters. After the first failed
// chapter no further chapters start. When every chapter of the tree commits,
// stored chapters past the tree's end are pruned.
func (w *Writer) Write(ctx context.Context, c *tree.Course, chapters []*tree.Chapter, ids IDs, opts Options) (*Result, error) {
	courseRow, err := w.WriteCourse(ctx, c, ids)
	if err != nil {
		return nil, err
	}
	res := &Result{Course: courseRow, Chapters: make([]ChapterOutcome, len(chapters))}
	for i, ch := range chapters {
		res.Chapters[i] = ChapterOutcome{Ix: ch.Ix, Status: StatusNotAttempted}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var (
		stopped atomic.Bool
		mu      sync.Mutex
		g       errgroup.Group
	)
	g.SetLimit(workers)
	for i, ch := range chapters {
		if stopped.Load() || ctx.Err() != nil {
			break
		}
		i, ch := i, ch
		g.Go(func() error {
			if stopped.Load() || ctx.Err() != nil {
				return nil
			}
			out, err := w.WriteChapter(ctx, courseRow, ch)
			if err != nil {
				stopped.Store(true)
			}
			mu.Lock()
			res.Chapters[i] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range res.Chapters {
		if out.Status == StatusNotAttempted {
			w.metrics.IncChapter(string(StatusNotAttempted))
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if len(chapters) == len(c.Chapters) && res.FirstError() == nil {
		n, err := w.agg.PruneChapters(ctx, courseRow.ID, len(c.Chapters))
		if err != nil {
			return res, err
		}
		res.PrunedChapters = n
	}
	return res, nil
}

// IsStorageError reports whether err came from the aggregate layer.
func IsStorageError(err error) bool {
	var aggErr *domainagg.Error
	return errors.As(err, &aggErr)
}
