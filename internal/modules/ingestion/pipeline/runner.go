// Package pipeline runs one ingestion: load, assemble, validate and patch,
// then persist the chapters that came out clean.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/coursetree/internal/data/repos"
	"github.com/yungbote/coursetree/internal/modules/ingestion/docs"
	"github.com/yungbote/coursetree/internal/modules/ingestion/patch"
	"github.com/yungbote/coursetree/internal/modules/ingestion/persist"
	"github.com/yungbote/coursetree/internal/modules/ingestion/source"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
	"github.com/yungbote/coursetree/internal/modules/ingestion/validation"
	"github.com/yungbote/coursetree/internal/observability"
	"github.com/yungbote/coursetree/internal/platform/logger"
	"github.com/yungbote/coursetree/internal/platform/runlock"
)

var ErrInvalidRequest = errors.New("invalid request")

type Request struct {
	Location   string
	CreatorID  uuid.UUID
	CategoryID uuid.UUID
	Strict     bool
	DryRun     bool
}

// SourceOpener resolves a location into a document source.
type SourceOpener func(ctx context.Context, location string) (source.Source, error)

type Settings struct {
	MaxPatchRounds int
	Workers        int
	Patch          patch.Options
}

// Deps wires a Runner. Courses, Writer and Locker may be nil for
// validate-only runners; such runners reject non-dry-run requests.
type Deps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	Open    SourceOpener
	Loader  *docs.Loader
	Courses repos.CourseRepo
	Writer  *persist.Writer
	Locker  runlock.Locker
}

type Runner struct {
	deps     Deps
	settings Settings
	log      *logger.Logger
}

func NewRunner(deps Deps, settings Settings) *Runner {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Loader == nil {
		deps.Loader = docs.NewLoader(deps.Log)
	}
	if deps.Locker == nil {
		deps.Locker = runlock.NewLocal()
	}
	if settings.MaxPatchRounds < 1 {
		settings.MaxPatchRounds = 1
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &Runner{deps: deps, settings: settings, log: deps.Log.With("component", "pipeline.Runner")}
}

// Run executes one ingestion. The report is always returned; the error is
// set for load failures, lock contention, a failed course write, and
// cancellation. Chapter storage failures show up in the report only.
func (r *Runner) Run(ctx context.Context, req Request) (rep *Report, err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.run",
		attribute.String("location", req.Location),
		attribute.Bool("dry_run", req.DryRun),
		attribute.Bool("strict", req.Strict),
	)
	rep = &Report{
		Location:  req.Location,
		DryRun:    req.DryRun,
		Strict:    req.Strict,
		StartedAt: time.Now().UTC(),
		TraceID:   observability.TraceID(ctx),
	}
	defer func() {
		rep.FinishedAt = time.Now().UTC()
		if err != nil && rep.Error == "" && rep.LoadError == "" {
			rep.Error = err.Error()
		}
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case !rep.OK:
			result = "incomplete"
		}
		r.deps.Metrics.FinishRun(result, rep.FinishedAt)
		observability.EndSpan(span, err)
		r.log.Info("ingestion finished",
			"location", req.Location,
			"course", rep.Course,
			"result", result,
			"rounds", rep.Rounds,
			"violations", len(rep.Violations),
			"duration_ms", rep.FinishedAt.Sub(rep.StartedAt).Milliseconds(),
		)
	}()

	if !req.DryRun {
		if req.CreatorID == uuid.Nil || req.CategoryID == uuid.Nil {
			return rep, fmt.Errorf("%w: creator and category ids are required", ErrInvalidRequest)
		}
		if r.deps.Writer == nil {
			return rep, fmt.Errorf("%w: runner has no storage configured", ErrInvalidRequest)
		}
	}

	// load
	var set *docs.Set
	err = r.stage(ctx, "load", func(ctx context.Context) error {
		src, err := r.deps.Open(ctx, req.Location)
		if err != nil {
			return err
		}
		defer src.Close()
		set, err = r.deps.Loader.Load(ctx, src)
		return err
	})
	if err != nil {
		rep.LoadError = err.Error()
		return rep, err
	}

	// assemble, validate, patch
	course := tree.Assemble(set)
	var final []validation.Violation
	err = r.stage(ctx, "validate", func(ctx context.Context) error {
		var err error
		course, final, err = r.validateAndPatch(ctx, course, req, rep)
		return err
	})
	if err != nil {
		return rep, err
	}
	rep.Course = course.Slug
	rep.Violations = final
	rep.ViolationCounts = validation.CountByKind(final)
	for _, v := range final {
		r.deps.Metrics.IncViolation(string(v.Kind), string(v.Severity))
	}

	byChapter := validation.ByChapter(final)
	rep.Halted = validation.HasBlocking(byChapter[0], req.Strict)
	var cleared []*tree.Chapter
	for _, ch := range course.Chapters {
		cr := ChapterReport{Ix: ch.Ix, Title: ch.Title, Status: persist.StatusNotAttempted, Violations: byChapter[ch.Ix]}
		if validation.HasBlocking(byChapter[ch.Ix], req.Strict) {
			cr.Status = persist.StatusBlocked
			r.deps.Metrics.IncChapter(string(persist.StatusBlocked))
		} else if !rep.Halted {
			cleared = append(cleared, ch)
		}
		rep.Chapters = append(rep.Chapters, cr)
	}

	if req.DryRun {
		rep.OK = !validation.HasBlocking(final, req.Strict)
		return rep, nil
	}
	if rep.Halted {
		r.log.Warn("course-scope violations halt persistence", "course", course.Slug, "violations", len(byChapter[0]))
		return rep, nil
	}

	// persist
	release, err := r.deps.Locker.Acquire(ctx, runlock.Key(course.Slug))
	if err != nil {
		return rep, fmt.Errorf("lock course %q: %w", course.Slug, err)
	}
	defer func() {
		if rerr := release(context.Background()); rerr != nil {
			r.log.Warn("run lock release failed", "course", course.Slug, "error", rerr)
		}
	}()

	var res *persist.Result
	err = r.stage(ctx, "persist", func(ctx context.Context) error {
		var err error
		res, err = r.deps.Writer.Write(ctx, course, cleared,
			persist.IDs{CreatorID: req.CreatorID, CategoryID: req.CategoryID},
			persist.Options{Workers: r.settings.Workers})
		return err
	})
	if res != nil {
		rep.CourseID = res.Course.ID.String()
		r.merge(rep, res)
	}
	if err != nil {
		return rep, err
	}

	rep.OK = !validation.HasBlocking(final, req.Strict)
	for _, ch := range rep.Chapters {
		if ch.Status != persist.StatusCommitted {
			rep.OK = false
		}
	}
	return rep, nil
}

// validateAndPatch loops validate then fix until the tree is clean, a round
// applies nothing, or the round limit is reached. Violations left without a
// safe fix come back marked RequiresAuthoring.
func (r *Runner) validateAndPatch(ctx context.Context, course *tree.Course, req Request, rep *Report) (*tree.Course, []validation.Violation, error) {
	taken := map[string]bool{}
	checked := map[string]bool{}
	opts := func() (validation.Options, error) {
		slug := course.Slug
		if slug != "" && !checked[slug] && r.deps.Courses != nil && req.CreatorID != uuid.Nil {
			existing, err := r.deps.Courses.GetBySlug(ctx, nil, slug)
			if err != nil {
				return validation.Options{}, fmt.Errorf("check slug %q: %w", slug, err)
			}
			checked[slug] = true
			taken[slug] = existing != nil && existing.CreatorID != req.CreatorID
		}
		return validation.Options{Strict: req.Strict, TakenSlugs: taken}, nil
	}

	vopts, err := opts()
	if err != nil {
		return course, nil, err
	}
	vs := validation.Validate(course, vopts)
	for round := 0; round < r.settings.MaxPatchRounds && len(vs) > 0; round++ {
		if err := ctx.Err(); err != nil {
			return course, vs, err
		}
		res := patch.Fix(course, vs, r.settings.Patch)
		if len(res.Applied) == 0 {
			break
		}
		rep.Rounds++
		rep.Applied = append(rep.Applied, res.Applied...)
		for _, e := range res.Applied {
			r.deps.Metrics.IncPatch(string(e.Op))
		}
		r.log.Debug("patch round applied", "round", rep.Rounds, "edits", len(res.Applied), "remaining", len(res.Remaining))
		course = res.Course
		if vopts, err = opts(); err != nil {
			return course, vs, err
		}
		vs = validation.Validate(course, vopts)
	}

	plan := patch.Propose(course, vs, r.settings.Patch)
	unfixable := make(map[string]bool, len(plan.Remaining))
	for _, v := range plan.Remaining {
		unfixable[violationKey(v)] = true
	}
	for i := range vs {
		vs[i].RequiresAuthoring = unfixable[violationKey(vs[i])]
	}
	return course, vs, nil
}

func violationKey(v validation.Violation) string {
	return string(v.Kind) + "|" + v.Path + "|" + v.Field + "|" + v.Detail
}

func (r *Runner) merge(rep *Report, res *persist.Result) {
	byIx := make(map[int]persist.ChapterOutcome, len(res.Chapters))
	for _, out := range res.Chapters {
		byIx[out.Ix] = out
	}
	for i := range rep.Chapters {
		cr := &rep.Chapters[i]
		out, ok := byIx[cr.Ix]
		if !ok {
			continue
		}
		cr.Status = out.Status
		cr.Projected = out.Projected
		cr.Learnings = out.Result.Learnings
		cr.Questions = out.Result.Questions
		cr.Pruned = out.Result.Pruned
		if out.Err != nil {
			cr.Error = out.Err.Error()
		}
	}
}

func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "pipeline."+name)
	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.deps.Metrics.ObserveStage(name, status, time.Since(start))
	observability.EndSpan(span, err)
	return err
}
