package aggregates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursetree/internal/data/repos"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/platform/dbctx"
)

type CourseTreeAggregateDeps struct {
	Base BaseDeps

	Courses       repos.CourseRepo
	Chapters      repos.ChapterRepo
	Sections      repos.SectionRepo
	Learnings     repos.LearningRepo
	Questions     repos.QuestionRepo
	AnswerOptions repos.AnswerOptionRepo
}

// DepsFromSet fills the repo fields from a repo set.
func DepsFromSet(base BaseDeps, set repos.Set) CourseTreeAggregateDeps {
	return CourseTreeAggregateDeps{
		Base:          base,
		Courses:       set.Courses,
		Chapters:      set.Chapters,
		Sections:      set.Sections,
		Learnings:     set.Learnings,
		Questions:     set.Questions,
		AnswerOptions: set.AnswerOptions,
	}
}

type courseTreeAggregate struct {
	deps CourseTreeAggregateDeps
}

func NewCourseTreeAggregate(deps CourseTreeAggregateDeps) domainagg.CourseTreeAggregate {
	deps.Base = deps.Base.withDefaults()
	return &courseTreeAggregate{deps: deps}
}

func (a *courseTreeAggregate) Contract() domainagg.Contract {
	return domainagg.CourseTreeAggregateContract
}

func (a *courseTreeAggregate) configured() bool {
	d := a.deps
	return d.Courses != nil && d.Chapters != nil && d.Sections != nil &&
		d.Learnings != nil && d.Questions != nil && d.AnswerOptions != nil
}

func (a *courseTreeAggregate) UpsertCourse(ctx context.Context, in domainagg.UpsertCourseInput) (domainagg.UpsertCourseResult, error) {
	const op = "Course.Tree.UpsertCourse"
	var out domainagg.UpsertCourseResult
	if in.Course == nil {
		return out, domainagg.WithScope(domainagg.NewError(domainagg.CodeValidation, op, "missing course", nil), "course")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course tree repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, "course", func(dbc dbctx.Context) (rowDelta, error) {
		row, err := a.deps.Courses.Upsert(dbc.Ctx, dbc.Tx, in.Course)
		if err != nil {
			return rowDelta{}, err
		}
		out.CourseID = row.ID
		return rowDelta{Written: 1}, nil
	})
	if err != nil {
		return out, err
	}
	a.deps.Base.Log.Debug("course written", "course_id", out.CourseID, "slug", in.Course.Slug)
	return out, nil
}

func (a *courseTreeAggregate) CommitChapter(ctx context.Context, in domainagg.CommitChapterInput) (domainagg.CommitChapterResult, error) {
	const op = "Course.Tree.CommitChapter"
	var out domainagg.CommitChapterResult
	scope := "chapter"
	if in.Chapter.Chapter != nil {
		scope = a.Contract().RollbackScope(in.Chapter.Chapter.Ix)
	}
	if in.CourseID == uuid.Nil {
		return out, domainagg.WithScope(domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil), scope)
	}
	if in.Chapter.Chapter == nil {
		return out, domainagg.WithScope(domainagg.NewError(domainagg.CodeValidation, op, "missing chapter", nil), scope)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course tree repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, scope, func(dbc dbctx.Context) (rowDelta, error) {
		res, err := a.writeChapter(dbc.Ctx, dbc.Tx, in.CourseID, in.Chapter)
		if err != nil {
			return rowDelta{}, err
		}
		out = res
		return rowDelta{
			Written: 1 + res.Sections + res.Learnings + res.Questions + res.AnswerOptions,
			Pruned:  res.Pruned,
		}, nil
	})
	if err != nil {
		return domainagg.CommitChapterResult{}, err
	}
	a.deps.Base.Log.Debug("chapter committed",
		"course_id", in.CourseID,
		"chapter", out.ChapterIx,
		"sections", out.Sections,
		"learnings", out.Learnings,
		"questions", out.Questions,
		"pruned", out.Pruned,
	)
	return out, nil
}

func (a *courseTreeAggregate) PruneChapters(ctx context.Context, courseID uuid.UUID, keep int) (int, error) {
	const op = "Course.Tree.PruneChapters"
	if courseID == uuid.Nil {
		return 0, domainagg.WithScope(domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil), "course")
	}
	if !a.configured() {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "course tree repos not configured", nil)
	}
	pruned := 0
	err := executeWrite(ctx, a.deps.Base, op, "course", func(dbc dbctx.Context) (rowDelta, error) {
		ids, err := a.deps.Chapters.PruneAfter(dbc.Ctx, dbc.Tx, courseID, keep)
		if err != nil {
			return rowDelta{}, err
		}
		n, err := a.cascadeChapters(dbc.Ctx, dbc.Tx, ids)
		if err != nil {
			return rowDelta{}, err
		}
		pruned = len(ids) + n
		return rowDelta{Pruned: pruned}, nil
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}

// writeChapter upserts parent before child and prunes each level once its
// children are written, so the stored subtree equals in.
func (a *courseTreeAggregate) writeChapter(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, in domainagg.ChapterWrite) (domainagg.CommitChapterResult, error) {
	out := domainagg.CommitChapterResult{LearningCounts: map[int]int{}}

	in.Chapter.CourseID = courseID
	chapter, err := a.deps.Chapters.Upsert(ctx, tx, in.Chapter)
	if err != nil {
		return out, err
	}
	out.ChapterID = chapter.ID
	out.ChapterIx = chapter.Ix

	for _, sw := range in.Sections {
		sw.Section.ChapterID = chapter.ID
		section, err := a.deps.Sections.Upsert(ctx, tx, sw.Section)
		if err != nil {
			return out, err
		}
		out.Sections++

		for _, lw := range sw.Learnings {
			lw.Learning.SectionID = section.ID
			learning, err := a.deps.Learnings.Upsert(ctx, tx, lw.Learning)
			if err != nil {
				return out, err
			}
			out.Learnings++

			for _, qw := range lw.Questions {
				qw.Question.LearningID = learning.ID
				question, err := a.deps.Questions.Upsert(ctx, tx, qw.Question)
				if err != nil {
					return out, err
				}
				out.Questions++

				for _, ans := range qw.Answers {
					ans.QuestionID = question.ID
					if _, err := a.deps.AnswerOptions.Upsert(ctx, tx, ans); err != nil {
						return out, err
					}
					out.AnswerOptions++
				}
				ids, err := a.deps.AnswerOptions.PruneAfter(ctx, tx, question.ID, len(qw.Answers))
				if err != nil {
					return out, err
				}
				out.Pruned += len(ids)
			}
			ids, err := a.deps.Questions.PruneAfter(ctx, tx, learning.ID, len(lw.Questions))
			if err != nil {
				return out, err
			}
			n, err := a.cascadeQuestions(ctx, tx, ids)
			if err != nil {
				return out, err
			}
			out.Pruned += len(ids) + n
		}
		ids, err := a.deps.Learnings.PruneAfter(ctx, tx, section.ID, len(sw.Learnings))
		if err != nil {
			return out, err
		}
		n, err := a.cascadeLearnings(ctx, tx, ids)
		if err != nil {
			return out, err
		}
		out.Pruned += len(ids) + n

		count, err := a.deps.Sections.RefreshLearningCount(ctx, tx, section.ID)
		if err != nil {
			return out, err
		}
		out.LearningCounts[section.Ix] = count
	}

	ids, err := a.deps.Sections.PruneAfter(ctx, tx, chapter.ID, len(in.Sections))
	if err != nil {
		return out, err
	}
	n, err := a.cascadeSections(ctx, tx, ids)
	if err != nil {
		return out, err
	}
	out.Pruned += len(ids) + n
	return out, nil
}

func (a *courseTreeAggregate) cascadeChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uuid.UUID) (int, error) {
	if len(chapterIDs) == 0 {
		return 0, nil
	}
	ids, err := a.deps.Sections.DeleteByChapterIDs(ctx, tx, chapterIDs)
	if err != nil {
		return 0, err
	}
	n, err := a.cascadeSections(ctx, tx, ids)
	return len(ids) + n, err
}

func (a *courseTreeAggregate) cascadeSections(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) (int, error) {
	if len(sectionIDs) == 0 {
		return 0, nil
	}
	ids, err := a.deps.Learnings.DeleteBySectionIDs(ctx, tx, sectionIDs)
	if err != nil {
		return 0, err
	}
	n, err := a.cascadeLearnings(ctx, tx, ids)
	return len(ids) + n, err
}

func (a *courseTreeAggregate) cascadeLearnings(ctx context.Context, tx *gorm.DB, learningIDs []uuid.UUID) (int, error) {
	if len(learningIDs) == 0 {
		return 0, nil
	}
	ids, err := a.deps.Questions.DeleteByLearningIDs(ctx, tx, learningIDs)
	if err != nil {
		return 0, err
	}
	n, err := a.cascadeQuestions(ctx, tx, ids)
	return len(ids) + n, err
}

func (a *courseTreeAggregate) cascadeQuestions(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) (int, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	ids, err := a.deps.AnswerOptions.DeleteByQuestionIDs(ctx, tx, questionIDs)
	return len(ids), err
}
