package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetree/internal/domain"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, slug string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:         uuid.New(),
		CreatorID:  creatorID,
		CategoryID: uuid.New(),
		Title:      "course",
		Slug:       slug,
		Tags:       datatypes.JSON([]byte("[]")),
		Visibility: types.VisibilityPrivate,
		Status:     types.StatusDraft,
		Version:    1,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedChapter(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, ix int) *types.Chapter {
	tb.Helper()
	c := &types.Chapter{
		ID:       uuid.New(),
		CourseID: courseID,
		Ix:       ix,
		Title:    "chapter",
		Summary:  "summary",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chapter: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, chapterID uuid.UUID, ix int) *types.Section {
	tb.Helper()
	s := &types.Section{
		ID:        uuid.New(),
		ChapterID: chapterID,
		Ix:        ix,
		Title:     "section",
		Summary:   "summary",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedLearning(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, ix int) *types.Learning {
	tb.Helper()
	l := &types.Learning{
		ID:           uuid.New(),
		SectionID:    sectionID,
		Ix:           ix,
		Title:        "learning",
		Body:         "body",
		MinQuestions: types.DefaultMinQuestions,
		MaxQuestions: types.DefaultMaxQuestions,
		QuickReplies: datatypes.JSON([]byte("[]")),
		State:        types.LearningStateDraft,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed learning: %v", err)
	}
	return l
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, learningID uuid.UUID, ix int, qType string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:         uuid.New(),
		LearningID: learningID,
		Ix:         ix,
		Type:       qType,
		Prompt:     "prompt",
		Metadata:   datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedAnswerOption(tb testing.TB, ctx context.Context, tx *gorm.DB, questionID uuid.UUID, ix int, correct bool) *types.AnswerOption {
	tb.Helper()
	a := &types.AnswerOption{
		ID:         uuid.New(),
		QuestionID: questionID,
		Ix:         ix,
		Content:    "option",
		IsCorrect:  correct,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer option: %v", err)
	}
	return a
}

// CountRows counts live rows of model.
func CountRows(tb testing.TB, db *gorm.DB, model interface{}) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count rows: %v", err)
	}
	return n
}

// Find loads every T matching where, in the order db already carries
// (pass db.Order("ix") for tree rows).
func Find[T any](tb testing.TB, db *gorm.DB, where string, args ...interface{}) []*T {
	tb.Helper()
	var rows []*T
	if err := db.Where(where, args...).Find(&rows).Error; err != nil {
		tb.Fatalf("find rows: %v", err)
	}
	return rows
}
