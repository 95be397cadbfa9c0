package course

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/coursetree/internal/data/repos/testutil"
	types "github.com/yungbote/coursetree/internal/domain"
)

func TestQuestionAndAnswerOptionRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	log := testutil.Logger(t)
	questions := NewQuestionRepo(db, log)
	answers := NewAnswerOptionRepo(db, log)

	course := testutil.SeedCourse(t, ctx, tx, uuid.New(), "question-repo")
	chapter := testutil.SeedChapter(t, ctx, tx, course.ID, 1)
	section := testutil.SeedSection(t, ctx, tx, chapter.ID, 1)
	learning := testutil.SeedLearning(t, ctx, tx, section.ID, 1)

	q, err := questions.Upsert(ctx, tx, &types.Question{
		LearningID: learning.ID,
		Ix:         1,
		Type:       types.QuestionMCQ,
		Prompt:     "2+2?",
		Difficulty: types.DifficultyEasy,
		Metadata:   datatypes.JSON([]byte(`{"k":"v"}`)),
	})
	if err != nil {
		t.Fatalf("question Upsert: %v", err)
	}

	if _, err := answers.Upsert(ctx, tx, &types.AnswerOption{QuestionID: q.ID, Ix: 1, Content: "4", IsCorrect: true}); err != nil {
		t.Fatalf("answer Upsert#1: %v", err)
	}
	if _, err := answers.Upsert(ctx, tx, &types.AnswerOption{QuestionID: q.ID, Ix: 2, Content: "5", Feedback: "off by one"}); err != nil {
		t.Fatalf("answer Upsert#2: %v", err)
	}
	// flipping the flag to false must be persisted, not skipped as a zero value
	if _, err := answers.Upsert(ctx, tx, &types.AnswerOption{QuestionID: q.ID, Ix: 1, Content: "4", IsCorrect: false}); err != nil {
		t.Fatalf("answer Upsert#3: %v", err)
	}

	opts := testutil.Find[types.AnswerOption](t, tx.Order("ix"), "question_id = ?", q.ID)
	if len(opts) != 2 {
		t.Fatalf("answer options = %d", len(opts))
	}
	if opts[0].IsCorrect {
		t.Fatalf("is_correct=false was not written")
	}
	if opts[1].Feedback != "off by one" {
		t.Fatalf("feedback = %q", opts[1].Feedback)
	}

	if ids, err := answers.PruneAfter(ctx, tx, q.ID, 1); err != nil || len(ids) != 1 {
		t.Fatalf("answers PruneAfter: err=%v len=%d", err, len(ids))
	}

	testutil.SeedQuestion(t, ctx, tx, learning.ID, 2, types.QuestionTrueFalse)
	rows := testutil.Find[types.Question](t, tx.Order("ix"), "learning_id = ?", learning.ID)
	if len(rows) != 2 || rows[1].Type != types.QuestionTrueFalse {
		t.Fatalf("questions: %v", rows)
	}
	if ids, err := questions.PruneAfter(ctx, tx, learning.ID, 1); err != nil || len(ids) != 1 {
		t.Fatalf("questions PruneAfter: err=%v len=%d", err, len(ids))
	}

	ids, err := questions.DeleteByLearningIDs(ctx, tx, []uuid.UUID{learning.ID})
	if err != nil || len(ids) != 1 {
		t.Fatalf("DeleteByLearningIDs: err=%v len=%d", err, len(ids))
	}
	if ids, err := answers.DeleteByQuestionIDs(ctx, tx, ids); err != nil || len(ids) != 1 {
		t.Fatalf("DeleteByQuestionIDs: err=%v len=%d", err, len(ids))
	}
	if rows := testutil.Find[types.Question](t, tx.Unscoped(), "id = ?", q.ID); len(rows) != 0 {
		t.Fatalf("question left after delete: %v", rows)
	}
}
