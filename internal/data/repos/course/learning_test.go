package course

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/coursetree/internal/data/repos/testutil"
	types "github.com/yungbote/coursetree/internal/domain"
)

func TestLearningRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewLearningRepo(db, testutil.Logger(t))
	course := testutil.SeedCourse(t, ctx, tx, uuid.New(), "learning-repo")
	chapter := testutil.SeedChapter(t, ctx, tx, course.ID, 1)
	section := testutil.SeedSection(t, ctx, tx, chapter.ID, 1)

	row := &types.Learning{
		SectionID:    section.ID,
		Ix:           1,
		Title:        "l1",
		Body:         "body",
		MinQuestions: 2,
		MaxQuestions: 4,
		QuickReplies: datatypes.JSON([]byte(`["more"]`)),
		State:        types.LearningStateDraft,
	}
	first, err := repo.Upsert(ctx, tx, row)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, tx, &types.Learning{
		SectionID:    section.ID,
		Ix:           1,
		Title:        "l1",
		Body:         "new body",
		MinQuestions: 3,
		MaxQuestions: 5,
		State:        types.LearningStatePublished,
	})
	if err != nil {
		t.Fatalf("Upsert#2: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("duplicate learning created")
	}

	rows := testutil.Find[types.Learning](t, tx, "section_id = ?", section.ID)
	if len(rows) != 1 {
		t.Fatalf("learnings = %d", len(rows))
	}
	got := rows[0]
	if got.Body != "new body" || got.MinQuestions != 3 || got.MaxQuestions != 5 || got.State != types.LearningStatePublished {
		t.Fatalf("fields not updated: %+v", got)
	}

	testutil.SeedLearning(t, ctx, tx, section.ID, 2)
	if ids, err := repo.PruneAfter(ctx, tx, section.ID, 1); err != nil || len(ids) != 1 {
		t.Fatalf("PruneAfter: err=%v len=%d", err, len(ids))
	}
	if ids, err := repo.DeleteBySectionIDs(ctx, tx, []uuid.UUID{section.ID}); err != nil || len(ids) != 1 {
		t.Fatalf("DeleteBySectionIDs: err=%v len=%d", err, len(ids))
	}
	if rows := testutil.Find[types.Learning](t, tx.Unscoped(), "id = ?", first.ID); len(rows) != 0 {
		t.Fatalf("learning left after delete: %v", rows)
	}
}
