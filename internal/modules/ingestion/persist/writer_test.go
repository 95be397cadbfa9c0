package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursetree/internal/data/aggregates"
	"github.com/yungbote/coursetree/internal/data/repos"
	"github.com/yungbote/coursetree/internal/data/repos/testutil"
	types "github.com/yungbote/coursetree/internal/domain"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
	"github.com/yungbote/coursetree/internal/observability"
)

func intPtr(v int) *int { return &v }

func chapter(ix int, prompt string) *tree.Chapter {
	return &tree.Chapter{
		Ix: ix, DocOrder: ix - 1, Title: "Chapter", Summary: "s", File: "chapters/x/chapter.yaml",
		Sections: []*tree.Section{{
			Ix: 1, Title: "Section", Summary: "s",
			Learnings: []*tree.Learning{{
				Ix: 1, Title: "Learning", Body: "body", State: "draft",
				MinQuestions: intPtr(2), MaxQuestions: intPtr(10),
				QuickReplies: []string{"More"},
				Questions: []*tree.Question{
					{Ix: 1, Type: "mcq", Prompt: prompt, Metadata: map[string]any{"source": "test"}, Answers: []*tree.AnswerOption{
						{Ix: 1, Content: "A", IsCorrect: true},
						{Ix: 2, DocOrder: 1, Content: "B", Feedback: "no"},
					}},
					{Ix: 2, DocOrder: 1, Type: "short_text", Prompt: "explain"},
				},
			}},
		}},
	}
}

func course(slug string, chapters ...*tree.Chapter) *tree.Course {
	return &tree.Course{
		Title: "Go Basics", Slug: slug, Tags: []string{"go"},
		Visibility: "private", Status: "draft", Version: intPtr(1),
		Chapters: chapters,
	}
}

func newWriter(t *testing.T, db *gorm.DB, set repos.Set, projector Projector, m *observability.Metrics) *Writer {
	t.Helper()
	agg := aggregates.NewCourseTreeAggregate(aggregates.DepsFromSet(aggregates.BaseDeps{
		DB:    db,
		Log:   testutil.Logger(t),
		Hooks: aggregates.NewObservabilityHooks(m),
	}, set))
	return NewWriter(agg, projector, m, testutil.Logger(t))
}

func ids() IDs { return IDs{CreatorID: uuid.New(), CategoryID: uuid.New()} }

func TestWrite_IdempotentRerun(t *testing.T) {
	db := testutil.FreshDB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	w := newWriter(t, db, set, nil, observability.NewMetrics())
	ctx := context.Background()
	owner := ids()

	c := course("rerun", chapter(1, "first"), chapter(2, "second"))
	var firstCourse uuid.UUID
	var firstAnswers []*types.AnswerOption
	for run := 0; run < 2; run++ {
		res, err := w.Write(ctx, c, c.Chapters, owner, Options{})
		if err != nil {
			t.Fatalf("run %d: Write: %v", run, err)
		}
		for _, ch := range res.Chapters {
			if ch.Status != StatusCommitted {
				t.Fatalf("run %d: chapter %d status %s (%v)", run, ch.Ix, ch.Status, ch.Err)
			}
		}
		if run == 0 {
			firstCourse = res.Course.ID
			if err := db.Order("id").Find(&firstAnswers).Error; err != nil {
				t.Fatalf("load answers: %v", err)
			}
		} else if res.Course.ID != firstCourse {
			t.Fatalf("course id changed: %s -> %s", firstCourse, res.Course.ID)
		}
	}

	want := map[interface{}]int64{
		&types.Course{}: 1, &types.Chapter{}: 2, &types.Section{}: 2,
		&types.Learning{}: 2, &types.Question{}: 4, &types.AnswerOption{}: 4,
	}
	for model, n := range want {
		if got := testutil.CountRows(t, db, model); got != n {
			t.Fatalf("%T rows = %d, want %d", model, got, n)
		}
	}
	var again []*types.AnswerOption
	if err := db.Order("id").Find(&again).Error; err != nil {
		t.Fatalf("load answers: %v", err)
	}
	for i := range again {
		if again[i].ID != firstAnswers[i].ID || again[i].Content != firstAnswers[i].Content || again[i].IsCorrect != firstAnswers[i].IsCorrect {
			t.Fatalf("answer %d changed across runs: %+v vs %+v", i, firstAnswers[i], again[i])
		}
	}
}

func TestWrite_LearningCountAfterPartialPriorWrite(t *testing.T) {
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	w := newWriter(t, db, set, nil, nil)
	ctx := context.Background()
	owner := ids()
	c := course("partial-prior", chapter(1, "q"))

	// a previous run left three learnings and a stale cached count
	seed := testutil.SeedCourse(t, ctx, db, owner.CreatorID, "partial-prior")
	ch := testutil.SeedChapter(t, ctx, db, seed.ID, 1)
	sec := testutil.SeedSection(t, ctx, db, ch.ID, 1)
	for ix := 1; ix <= 3; ix++ {
		testutil.SeedLearning(t, ctx, db, sec.ID, ix)
	}
	if err := db.Model(&types.Section{}).Where("id = ?", sec.ID).Update("learning_count", 9).Error; err != nil {
		t.Fatalf("poison count: %v", err)
	}

	res, err := w.Write(ctx, c, c.Chapters, owner, Options{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if res.Course.ID != seed.ID {
		t.Fatalf("course not reused")
	}
	var got types.Section
	if err := db.First(&got, "id = ?", sec.ID).Error; err != nil {
		t.Fatalf("load section: %v", err)
	}
	if got.LearningCount != 1 {
		t.Fatalf("learning_count = %d, want 1", got.LearningCount)
	}
	if n := testutil.CountRows(t, db, &types.Learning{}); n != 1 {
		t.Fatalf("learnings = %d, want 1", n)
	}
}

type promptFailingQuestions struct {
	repos.QuestionRepo
	prompt string
}

func (r promptFailingQuestions) Upsert(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error) {
	if row.Prompt == r.prompt {
		return nil, errors.New("disk full")
	}
	return r.QuestionRepo.Upsert(ctx, tx, row)
}

func TestWrite_PartialFailureIsolation(t *testing.T) {
	db := testutil.FreshDB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	set.Questions = promptFailingQuestions{QuestionRepo: set.Questions, prompt: "boom"}
	m := observability.NewMetrics()
	w := newWriter(t, db, set, nil, m)
	ctx := context.Background()

	c := course("isolation", chapter(1, "ok"), chapter(2, "boom"), chapter(3, "ok"))
	res, err := w.Write(ctx, c, c.Chapters, ids(), Options{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []ChapterStatus{StatusCommitted, StatusFailed, StatusNotAttempted}
	for i, st := range want {
		if res.Chapters[i].Status != st {
			t.Fatalf("chapter %d: status %s, want %s", i+1, res.Chapters[i].Status, st)
		}
	}
	var aggErr *domainagg.Error
	if !errors.As(res.FirstError(), &aggErr) || aggErr.Scope != "chapter:2" {
		t.Fatalf("first error: %v", res.FirstError())
	}
	if !IsStorageError(res.FirstError()) {
		t.Fatalf("expected a storage error")
	}

	var chapters []types.Chapter
	if err := db.Find(&chapters).Error; err != nil {
		t.Fatalf("load chapters: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Ix != 1 {
		t.Fatalf("only chapter 1 should be stored: %+v", chapters)
	}
	if n := testutil.CountRows(t, db, &types.Section{}); n != 1 {
		t.Fatalf("sections = %d", n)
	}
}

type stubProjector struct {
	mu    sync.Mutex
	err   error
	calls []int
}

func (p *stubProjector) ProjectChapter(_ context.Context, course *types.Course, cw domainagg.ChapterWrite) error {
	if course.ID == uuid.Nil || cw.Chapter.ID == uuid.Nil {
		return errors.New("projection before ids were assigned")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, cw.Chapter.Ix)
	return p.err
}

func TestWrite_ProjectionFailureDoesNotRollBack(t *testing.T) {
	db := testutil.FreshDB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	proj := &stubProjector{err: errors.New("neo4j down")}
	w := newWriter(t, db, set, proj, nil)

	c := course("projection", chapter(1, "q"), chapter(2, "q"))
	res, err := w.Write(context.Background(), c, c.Chapters, ids(), Options{Workers: 2})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(proj.calls) != 2 {
		t.Fatalf("projector calls: %v", proj.calls)
	}
	for _, ch := range res.Chapters {
		if ch.Status != StatusCommitted || ch.Projected {
			t.Fatalf("chapter %d: %+v", ch.Ix, ch)
		}
	}
	if n := testutil.CountRows(t, db, &types.Chapter{}); n != 2 {
		t.Fatalf("chapters = %d", n)
	}
}

func TestWrite_PrunesChaptersPastTreeEnd(t *testing.T) {
	db := testutil.FreshDB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	w := newWriter(t, db, set, nil, nil)
	ctx := context.Background()
	owner := ids()

	long := course("shrink", chapter(1, "q"), chapter(2, "q"), chapter(3, "q"))
	if _, err := w.Write(ctx, long, long.Chapters, owner, Options{}); err != nil {
		t.Fatalf("Write long: %v", err)
	}
	short := course("shrink", chapter(1, "q"))
	res, err := w.Write(ctx, short, short.Chapters, owner, Options{})
	if err != nil {
		t.Fatalf("Write short: %v", err)
	}
	if res.PrunedChapters == 0 {
		t.Fatalf("expected pruned rows")
	}
	if n := testutil.CountRows(t, db, &types.Chapter{}); n != 1 {
		t.Fatalf("chapters = %d", n)
	}
	if n := testutil.CountRows(t, db, &types.AnswerOption{}); n != 2 {
		t.Fatalf("answer options = %d", n)
	}
}

func TestWrite_CanceledContext(t *testing.T) {
	db := testutil.FreshDB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	w := newWriter(t, db, set, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := course("canceled", chapter(1, "q"))
	if _, err := w.Write(ctx, c, c.Chapters, ids(), Options{}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if n := testutil.CountRows(t, db, &types.Chapter{}); n != 0 {
		t.Fatalf("chapters = %d", n)
	}
}

func TestRows_Defaults(t *testing.T) {
	c := &tree.Course{Title: "T", Slug: "t"}
	row, err := CourseRow(c, ids())
	if err != nil {
		t.Fatalf("CourseRow: %v", err)
	}
	if row.Visibility != "private" || row.Status != "draft" || row.Version != 1 || string(row.Tags) != "[]" {
		t.Fatalf("defaults: %+v", row)
	}
	cw, err := ChapterRows(&tree.Chapter{Ix: 1, Sections: []*tree.Section{{Ix: 1, Learnings: []*tree.Learning{{
		Ix: 1, Questions: []*tree.Question{{Ix: 1, Type: "short_text"}},
	}}}}})
	if err != nil {
		t.Fatalf("ChapterRows: %v", err)
	}
	l := cw.Sections[0].Learnings[0].Learning
	if l.MinQuestions != 2 || l.MaxQuestions != 10 || l.State != "draft" || string(l.QuickReplies) != "[]" {
		t.Fatalf("learning defaults: %+v", l)
	}
	if md := string(cw.Sections[0].Learnings[0].Questions[0].Question.Metadata); md != "{}" {
		t.Fatalf("metadata: %s", md)
	}
}
