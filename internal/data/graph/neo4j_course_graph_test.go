package graph

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/coursetree/internal/domain"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

func committedChapter() (*types.Course, domainagg.ChapterWrite) {
	course := &types.Course{ID: uuid.New(), Slug: "go", Title: "Go", Version: 1}
	cw := domainagg.ChapterWrite{
		Chapter: &types.Chapter{ID: uuid.New(), Ix: 1, Title: "Intro"},
		Sections: []domainagg.SectionWrite{{
			Section: &types.Section{ID: uuid.New(), Ix: 1, Title: "Setup"},
			Learnings: []domainagg.LearningWrite{{
				Learning: &types.Learning{ID: uuid.New(), Ix: 1, Title: "Install"},
				Questions: []domainagg.QuestionWrite{
					{Question: &types.Question{ID: uuid.New(), Ix: 1, Type: types.QuestionMCQ}, Answers: []*types.AnswerOption{{}, {}}},
					{Question: &types.Question{ID: uuid.New(), Ix: 2, Type: types.QuestionTrueFalse}, Answers: []*types.AnswerOption{{}, {}}},
				},
			}},
		}},
	}
	return course, cw
}

func TestBuildChapterGraph(t *testing.T) {
	course, cw := committedChapter()
	g, err := BuildChapterGraph(course, cw, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("BuildChapterGraph: %v", err)
	}
	if len(g.Sections) != 1 || len(g.Learnings) != 1 || len(g.Questions) != 2 {
		t.Fatalf("unexpected shape: %d/%d/%d", len(g.Sections), len(g.Learnings), len(g.Questions))
	}
	if g.Sections[0]["learning_count"] != int64(1) {
		t.Fatalf("learning_count = %v", g.Sections[0]["learning_count"])
	}
	if g.Questions[1]["parent_id"] != cw.Sections[0].Learnings[0].Learning.ID.String() {
		t.Fatalf("question parent mismatch")
	}
	if g.Questions[0]["answer_count"] != int64(2) {
		t.Fatalf("answer_count = %v", g.Questions[0]["answer_count"])
	}
}

func TestBuildChapterGraph_RequiresIDs(t *testing.T) {
	course, cw := committedChapter()
	cw.Chapter.ID = uuid.Nil
	if _, err := BuildChapterGraph(course, cw, time.Now()); err == nil {
		t.Fatalf("expected error for uncommitted chapter")
	}
	if _, err := BuildChapterGraph(nil, cw, time.Now()); err == nil {
		t.Fatalf("expected error for missing course")
	}
}

func TestProjectChapter_NoClientIsNoop(t *testing.T) {
	course, cw := committedChapter()
	g := NewCourseGraph(nil, logger.Nop())
	if err := g.ProjectChapter(context.Background(), course, cw); err != nil {
		t.Fatalf("ProjectChapter: %v", err)
	}
}
