package tree

import (
	"testing"

	"github.com/yungbote/coursetree/internal/modules/ingestion/docs"
)

func intPtr(v int) *int { return &v }

func sampleSet() *docs.Set {
	return &docs.Set{
		Outline: docs.OutlineDoc{
			Title: "Outline Title",
			Slug:  "outline-slug",
			Chapters: []docs.OutlineChapter{
				{Ix: 1, Title: "Intro", Summary: "outline intro", Sections: []docs.OutlineSection{
					{Ix: 1, Title: "Setup", Summary: "setup"},
					{Ix: 2, Title: "Tooling", Summary: "tooling"},
				}},
				{Ix: 2, Title: "Types", Summary: "types", Sections: []docs.OutlineSection{
					{Ix: 1, Title: "Ints"},
				}},
			},
		},
		Metadata: docs.MetadataDoc{
			Title:   "Go Basics",
			Slug:    "go-basics",
			Tags:    []string{"go"},
			Version: intPtr(2),
			Banner:  &docs.ImageRef{URL: " https://cdn.example.com/b.png ", Alt: "Banner"},
		},
		Chapters: []docs.ChapterFile{
			{File: "chapters/01-intro/chapter.yaml", Folder: "01-intro", FolderNumber: 1, Doc: docs.ChapterDoc{
				Title: "Introduction",
				Sections: []docs.SectionDoc{{
					Ix:    1,
					Title: "",
					Learnings: []docs.LearningDoc{{
						Ix:    1,
						Title: "Installing Go",
						Questions: []docs.QuestionDoc{{
							Ix: 1, Type: " MCQ ", Prompt: "Pick one",
							Answers: []docs.AnswerDoc{{Ix: 1, Content: "A", Correct: true}, {Ix: 2, Content: "B"}},
						}},
					}},
				}},
			}},
			{File: "chapters/01-again/chapter.yaml", Folder: "01-again", FolderNumber: 1},
			{File: "chapters/07-extra/chapter.yaml", Folder: "07-extra", FolderNumber: 7},
		},
	}
}

func TestAssemble_Precedence(t *testing.T) {
	c := Assemble(sampleSet())
	if c.Title != "Go Basics" || c.Slug != "go-basics" {
		t.Fatalf("metadata should win: %q %q", c.Title, c.Slug)
	}
	if c.BannerURL != "https://cdn.example.com/b.png" {
		t.Fatalf("banner url not trimmed: %q", c.BannerURL)
	}
	if c.Version == nil || *c.Version != 2 {
		t.Fatalf("version: %v", c.Version)
	}
	if len(c.Chapters) != 2 {
		t.Fatalf("chapters: %d", len(c.Chapters))
	}

	ch := c.Chapters[0]
	if ch.Ix != 1 {
		t.Fatalf("chapter ix should fall back to folder number, got %d", ch.Ix)
	}
	if ch.Title != "Introduction" || ch.Summary != "outline intro" {
		t.Fatalf("chapter fields: %q %q", ch.Title, ch.Summary)
	}
	if ch.Incomplete || ch.File == "" {
		t.Fatalf("documented chapter marked incomplete")
	}
	if len(ch.Sections) != 2 {
		t.Fatalf("sections: %d", len(ch.Sections))
	}
	if s := ch.Sections[0]; s.Title != "Setup" || s.Stub || len(s.Learnings) != 1 {
		t.Fatalf("detailed section: %+v", s)
	}
	if s := ch.Sections[1]; !s.Stub || s.Ix != 2 || s.Title != "Tooling" {
		t.Fatalf("outline-only section should be a stub: %+v", s)
	}
	q := ch.Sections[0].Learnings[0].Questions[0]
	if q.Type != "mcq" || len(q.Answers) != 2 || !q.Answers[0].IsCorrect {
		t.Fatalf("question: %+v", q)
	}

	stub := c.Chapters[1]
	if !stub.Incomplete || stub.Ix != 2 || len(stub.Sections) != 1 || !stub.Sections[0].Stub {
		t.Fatalf("outline-only chapter: %+v", stub)
	}
}

func TestAssemble_Dangling(t *testing.T) {
	c := Assemble(sampleSet())
	if len(c.Dangling) != 2 {
		t.Fatalf("expected 2 dangling, got %+v", c.Dangling)
	}
	if c.Dangling[0].Folder != "01-again" || c.Dangling[1].FolderNumber != 7 {
		t.Fatalf("dangling: %+v", c.Dangling)
	}
	if !c.Dangling[0].Duplicate || c.Dangling[0].DocOrder != 0 || c.Dangling[1].Duplicate {
		t.Fatalf("duplicate marking: %+v", c.Dangling)
	}
}

func TestAssemble_MissingIxAndPositionMatch(t *testing.T) {
	set := &docs.Set{
		Outline: docs.OutlineDoc{Chapters: []docs.OutlineChapter{
			{Title: "A", Sections: []docs.OutlineSection{{Title: "A1"}, {Title: "A2"}}},
		}},
		Chapters: []docs.ChapterFile{{
			File: "chapters/1/chapter.yaml", Folder: "1", FolderNumber: 1,
			Doc: docs.ChapterDoc{Sections: []docs.SectionDoc{{Summary: "detail"}, {Summary: "detail 2"}}},
		}},
	}
	c := Assemble(set)
	ch := c.Chapters[0]
	if ch.Ix != 1 {
		t.Fatalf("chapter ix: %d", ch.Ix)
	}
	if len(ch.Sections) != 2 {
		t.Fatalf("sections: %d", len(ch.Sections))
	}
	for i, s := range ch.Sections {
		if s.Ix != 0 {
			t.Fatalf("section %d should keep missing ix as 0, got %d", i, s.Ix)
		}
		if s.Stub {
			t.Fatalf("section %d matched by position should not be a stub", i)
		}
	}
	if ch.Sections[1].Title != "A2" {
		t.Fatalf("position match title: %q", ch.Sections[1].Title)
	}
}

func TestAssemble_Nil(t *testing.T) {
	if c := Assemble(nil); c == nil || len(c.Chapters) != 0 {
		t.Fatalf("nil set: %+v", c)
	}
}

func TestClone_IsDeep(t *testing.T) {
	c := Assemble(sampleSet())
	cp := c.Clone()
	cp.Chapters[0].Sections[0].Learnings[0].Questions[0].Answers[0].Content = "changed"
	cp.Chapters[0].Title = "changed"
	*cp.Version = 9
	if c.Chapters[0].Sections[0].Learnings[0].Questions[0].Answers[0].Content != "A" {
		t.Fatalf("clone shares answers")
	}
	if c.Chapters[0].Title != "Introduction" || *c.Version != 2 {
		t.Fatalf("clone shares chapter or version")
	}
}
