package docs

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/yungbote/coursetree/internal/modules/ingestion/source"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type memSource map[string]string

func (m memSource) Location() string { return "mem://" }
func (m memSource) List(context.Context) ([]string, error) {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
func (m memSource) Read(_ context.Context, name string) ([]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, source.ErrNotExist
	}
	return []byte(v), nil
}
func (m memSource) Close() error { return nil }

const outlineYAML = `
title: Go Basics
slug: go-basics
chapters:
  - ix: 1
    title: Intro
    sections:
      - {ix: 1, title: Setup}
  - ix: 2
    title: Types
`

const metadataJSON = `{"title": "Go Basics", "slug": "go-basics", "tags": ["go"], "version": 2,
 "banner": {"url": "https://cdn.example.com/b.png", "alt": "Banner"}}`

const chapterYAML = `
ix: 1
title: Intro
sections:
  - ix: 1
    title: Setup
    learnings:
      - ix: 1
        title: Installing Go
        min_questions: 2
        questions:
          - ix: 1
            type: mcq
            prompt: Which command?
            metadata: {source: outline}
            answers:
              - {ix: 1, content: go install, correct: true}
              - {ix: 2, content: go fetch, feedback: not a command}
`

func TestLoad_FullSet(t *testing.T) {
	src := memSource{
		"outline.yaml":                   outlineYAML,
		"metadata.json":                  metadataJSON,
		"chapters/10-extra/chapter.yml":  "ix: 10\ntitle: Extra\n",
		"chapters/01-intro/chapter.yaml": chapterYAML,
		"chapters/01-intro/notes.md":     "ignored",
		"chapters/readme.yaml":           "ignored: true",
	}
	set, err := NewLoader(logger.Nop()).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.OutlineFile != "outline.yaml" || set.MetadataFile != "metadata.json" {
		t.Fatalf("files = %q %q", set.OutlineFile, set.MetadataFile)
	}
	if len(set.Outline.Chapters) != 2 || set.Outline.Chapters[0].Sections[0].Title != "Setup" {
		t.Fatalf("outline = %+v", set.Outline)
	}
	if set.Metadata.Version == nil || *set.Metadata.Version != 2 || set.Metadata.Banner == nil {
		t.Fatalf("metadata = %+v", set.Metadata)
	}
	if set.Metadata.EstimatedMinutes != nil {
		t.Fatalf("absent number should stay nil")
	}
	if len(set.Chapters) != 2 {
		t.Fatalf("chapters = %d", len(set.Chapters))
	}
	first := set.Chapters[0]
	if first.FolderNumber != 1 || first.Folder != "01-intro" {
		t.Fatalf("first chapter = %+v", first)
	}
	l := first.Doc.Sections[0].Learnings[0]
	if l.MinQuestions == nil || *l.MinQuestions != 2 || l.MaxQuestions != nil {
		t.Fatalf("bounds = %v %v", l.MinQuestions, l.MaxQuestions)
	}
	q := l.Questions[0]
	if q.Metadata["source"] != "outline" || !q.Answers[0].Correct || q.Answers[1].Feedback != "not a command" {
		t.Fatalf("question = %+v", q)
	}
	if set.Chapters[1].FolderNumber != 10 {
		t.Fatalf("second chapter folder number = %d", set.Chapters[1].FolderNumber)
	}
}

func TestLoad_MissingDocuments(t *testing.T) {
	_, err := NewLoader(logger.Nop()).Load(context.Background(), memSource{"metadata.yaml": "title: x"})
	var missing *MissingDocumentError
	if !errors.As(err, &missing) || missing.Name != "outline.yaml" {
		t.Fatalf("expected missing outline, got %v", err)
	}
	_, err = NewLoader(logger.Nop()).Load(context.Background(), memSource{"outline.yaml": "title: x"})
	if !errors.As(err, &missing) || missing.Name != "metadata.yaml" {
		t.Fatalf("expected missing metadata, got %v", err)
	}
}

func TestLoad_MalformedChapterReportsPosition(t *testing.T) {
	src := memSource{
		"outline.yaml":                 "title: x",
		"metadata.yaml":                "title: x",
		"chapters/03-bad/chapter.yaml": "ix: 3\ntitle: [unclosed\n",
	}
	_, err := NewLoader(logger.Nop()).Load(context.Background(), src)
	var bad *MalformedDocumentError
	if !errors.As(err, &bad) {
		t.Fatalf("expected MalformedDocumentError, got %v", err)
	}
	if bad.File != "chapters/03-bad/chapter.yaml" || bad.Line == 0 {
		t.Fatalf("unexpected position: %+v", bad)
	}
}

func TestDecode_TypeErrorAndShape(t *testing.T) {
	var doc ChapterDoc
	err := Decode("c.yaml", []byte("ix: 1\nsections:\n  - ix: nope\n"), &doc)
	var bad *MalformedDocumentError
	if !errors.As(err, &bad) || bad.Line != 3 {
		t.Fatalf("expected line 3, got %v", err)
	}
	if err := Decode("c.yaml", []byte("- a\n- b\n"), &doc); !errors.As(err, &bad) || bad.Line != 1 || bad.Column != 1 {
		t.Fatalf("expected top-level shape error at 1:1, got %v", err)
	}
	if err := Decode("c.yaml", []byte("  \n"), &doc); !errors.As(err, &bad) {
		t.Fatalf("expected empty document error, got %v", err)
	}
}

func TestFolderNumber(t *testing.T) {
	cases := map[string]int{"01-intro": 1, "12": 12, "intro": 0, "007x": 7}
	for in, want := range cases {
		if got := folderNumber(in); got != want {
			t.Fatalf("folderNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
