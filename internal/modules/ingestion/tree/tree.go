// Package tree holds the in-memory course tree assembled from a document set.
//
// Every node keeps DocOrder, its 0-based position in the source list it came
// from, so renumbering can break ties deterministically. Ix 0 means the
// source gave no index.
package tree

type Course struct {
	Title            string
	Slug             string
	Summary          string
	Language         string
	Tags             []string
	EstimatedMinutes *int
	BannerURL        string
	BannerAlt        string
	IconURL          string
	IconAlt          string
	Visibility       string
	Status           string
	Version          *int

	Chapters []*Chapter
	Dangling []DanglingChapter
}

type Chapter struct {
	Ix       int
	DocOrder int
	Title    string
	Summary  string

	// File is the chapter document path; empty for outline-only stubs.
	File       string
	Incomplete bool
	Sections   []*Section
}

type Section struct {
	Ix       int
	DocOrder int
	Title    string
	Summary  string

	// Stub marks an outline section the chapter document did not detail.
	Stub      bool
	Learnings []*Learning
}

type Learning struct {
	Ix           int
	DocOrder     int
	Title        string
	Body         string
	MinQuestions *int
	MaxQuestions *int
	QuickReplies []string
	State        string
	Questions    []*Question
}

type Question struct {
	Ix         int
	DocOrder   int
	Type       string
	Prompt     string
	Difficulty string
	Rationale  string
	Metadata   map[string]any
	Answers    []*AnswerOption
}

type AnswerOption struct {
	Ix        int
	DocOrder  int
	Content   string
	IsCorrect bool
	Feedback  string
}

// DanglingChapter is a chapter document no outline chapter claims. When
// Duplicate is set, DocOrder is the outline chapter that kept the first
// document with the same folder number.
type DanglingChapter struct {
	File         string
	Folder       string
	FolderNumber int
	Reason       string
	Duplicate    bool
	DocOrder     int
}

func (c *Course) Chapter(ix int) *Chapter {
	if c == nil {
		return nil
	}
	for _, ch := range c.Chapters {
		if ch.Ix == ix {
			return ch
		}
	}
	return nil
}
