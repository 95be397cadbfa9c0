package docs

// Raw document shapes. Integers absent from a document decode as 0 (ix) or
// nil (optional numbers), which later stages treat as missing.

type OutlineDoc struct {
	Title    string           `yaml:"title"`
	Slug     string           `yaml:"slug"`
	Summary  string           `yaml:"summary"`
	Language string           `yaml:"language"`
	Chapters []OutlineChapter `yaml:"chapters"`
}

type OutlineChapter struct {
	Ix       int              `yaml:"ix"`
	Title    string           `yaml:"title"`
	Summary  string           `yaml:"summary"`
	Sections []OutlineSection `yaml:"sections"`
}

type OutlineSection struct {
	Ix      int    `yaml:"ix"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

type MetadataDoc struct {
	Title            string    `yaml:"title"`
	Slug             string    `yaml:"slug"`
	Summary          string    `yaml:"summary"`
	Language         string    `yaml:"language"`
	Tags             []string  `yaml:"tags"`
	EstimatedMinutes *int      `yaml:"estimated_minutes"`
	Visibility       string    `yaml:"visibility"`
	Status           string    `yaml:"status"`
	Version          *int      `yaml:"version"`
	Banner           *ImageRef `yaml:"banner"`
	Icon             *ImageRef `yaml:"icon"`
}

type ImageRef struct {
	URL string `yaml:"url"`
	Alt string `yaml:"alt"`
}

type ChapterDoc struct {
	Ix       int          `yaml:"ix"`
	Title    string       `yaml:"title"`
	Summary  string       `yaml:"summary"`
	Sections []SectionDoc `yaml:"sections"`
}

type SectionDoc struct {
	Ix        int           `yaml:"ix"`
	Title     string        `yaml:"title"`
	Summary   string        `yaml:"summary"`
	Learnings []LearningDoc `yaml:"learnings"`
}

type LearningDoc struct {
	Ix           int           `yaml:"ix"`
	Title        string        `yaml:"title"`
	Body         string        `yaml:"body"`
	MinQuestions *int          `yaml:"min_questions"`
	MaxQuestions *int          `yaml:"max_questions"`
	QuickReplies []string      `yaml:"quick_replies"`
	State        string        `yaml:"state"`
	Questions    []QuestionDoc `yaml:"questions"`
}

type QuestionDoc struct {
	Ix         int            `yaml:"ix"`
	Type       string         `yaml:"type"`
	Prompt     string         `yaml:"prompt"`
	Difficulty string         `yaml:"difficulty"`
	Rationale  string         `yaml:"rationale"`
	Metadata   map[string]any `yaml:"metadata"`
	Answers    []AnswerDoc    `yaml:"answers"`
}

type AnswerDoc struct {
	Ix       int    `yaml:"ix"`
	Content  string `yaml:"content"`
	Correct  bool   `yaml:"correct"`
	Feedback string `yaml:"feedback"`
}

// ChapterFile is one chapters/<folder>/chapter.* document.
type ChapterFile struct {
	File         string
	Folder       string
	FolderNumber int
	Doc          ChapterDoc
}

// Set is a loaded, parsed document set. No cross-document checks are done.
type Set struct {
	Location     string
	OutlineFile  string
	Outline      OutlineDoc
	MetadataFile string
	Metadata     MetadataDoc
	Chapters     []ChapterFile
}
