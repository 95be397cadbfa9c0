package aggregates

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/coursetree/internal/domain"
)

var CourseTreeAggregateContract = Contract{
	Name:             "Course.TreeAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Unit:             "chapter",
	Notes:            "Course row, then one transaction per chapter subtree; stale children pruned in the same transaction.",
}

// CourseTreeAggregate persists a validated course tree.
//
// Write failures return *Error with Scope set to "course" or "chapter:<ix>".
type CourseTreeAggregate interface {
	Aggregate

	// UpsertCourse writes the course row keyed by slug.
	UpsertCourse(ctx context.Context, in UpsertCourseInput) (UpsertCourseResult, error)

	// CommitChapter writes one chapter with all descendants atomically, prunes
	// descendants past the new counts and refreshes section learning counts.
	CommitChapter(ctx context.Context, in CommitChapterInput) (CommitChapterResult, error)

	// PruneChapters removes chapters of the course positioned past keep.
	PruneChapters(ctx context.Context, courseID uuid.UUID, keep int) (int, error)
}

type UpsertCourseInput struct {
	Course *types.Course
}

type UpsertCourseResult struct {
	CourseID uuid.UUID
}

type CommitChapterInput struct {
	CourseID uuid.UUID
	Chapter  ChapterWrite
}

// ChapterWrite and its children carry rows in target order; Ix is already final.
type ChapterWrite struct {
	Chapter  *types.Chapter
	Sections []SectionWrite
}

type SectionWrite struct {
	Section   *types.Section
	Learnings []LearningWrite
}

type LearningWrite struct {
	Learning  *types.Learning
	Questions []QuestionWrite
}

type QuestionWrite struct {
	Question *types.Question
	Answers  []*types.AnswerOption
}

type CommitChapterResult struct {
	ChapterID     uuid.UUID
	ChapterIx     int
	Sections      int
	Learnings     int
	Questions     int
	AnswerOptions int
	// LearningCounts maps section ix to its refreshed learning_count.
	LearningCounts map[int]int
	Pruned         int
}
