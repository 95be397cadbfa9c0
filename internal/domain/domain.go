package domain

import (
	"github.com/yungbote/coursetree/internal/domain/course"
)

type Course = course.Course
type Chapter = course.Chapter
type Section = course.Section
type Learning = course.Learning
type Question = course.Question
type AnswerOption = course.AnswerOption

const (
	VisibilityPrivate  = course.VisibilityPrivate
	VisibilityUnlisted = course.VisibilityUnlisted
	VisibilityPublic   = course.VisibilityPublic

	StatusDraft     = course.StatusDraft
	StatusPublished = course.StatusPublished
	StatusArchived  = course.StatusArchived

	LearningStateDraft     = course.LearningStateDraft
	LearningStatePublished = course.LearningStatePublished

	DefaultMinQuestions = course.DefaultMinQuestions
	DefaultMaxQuestions = course.DefaultMaxQuestions

	QuestionMCQ       = course.QuestionMCQ
	QuestionMulti     = course.QuestionMulti
	QuestionShortText = course.QuestionShortText
	QuestionLongText  = course.QuestionLongText
	QuestionTrueFalse = course.QuestionTrueFalse
	QuestionOrdering  = course.QuestionOrdering
	QuestionMatch     = course.QuestionMatch

	DifficultyEasy   = course.DifficultyEasy
	DifficultyMedium = course.DifficultyMedium
	DifficultyHard   = course.DifficultyHard
)

// QuestionTypes lists every accepted question type.
var QuestionTypes = []string{
	QuestionMCQ, QuestionMulti, QuestionShortText, QuestionLongText,
	QuestionTrueFalse, QuestionOrdering, QuestionMatch,
}

// AllModels is the migration set, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&Course{},
		&Chapter{},
		&Section{},
		&Learning{},
		&Question{},
		&AnswerOption{},
	}
}
