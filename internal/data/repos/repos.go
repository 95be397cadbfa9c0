package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursetree/internal/data/repos/course"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type CourseRepo = course.CourseRepo
type ChapterRepo = course.ChapterRepo
type SectionRepo = course.SectionRepo
type LearningRepo = course.LearningRepo
type QuestionRepo = course.QuestionRepo
type AnswerOptionRepo = course.AnswerOptionRepo

// Set groups the six course tree repos.
type Set struct {
	Courses       CourseRepo
	Chapters      ChapterRepo
	Sections      SectionRepo
	Learnings     LearningRepo
	Questions     QuestionRepo
	AnswerOptions AnswerOptionRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Courses:       NewCourseRepo(db, baseLog),
		Chapters:      NewChapterRepo(db, baseLog),
		Sections:      NewSectionRepo(db, baseLog),
		Learnings:     NewLearningRepo(db, baseLog),
		Questions:     NewQuestionRepo(db, baseLog),
		AnswerOptions: NewAnswerOptionRepo(db, baseLog),
	}
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return course.NewCourseRepo(db, baseLog)
}
func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return course.NewChapterRepo(db, baseLog)
}
func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return course.NewSectionRepo(db, baseLog)
}
func NewLearningRepo(db *gorm.DB, baseLog *logger.Logger) LearningRepo {
	return course.NewLearningRepo(db, baseLog)
}
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return course.NewQuestionRepo(db, baseLog)
}
func NewAnswerOptionRepo(db *gorm.DB, baseLog *logger.Logger) AnswerOptionRepo {
	return course.NewAnswerOptionRepo(db, baseLog)
}
