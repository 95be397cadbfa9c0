package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionMCQ       = "mcq"
	QuestionMulti     = "multi"
	QuestionShortText = "short_text"
	QuestionLongText  = "long_text"
	QuestionTrueFalse = "true_false"
	QuestionOrdering  = "ordering"
	QuestionMatch     = "match"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_question_learning_ix" json:"learning_id"`
	Learning   *Learning `gorm:"constraint:OnDelete:CASCADE;foreignKey:LearningID;references:ID" json:"learning,omitempty"`
	Ix         int       `gorm:"column:ix;not null;uniqueIndex:idx_question_learning_ix" json:"ix"`

	Type       string         `gorm:"column:type;not null" json:"type"`
	Prompt     string         `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Difficulty string         `gorm:"column:difficulty" json:"difficulty,omitempty"`
	Rationale  string         `gorm:"column:rationale;type:text" json:"rationale,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }
