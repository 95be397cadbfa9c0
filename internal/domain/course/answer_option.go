package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_question_ix" json:"question_id"`
	Question   *Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	Ix         int       `gorm:"column:ix;not null;uniqueIndex:idx_answer_question_ix" json:"ix"`

	Content   string `gorm:"column:content;type:text;not null" json:"content"`
	IsCorrect bool   `gorm:"column:is_correct;not null" json:"is_correct"`
	Feedback  string `gorm:"column:feedback;type:text" json:"feedback,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnswerOption) TableName() string { return "answer_option" }
