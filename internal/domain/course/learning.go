package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LearningStateDraft     = "draft"
	LearningStatePublished = "published"

	DefaultMinQuestions = 2
	DefaultMaxQuestions = 10
)

type Learning struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learning_section_ix" json:"section_id"`
	Section   *Section  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Ix        int       `gorm:"column:ix;not null;uniqueIndex:idx_learning_section_ix" json:"ix"`

	Title        string         `gorm:"column:title;not null" json:"title"`
	Body         string         `gorm:"column:body;type:text" json:"body"`
	MinQuestions int            `gorm:"column:min_questions;not null" json:"min_questions"`
	MaxQuestions int            `gorm:"column:max_questions;not null" json:"max_questions"`
	QuickReplies datatypes.JSON `gorm:"column:quick_replies;type:jsonb" json:"quick_replies"`
	State        string         `gorm:"column:state;not null" json:"state"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Learning) TableName() string { return "learning" }
