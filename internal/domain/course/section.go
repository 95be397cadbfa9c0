package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Section struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_section_chapter_ix" json:"chapter_id"`
	Chapter   *Chapter  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChapterID;references:ID" json:"chapter,omitempty"`
	Ix        int       `gorm:"column:ix;not null;uniqueIndex:idx_section_chapter_ix" json:"ix"`

	Title   string `gorm:"column:title;not null" json:"title"`
	Summary string `gorm:"column:summary;type:text" json:"summary"`

	// Denormalized; always recomputed from the learning rows, never incremented.
	LearningCount int `gorm:"column:learning_count;not null;default:0" json:"learning_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Section) TableName() string { return "section" }
