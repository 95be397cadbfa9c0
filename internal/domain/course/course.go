package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
	VisibilityPublic   = "public"

	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Course is the root record. Its natural key is Slug.
type Course struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`

	Title            string         `gorm:"column:title;not null" json:"title"`
	Slug             string         `gorm:"column:slug;not null;uniqueIndex:idx_course_slug" json:"slug"`
	Summary          string         `gorm:"column:summary;type:text" json:"summary"`
	Language         string         `gorm:"column:language" json:"language,omitempty"`
	Tags             datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	EstimatedMinutes int            `gorm:"column:estimated_minutes" json:"estimated_minutes,omitempty"`

	BannerURL string `gorm:"column:banner_url" json:"banner_url,omitempty"`
	BannerAlt string `gorm:"column:banner_alt" json:"banner_alt,omitempty"`
	IconURL   string `gorm:"column:icon_url" json:"icon_url,omitempty"`
	IconAlt   string `gorm:"column:icon_alt" json:"icon_alt,omitempty"`

	Visibility string `gorm:"column:visibility;not null" json:"visibility"`
	Status     string `gorm:"column:status;not null;index" json:"status"`
	Version    int    `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }
