package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetree/internal/domain"
	errs "github.com/yungbote/coursetree/internal/pkg/errors"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type CourseRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Course) (*types.Course, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

// Upsert writes the course keyed by slug. The creator of an existing row is
// never reassigned; a slug owned by another creator is a conflict.
func (r *courseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Course) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || strings.TrimSpace(row.Slug) == "" || row.CreatorID == uuid.Nil {
		return nil, fmt.Errorf("%w: course requires slug and creator_id", errs.ErrInvalidArgument)
	}

	owner, err := r.GetBySlug(ctx, transaction, row.Slug)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.CreatorID != row.CreatorID {
		return nil, fmt.Errorf("%w: slug %q belongs to another creator", errs.ErrConflict, row.Slug)
	}

	created, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"slug": row.Slug},
		map[string]interface{}{
			"category_id":       row.CategoryID,
			"title":             row.Title,
			"summary":           row.Summary,
			"language":          row.Language,
			"tags":              row.Tags,
			"estimated_minutes": row.EstimatedMinutes,
			"banner_url":        row.BannerURL,
			"banner_alt":        row.BannerAlt,
			"icon_url":          row.IconURL,
			"icon_alt":          row.IconAlt,
			"visibility":        row.Visibility,
			"status":            row.Status,
			"version":           row.Version,
		})
	if err != nil {
		return nil, err
	}
	r.log.Debug("course upserted", "course_id", row.ID, "slug", row.Slug, "created", created)
	return row, nil
}

// GetBySlug returns the course holding slug, soft-deleted rows included:
// a deleted course keeps its slug reserved for its creator. It returns nil,
// nil when no row has the slug.
func (r *courseRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("slug = ?", slug).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
