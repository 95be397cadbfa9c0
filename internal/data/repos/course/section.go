package course

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursetree/internal/domain"
	errs "github.com/yungbote/coursetree/internal/pkg/errors"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type SectionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Section) (*types.Section, error)
	PruneAfter(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID, keep int) ([]uuid.UUID, error)
	DeleteByChapterIDs(ctx context.Context, tx *gorm.DB, chapterIDs []uuid.UUID) ([]uuid.UUID, error)
	RefreshLearningCount(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	repoLog := baseLog.With("repo", "SectionRepo")
	return &sectionRepo{db: db, log: repoLog}
}

// Upsert never writes learning_count; RefreshLearningCount owns that column.
func (r *sectionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Section) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ChapterID == uuid.Nil || row.Ix < 1 {
		return nil, fmt.Errorf("%w: section requires chapter_id and ix >= 1", errs.ErrInvalidArgument)
	}

	if _, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"chapter_id": row.ChapterID, "ix": row.Ix},
		map[string]interface{}{
			"title":   row.Title,
			"summary": row.Summary,
		}); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sectionRepo) PruneAfter(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID, keep int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return pruneAfter[types.Section](ctx, transaction, "chapter_id", chapterID, keep)
}

func (r *sectionRepo) DeleteByChapterIDs(ctx context.Context, tx *gorm.DB, chapterIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return deleteByParents[types.Section](ctx, transaction, "chapter_id", chapterIDs)
}

// RefreshLearningCount recomputes the cached count from the learning rows.
func (r *sectionRepo) RefreshLearningCount(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sectionID == uuid.Nil {
		return 0, fmt.Errorf("%w: missing section_id", errs.ErrInvalidArgument)
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Learning{}).
		Where("section_id = ?", sectionID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Section{}).
		Where("id = ?", sectionID).
		Update("learning_count", int(n)).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
