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

type ChapterRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Chapter) (*types.Chapter, error)
	PruneAfter(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keep int) ([]uuid.UUID, error)
}

type chapterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	repoLog := baseLog.With("repo", "ChapterRepo")
	return &chapterRepo{db: db, log: repoLog}
}

func (r *chapterRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Chapter) (*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.CourseID == uuid.Nil || row.Ix < 1 {
		return nil, fmt.Errorf("%w: chapter requires course_id and ix >= 1", errs.ErrInvalidArgument)
	}

	if _, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"course_id": row.CourseID, "ix": row.Ix},
		map[string]interface{}{
			"title":   row.Title,
			"summary": row.Summary,
		}); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *chapterRepo) PruneAfter(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, keep int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return pruneAfter[types.Chapter](ctx, transaction, "course_id", courseID, keep)
}
