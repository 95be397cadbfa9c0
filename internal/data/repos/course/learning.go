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

type LearningRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Learning) (*types.Learning, error)
	PruneAfter(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, keep int) ([]uuid.UUID, error)
	DeleteBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]uuid.UUID, error)
}

type learningRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningRepo(db *gorm.DB, baseLog *logger.Logger) LearningRepo {
	repoLog := baseLog.With("repo", "LearningRepo")
	return &learningRepo{db: db, log: repoLog}
}

func (r *learningRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Learning) (*types.Learning, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.SectionID == uuid.Nil || row.Ix < 1 {
		return nil, fmt.Errorf("%w: learning requires section_id and ix >= 1", errs.ErrInvalidArgument)
	}

	if _, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"section_id": row.SectionID, "ix": row.Ix},
		map[string]interface{}{
			"title":         row.Title,
			"body":          row.Body,
			"min_questions": row.MinQuestions,
			"max_questions": row.MaxQuestions,
			"quick_replies": row.QuickReplies,
			"state":         row.State,
		}); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningRepo) PruneAfter(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, keep int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return pruneAfter[types.Learning](ctx, transaction, "section_id", sectionID, keep)
}

func (r *learningRepo) DeleteBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return deleteByParents[types.Learning](ctx, transaction, "section_id", sectionIDs)
}
