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

type QuestionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error)
	PruneAfter(ctx context.Context, tx *gorm.DB, learningID uuid.UUID, keep int) ([]uuid.UUID, error)
	DeleteByLearningIDs(ctx context.Context, tx *gorm.DB, learningIDs []uuid.UUID) ([]uuid.UUID, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Question) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.LearningID == uuid.Nil || row.Ix < 1 {
		return nil, fmt.Errorf("%w: question requires learning_id and ix >= 1", errs.ErrInvalidArgument)
	}

	if _, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"learning_id": row.LearningID, "ix": row.Ix},
		map[string]interface{}{
			"type":       row.Type,
			"prompt":     row.Prompt,
			"difficulty": row.Difficulty,
			"rationale":  row.Rationale,
			"metadata":   row.Metadata,
		}); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *questionRepo) PruneAfter(ctx context.Context, tx *gorm.DB, learningID uuid.UUID, keep int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return pruneAfter[types.Question](ctx, transaction, "learning_id", learningID, keep)
}

func (r *questionRepo) DeleteByLearningIDs(ctx context.Context, tx *gorm.DB, learningIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return deleteByParents[types.Question](ctx, transaction, "learning_id", learningIDs)
}
