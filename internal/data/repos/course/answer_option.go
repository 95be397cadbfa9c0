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

type AnswerOptionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.AnswerOption) (*types.AnswerOption, error)
	PruneAfter(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, keep int) ([]uuid.UUID, error)
	DeleteByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]uuid.UUID, error)
}

type answerOptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerOptionRepo(db *gorm.DB, baseLog *logger.Logger) AnswerOptionRepo {
	repoLog := baseLog.With("repo", "AnswerOptionRepo")
	return &answerOptionRepo{db: db, log: repoLog}
}

func (r *answerOptionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.AnswerOption) (*types.AnswerOption, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.QuestionID == uuid.Nil || row.Ix < 1 {
		return nil, fmt.Errorf("%w: answer option requires question_id and ix >= 1", errs.ErrInvalidArgument)
	}

	if _, err := upsertByNaturalKey(ctx, transaction, row, &row.ID,
		map[string]interface{}{"question_id": row.QuestionID, "ix": row.Ix},
		map[string]interface{}{
			"content":    row.Content,
			"is_correct": row.IsCorrect,
			"feedback":   row.Feedback,
		}); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *answerOptionRepo) PruneAfter(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, keep int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return pruneAfter[types.AnswerOption](ctx, transaction, "question_id", questionID, keep)
}

func (r *answerOptionRepo) DeleteByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return deleteByParents[types.AnswerOption](ctx, transaction, "question_id", questionIDs)
}
