package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// upsertByNaturalKey finds the row matching key (soft-deleted rows included),
// updates it in place and restores it, or creates row when none exists.
// *id is set to the storage identity either way.
func upsertByNaturalKey[T any](ctx context.Context, db *gorm.DB, row *T, id *uuid.UUID, key map[string]interface{}, updates map[string]interface{}) (bool, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).
		Model(new(T)).
		Unscoped().
		Where(key).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, err
	}

	if len(ids) == 0 {
		if *id == uuid.Nil {
			*id = uuid.New()
		}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	*id = ids[0]
	updates["deleted_at"] = nil
	updates["updated_at"] = time.Now().UTC()
	if err := db.WithContext(ctx).
		Model(new(T)).
		Unscoped().
		Where("id = ?", ids[0]).
		Updates(updates).Error; err != nil {
		return false, err
	}
	return false, nil
}

// pruneAfter hard-deletes children of parentID positioned outside 1..keep
// and returns their ids so callers can cascade.
func pruneAfter[T any](ctx context.Context, db *gorm.DB, parentColumn string, parentID uuid.UUID, keep int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).
		Model(new(T)).
		Unscoped().
		Where(parentColumn+" = ? AND (ix > ? OR ix < 1)", parentID, keep).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := db.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(new(T)).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// deleteByParents hard-deletes every child of parentIDs and returns their ids.
func deleteByParents[T any](ctx context.Context, db *gorm.DB, parentColumn string, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(parentIDs) == 0 {
		return ids, nil
	}
	if err := db.WithContext(ctx).
		Model(new(T)).
		Unscoped().
		Where(parentColumn+" IN ?", parentIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := db.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(new(T)).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
