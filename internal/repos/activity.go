package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type ActivityRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Activity, error)
	ListActiveByPathwayID(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) ([]*types.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) ListActiveByPathwayID(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if pathwayID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("pathway_id = ? AND status = ?", pathwayID, types.ActivityStatusActive).
		Order("ordering_hint ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
