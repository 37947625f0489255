package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type PrerequisiteRepo interface {
	GetGroupsByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.PrerequisiteGroup, error)
}

type prerequisiteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrerequisiteRepo(db *gorm.DB, baseLog *logger.Logger) PrerequisiteRepo {
	return &prerequisiteRepo{db: db, log: baseLog.With("repo", "PrerequisiteRepo")}
}

func (r *prerequisiteRepo) GetGroupsByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.PrerequisiteGroup, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PrerequisiteGroup
	if activityID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("activity_id = ?", activityID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
