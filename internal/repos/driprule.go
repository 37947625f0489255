package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type DripRuleRepo interface {
	GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.DripRule, error)
}

type dripRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDripRuleRepo(db *gorm.DB, baseLog *logger.Logger) DripRuleRepo {
	return &dripRuleRepo{db: db, log: baseLog.With("repo", "DripRuleRepo")}
}

func (r *dripRuleRepo) GetByActivityID(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*types.DripRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DripRule
	if activityID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
