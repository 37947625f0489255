package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type OverrideRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Override) (*types.Override, error)
	// LatestByEnrollmentAndActivityID returns the most recently created
	// override for the pair, or nil when none exists. Earlier rows are
	// history only; effects are never combined.
	LatestByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.Override, error)
	ListByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) ([]*types.Override, error)
}

type overrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverrideRepo(db *gorm.DB, baseLog *logger.Logger) OverrideRepo {
	return &overrideRepo{db: db, log: baseLog.With("repo", "OverrideRepo")}
}

func (r *overrideRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Override) (*types.Override, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *overrideRepo) LatestByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.Override, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, nil
	}

	var result types.Override
	err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND activity_id = ?", enrollmentID, activityID).
		Order("created_at DESC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *overrideRepo) ListByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) ([]*types.Override, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Override
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND activity_id = ?", enrollmentID, activityID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
