package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type ActivityStateRepo interface {
	GetByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.ActivityState, error)
	GetByEnrollmentAndActivityIDs(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, activityIDs []uuid.UUID) ([]*types.ActivityState, error)
	GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) ([]*types.ActivityState, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ActivityState) error
}

type activityStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityStateRepo(db *gorm.DB, baseLog *logger.Logger) ActivityStateRepo {
	return &activityStateRepo{db: db, log: baseLog.With("repo", "ActivityStateRepo")}
}

func (r *activityStateRepo) GetByEnrollmentAndActivityID(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.ActivityState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, nil
	}

	var result types.ActivityState
	err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND activity_id = ?", enrollmentID, activityID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *activityStateRepo) GetByEnrollmentAndActivityIDs(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, activityIDs []uuid.UUID) ([]*types.ActivityState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ActivityState
	if enrollmentID == uuid.Nil || len(activityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND activity_id IN ?", enrollmentID, activityIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityStateRepo) GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) ([]*types.ActivityState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ActivityState
	if enrollmentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityStateRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ActivityState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique enrollment_id + activity_id
	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND activity_id = ?", row.EnrollmentID, row.ActivityID).
		Assign(map[string]interface{}{
			"completion_percent": row.CompletionPercent,
			"completion_status":  row.CompletionStatus,
			"completed_at":       row.CompletedAt,
			"last_computed_at":   row.LastComputedAt,
			"metadata":           row.Metadata,
		}).
		FirstOrCreate(row).Error; err != nil {
		r.log.Warn("Upsert failed", "error", err, "enrollment_id", row.EnrollmentID, "activity_id", row.ActivityID)
		return err
	}
	return nil
}
