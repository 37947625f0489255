package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type CompletionRollupRepo interface {
	GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.CompletionRollup, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CompletionRollup) error
}

type completionRollupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRollupRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRollupRepo {
	return &completionRollupRepo{db: db, log: baseLog.With("repo", "CompletionRollupRepo")}
}

func (r *completionRollupRepo) GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.CompletionRollup, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if enrollmentID == uuid.Nil {
		return nil, nil
	}

	var result types.CompletionRollup
	err := transaction.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *completionRollupRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CompletionRollup) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Last write wins; one cached row per enrollment
	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ?", row.EnrollmentID).
		Assign(map[string]interface{}{
			"pathway_completion_percent": row.PathwayCompletionPercent,
			"track_completion_percent":   row.TrackCompletionPercent,
			"last_computed_at":           row.LastComputedAt,
		}).
		FirstOrCreate(row).Error; err != nil {
		r.log.Warn("Upsert failed", "error", err, "enrollment_id", row.EnrollmentID)
		return err
	}
	return nil
}
