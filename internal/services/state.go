package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/repos"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

// ActivityStateService is the write path external subsystems use when they
// observe a real completion signal: upsert the state row, then publish a
// recompute event for the enrollment. The two steps are independent — a
// publish failure leaves the rollup stale until the next event, never the
// state row unwritten.
type ActivityStateService interface {
	RecordState(ctx context.Context, enrollmentID, activityID uuid.UUID, percent int, status string, completedAt *time.Time) (*types.ActivityState, error)
	GetState(ctx context.Context, enrollmentID, activityID uuid.UUID) (*types.ActivityState, error)
}

type activityStateService struct {
	db        *gorm.DB
	log       *logger.Logger
	stateRepo repos.ActivityStateRepo
	bus       signal.Bus
}

func NewActivityStateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stateRepo repos.ActivityStateRepo,
	bus signal.Bus,
) ActivityStateService {
	return &activityStateService{
		db:        db,
		log:       baseLog.With("service", "ActivityStateService"),
		stateRepo: stateRepo,
		bus:       bus,
	}
}

func (s *activityStateService) RecordState(ctx context.Context, enrollmentID, activityID uuid.UUID, percent int, status string, completedAt *time.Time) (*types.ActivityState, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("completion percent out of range: %d", percent)
	}
	switch status {
	case types.CompletionStatusNotStarted, types.CompletionStatusInProgress, types.CompletionStatusComplete:
	default:
		return nil, fmt.Errorf("unknown completion status %q", status)
	}

	// completed_at is set iff the status is complete
	if status == types.CompletionStatusComplete {
		if completedAt == nil {
			now := time.Now().UTC()
			completedAt = &now
		}
	} else {
		completedAt = nil
	}

	row := &types.ActivityState{
		EnrollmentID:      enrollmentID,
		ActivityID:        activityID,
		CompletionPercent: percent,
		CompletionStatus:  status,
		CompletedAt:       completedAt,
		LastComputedAt:    time.Now().UTC(),
	}
	if err := s.stateRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("upsert activity state: %w", err)
	}

	if err := s.bus.Publish(ctx, signal.Event{EnrollmentID: enrollmentID}); err != nil {
		s.log.Warn("Recompute publish failed after state write", "error", err, "enrollment_id", enrollmentID)
		return row, fmt.Errorf("publish recompute: %w", err)
	}
	return row, nil
}

func (s *activityStateService) GetState(ctx context.Context, enrollmentID, activityID uuid.UUID) (*types.ActivityState, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}
	return s.stateRepo.GetByEnrollmentAndActivityID(ctx, nil, enrollmentID, activityID)
}
