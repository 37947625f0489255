package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/repos"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

const (
	AvailabilityStatusCompleted = "completed"
	AvailabilityStatusLocked    = "locked"
	AvailabilityStatusAvailable = "available"

	LockedReasonNone   = "none"
	LockedReasonPrereq = "prereq"
	LockedReasonDrip   = "drip"
)

type AvailabilityDecision struct {
	Status              string      `json:"status"`
	LockedReason        string      `json:"locked_reason"`
	BlockingActivityIDs []uuid.UUID `json:"blocking_activity_ids,omitempty"`
	NextAvailableAt     *time.Time  `json:"next_available_at,omitempty"`
}

// AvailabilityService decides whether one activity is completed, locked or
// available for one enrollment. The decision is a pure function of stored
// state and the supplied clock; it persists nothing.
//
// Gate order is fixed: completion, then exemption, then prerequisites, then
// drip. A manual_unlock override bypasses drip only — a prerequisite-locked
// activity stays locked under it.
type AvailabilityService interface {
	ComputeAvailability(ctx context.Context, enrollmentID, activityID uuid.UUID, now time.Time) (*AvailabilityDecision, error)
}

type availabilityService struct {
	db           *gorm.DB
	log          *logger.Logger
	stateRepo    repos.ActivityStateRepo
	overrideRepo repos.OverrideRepo
	prereqs      PrerequisiteResolver
	drip         DripScheduler
}

func NewAvailabilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	stateRepo repos.ActivityStateRepo,
	overrideRepo repos.OverrideRepo,
	prereqs PrerequisiteResolver,
	drip DripScheduler,
) AvailabilityService {
	return &availabilityService{
		db:           db,
		log:          baseLog.With("service", "AvailabilityService"),
		stateRepo:    stateRepo,
		overrideRepo: overrideRepo,
		prereqs:      prereqs,
		drip:         drip,
	}
}

func (s *availabilityService) ComputeAvailability(ctx context.Context, enrollmentID, activityID uuid.UUID, now time.Time) (*AvailabilityDecision, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}

	state, err := s.stateRepo.GetByEnrollmentAndActivityID(ctx, nil, enrollmentID, activityID)
	if err != nil {
		return nil, fmt.Errorf("load activity state: %w", err)
	}
	if state.IsComplete() {
		return &AvailabilityDecision{Status: AvailabilityStatusCompleted, LockedReason: LockedReasonNone}, nil
	}

	override, err := s.overrideRepo.LatestByEnrollmentAndActivityID(ctx, nil, enrollmentID, activityID)
	if err != nil {
		return nil, fmt.Errorf("load override: %w", err)
	}
	if override != nil && override.OverrideType == types.OverrideTypeExempt {
		return &AvailabilityDecision{Status: AvailabilityStatusCompleted, LockedReason: LockedReasonNone}, nil
	}

	prereqResult, err := s.prereqs.Resolve(ctx, nil, enrollmentID, activityID)
	if err != nil {
		return nil, fmt.Errorf("resolve prerequisites: %w", err)
	}
	if !prereqResult.Satisfied {
		return &AvailabilityDecision{
			Status:              AvailabilityStatusLocked,
			LockedReason:        LockedReasonPrereq,
			BlockingActivityIDs: prereqResult.BlockingActivityIDs,
		}, nil
	}

	if override == nil || override.OverrideType != types.OverrideTypeManualUnlock {
		dripResult, err := s.drip.Evaluate(ctx, nil, enrollmentID, activityID, now)
		if err != nil {
			return nil, fmt.Errorf("evaluate drip rules: %w", err)
		}
		if !dripResult.Satisfied {
			return &AvailabilityDecision{
				Status:          AvailabilityStatusLocked,
				LockedReason:    LockedReasonDrip,
				NextAvailableAt: dripResult.NextAvailableAt,
			}, nil
		}
	}

	return &AvailabilityDecision{Status: AvailabilityStatusAvailable, LockedReason: LockedReasonNone}, nil
}
