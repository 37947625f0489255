package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/repos"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

// OverrideService appends administrator exceptions. It deliberately does not
// publish a recompute event: an exemption changes gating, not reported
// completion, so the cached rollup is unaffected.
type OverrideService interface {
	Apply(ctx context.Context, enrollmentID, activityID uuid.UUID, overrideType string, appliedBy *uuid.UUID, reason string) (*types.Override, error)
	History(ctx context.Context, enrollmentID, activityID uuid.UUID) ([]*types.Override, error)
}

type overrideService struct {
	db           *gorm.DB
	log          *logger.Logger
	overrideRepo repos.OverrideRepo
}

func NewOverrideService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overrideRepo repos.OverrideRepo,
) OverrideService {
	return &overrideService{
		db:           db,
		log:          baseLog.With("service", "OverrideService"),
		overrideRepo: overrideRepo,
	}
}

func (s *overrideService) Apply(ctx context.Context, enrollmentID, activityID uuid.UUID, overrideType string, appliedBy *uuid.UUID, reason string) (*types.Override, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}
	switch overrideType {
	case types.OverrideTypeExempt, types.OverrideTypeManualUnlock, types.OverrideTypeGraceUnlock:
	default:
		return nil, fmt.Errorf("unknown override type %q", overrideType)
	}

	row := &types.Override{
		EnrollmentID: enrollmentID,
		ActivityID:   activityID,
		OverrideType: overrideType,
		AppliedBy:    appliedBy,
		Reason:       reason,
	}
	created, err := s.overrideRepo.Create(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("create override: %w", err)
	}
	s.log.Info("Override applied", "enrollment_id", enrollmentID, "activity_id", activityID, "override_type", overrideType)
	return created, nil
}

func (s *overrideService) History(ctx context.Context, enrollmentID, activityID uuid.UUID) ([]*types.Override, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}
	return s.overrideRepo.ListByEnrollmentAndActivityID(ctx, nil, enrollmentID, activityID)
}
