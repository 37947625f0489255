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

type DripResult struct {
	Satisfied bool `json:"satisfied"`
	// NextAvailableAt is the latest known release time across blocking rules.
	// Nil when the activity is unblocked, or when the only blocking rule
	// depends on a base activity that has not completed yet.
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

// DripScheduler evaluates time-based release rules at a caller-supplied
// instant. Nothing wakes an activity up when its release time passes;
// unlocking is discovered on the next evaluation.
type DripScheduler interface {
	Evaluate(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID, now time.Time) (*DripResult, error)
}

type dripScheduler struct {
	db        *gorm.DB
	log       *logger.Logger
	dripRepo  repos.DripRuleRepo
	stateRepo repos.ActivityStateRepo
}

func NewDripScheduler(
	db *gorm.DB,
	baseLog *logger.Logger,
	dripRepo repos.DripRuleRepo,
	stateRepo repos.ActivityStateRepo,
) DripScheduler {
	return &dripScheduler{
		db:        db,
		log:       baseLog.With("service", "DripScheduler"),
		dripRepo:  dripRepo,
		stateRepo: stateRepo,
	}
}

func (s *dripScheduler) Evaluate(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID, now time.Time) (*DripResult, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	rules, err := s.dripRepo.GetByActivityID(ctx, transaction, activityID)
	if err != nil {
		return nil, fmt.Errorf("load drip rules: %w", err)
	}
	if len(rules) == 0 {
		return &DripResult{Satisfied: true}, nil
	}

	var candidates []time.Time
	unknownBase := false
	for _, rule := range rules {
		switch rule.DripType {
		case types.DripTypeFixedDate:
			if rule.ReleaseAt == nil {
				continue
			}
			if now.Before(*rule.ReleaseAt) {
				candidates = append(candidates, *rule.ReleaseAt)
			}
		case types.DripTypeAfterCompletionDelay:
			if rule.BaseActivityID == nil {
				continue
			}
			state, err := s.stateRepo.GetByEnrollmentAndActivityID(ctx, transaction, enrollmentID, *rule.BaseActivityID)
			if err != nil {
				return nil, fmt.Errorf("load base activity state: %w", err)
			}
			if !state.IsComplete() || state.CompletedAt == nil {
				// release time unknowable until the base completes
				unknownBase = true
				continue
			}
			candidate := state.CompletedAt.Add(time.Duration(rule.DelayDays) * 24 * time.Hour)
			if now.Before(candidate) {
				candidates = append(candidates, candidate)
			}
		}
	}

	if len(candidates) == 0 && !unknownBase {
		return &DripResult{Satisfied: true}, nil
	}

	result := &DripResult{Satisfied: false}
	for i := range candidates {
		if result.NextAvailableAt == nil || candidates[i].After(*result.NextAvailableAt) {
			result.NextAvailableAt = &candidates[i]
		}
	}
	return result, nil
}
