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

type PrerequisiteResult struct {
	Satisfied           bool        `json:"satisfied"`
	BlockingActivityIDs []uuid.UUID `json:"blocking_activity_ids"`
}

// PrerequisiteResolver evaluates whether an activity's declared prerequisite
// groups are satisfied for one enrollment. Read-only; it never mutates state.
type PrerequisiteResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*PrerequisiteResult, error)
}

type prerequisiteResolver struct {
	db         *gorm.DB
	log        *logger.Logger
	prereqRepo repos.PrerequisiteRepo
	stateRepo  repos.ActivityStateRepo
}

func NewPrerequisiteResolver(
	db *gorm.DB,
	baseLog *logger.Logger,
	prereqRepo repos.PrerequisiteRepo,
	stateRepo repos.ActivityStateRepo,
) PrerequisiteResolver {
	return &prerequisiteResolver{
		db:         db,
		log:        baseLog.With("service", "PrerequisiteResolver"),
		prereqRepo: prereqRepo,
		stateRepo:  stateRepo,
	}
}

func (s *prerequisiteResolver) Resolve(ctx context.Context, tx *gorm.DB, enrollmentID, activityID uuid.UUID) (*PrerequisiteResult, error) {
	if enrollmentID == uuid.Nil || activityID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or activity id")
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	groups, err := s.prereqRepo.GetGroupsByActivityID(ctx, transaction, activityID)
	if err != nil {
		return nil, fmt.Errorf("load prerequisite groups: %w", err)
	}
	if len(groups) == 0 {
		return &PrerequisiteResult{Satisfied: true}, nil
	}

	requiredIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, g := range groups {
		for _, item := range g.Items {
			if !seen[item.RequiredActivityID] {
				seen[item.RequiredActivityID] = true
				requiredIDs = append(requiredIDs, item.RequiredActivityID)
			}
		}
	}

	states, err := s.stateRepo.GetByEnrollmentAndActivityIDs(ctx, transaction, enrollmentID, requiredIDs)
	if err != nil {
		return nil, fmt.Errorf("load activity states: %w", err)
	}
	completed := make(map[uuid.UUID]bool, len(states))
	for _, st := range states {
		if st.IsComplete() {
			completed[st.ActivityID] = true
		}
	}

	satisfied := true
	blockers := make([]uuid.UUID, 0)
	blocked := make(map[uuid.UUID]bool)
	for _, g := range groups {
		groupOK, unmet := evaluateGroup(g, completed)
		if groupOK {
			continue
		}
		satisfied = false
		for _, id := range unmet {
			if !blocked[id] {
				blocked[id] = true
				blockers = append(blockers, id)
			}
		}
	}

	return &PrerequisiteResult{Satisfied: satisfied, BlockingActivityIDs: blockers}, nil
}

// evaluateGroup applies the group's own satisfaction rule and reports its
// unmet items. A group with no items, or an n_of_m group requiring nothing,
// constrains nothing.
func evaluateGroup(g *types.PrerequisiteGroup, completed map[uuid.UUID]bool) (bool, []uuid.UUID) {
	if g == nil || len(g.Items) == 0 {
		return true, nil
	}

	met := 0
	unmet := make([]uuid.UUID, 0)
	for _, item := range g.Items {
		if completed[item.RequiredActivityID] {
			met++
		} else {
			unmet = append(unmet, item.RequiredActivityID)
		}
	}

	switch g.PrereqType {
	case types.PrereqTypeAnyOf:
		return met >= 1, unmet
	case types.PrereqTypeNOfM:
		if g.NRequired <= 0 {
			return true, nil
		}
		return met >= g.NRequired, unmet
	default:
		// all_of, and anything unrecognized behaves like it
		return len(unmet) == 0, unmet
	}
}
