package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/repos"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

// RollupService aggregates per-activity completion into the cached weighted
// percentage per enrollment. Recomputes run when a recompute event arrives,
// never on the read path; readers take the cached row as-is and tolerate
// staleness until the next event.
type RollupService interface {
	// ComputeRollup recomputes from current state and upserts the cached row.
	// ErrEnrollmentNotFound is the only hard error besides persistence
	// failures; a missing pathway or an empty pathway yields a 0.00 rollup.
	ComputeRollup(ctx context.Context, enrollmentID uuid.UUID) (*types.CompletionRollup, error)
	// GetRollup returns the cached row, computing it once if none exists yet.
	GetRollup(ctx context.Context, enrollmentID uuid.UUID) (*types.CompletionRollup, error)
	// OnRecomputeRequested is the signal consumer. Idempotent: replaying an
	// event with unchanged inputs persists the same percentages.
	OnRecomputeRequested(ctx context.Context, ev signal.Event) error
}

type rollupService struct {
	db              *gorm.DB
	log             *logger.Logger
	enrollmentRepo  repos.EnrollmentRepo
	activityRepo    repos.ActivityRepo
	stateRepo       repos.ActivityStateRepo
	rollupRepo      repos.CompletionRollupRepo
	providers       *ProviderRegistry
	providerTimeout time.Duration
}

func NewRollupService(
	db *gorm.DB,
	baseLog *logger.Logger,
	enrollmentRepo repos.EnrollmentRepo,
	activityRepo repos.ActivityRepo,
	stateRepo repos.ActivityStateRepo,
	rollupRepo repos.CompletionRollupRepo,
	providers *ProviderRegistry,
	providerTimeout time.Duration,
) RollupService {
	return &rollupService{
		db:              db,
		log:             baseLog.With("service", "RollupService"),
		enrollmentRepo:  enrollmentRepo,
		activityRepo:    activityRepo,
		stateRepo:       stateRepo,
		rollupRepo:      rollupRepo,
		providers:       providers,
		providerTimeout: providerTimeout,
	}
}

func (s *rollupService) ComputeRollup(ctx context.Context, enrollmentID uuid.UUID) (*types.CompletionRollup, error) {
	if enrollmentID == uuid.Nil {
		return nil, ErrEnrollmentNotFound
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}

	if enrollment.PathwayID == nil {
		return s.persist(ctx, enrollmentID, 0, 0)
	}

	activities, err := s.activityRepo.ListActiveByPathwayID(ctx, nil, *enrollment.PathwayID)
	if err != nil {
		return nil, fmt.Errorf("load pathway activities: %w", err)
	}
	if len(activities) == 0 {
		return s.persist(ctx, enrollmentID, 0, 0)
	}

	activityIDs := make([]uuid.UUID, 0, len(activities))
	for _, a := range activities {
		activityIDs = append(activityIDs, a.ID)
	}
	states, err := s.stateRepo.GetByEnrollmentAndActivityIDs(ctx, nil, enrollmentID, activityIDs)
	if err != nil {
		return nil, fmt.Errorf("load activity states: %w", err)
	}
	stateByActivity := make(map[uuid.UUID]*types.ActivityState, len(states))
	for _, st := range states {
		stateByActivity[st.ActivityID] = st
	}

	var weightedSum, weightSum float64
	for _, a := range activities {
		weight := a.EffectiveWeight()
		percent := s.percentFor(ctx, enrollment, a, stateByActivity[a.ID])
		weightedSum += weight * float64(percent)
		weightSum += weight
	}

	average := roundPercent(weightedSum / weightSum)

	// single pathway per enrollment: pathway and track percent coincide
	return s.persist(ctx, enrollmentID, average, average)
}

func (s *rollupService) GetRollup(ctx context.Context, enrollmentID uuid.UUID) (*types.CompletionRollup, error) {
	if enrollmentID == uuid.Nil {
		return nil, ErrEnrollmentNotFound
	}

	cached, err := s.rollupRepo.GetByEnrollmentID(ctx, nil, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("load rollup: %w", err)
	}
	if cached != nil {
		return cached, nil
	}
	return s.ComputeRollup(ctx, enrollmentID)
}

func (s *rollupService) OnRecomputeRequested(ctx context.Context, ev signal.Event) error {
	_, err := s.ComputeRollup(ctx, ev.EnrollmentID)
	if err == ErrEnrollmentNotFound {
		// enrollment vanished between the write and the signal; nothing to cache
		s.log.Warn("Recompute requested for unknown enrollment", "enrollment_id", ev.EnrollmentID)
		return nil
	}
	if err != nil {
		s.log.Error("Rollup recompute failed", "error", err, "enrollment_id", ev.EnrollmentID)
		return err
	}
	return nil
}

// percentFor picks the completion percent for one activity: the recorded
// state when one exists, otherwise a best-effort live provider lookup.
func (s *rollupService) percentFor(ctx context.Context, enrollment *types.Enrollment, activity *types.Activity, state *types.ActivityState) int {
	if state != nil {
		return state.CompletionPercent
	}
	if s.providers == nil {
		return 0
	}
	provider, ok := s.providers.ForType(activity.ActivityType)
	if !ok {
		return 0
	}
	return fetchLiveProgress(ctx, s.log, provider, enrollment.UserID, activity.ExternalRef, s.providerTimeout)
}

func (s *rollupService) persist(ctx context.Context, enrollmentID uuid.UUID, pathwayPercent, trackPercent float64) (*types.CompletionRollup, error) {
	row := &types.CompletionRollup{
		EnrollmentID:             enrollmentID,
		PathwayCompletionPercent: pathwayPercent,
		TrackCompletionPercent:   trackPercent,
		LastComputedAt:           time.Now().UTC(),
	}
	if err := s.rollupRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("upsert rollup: %w", err)
	}
	return row, nil
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
