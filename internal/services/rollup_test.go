package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type rollupFixture struct {
	enrollmentID   uuid.UUID
	pathwayID      uuid.UUID
	userID         uuid.UUID
	enrollmentRepo *fakeEnrollmentRepo
	activityRepo   *fakeActivityRepo
	stateRepo      *fakeActivityStateRepo
	rollupRepo     *fakeRollupRepo
	registry       *ProviderRegistry
	svc            RollupService
}

func newRollupFixture(t *testing.T) *rollupFixture {
	t.Helper()
	f := &rollupFixture{
		enrollmentID: uuid.New(),
		pathwayID:    uuid.New(),
		userID:       uuid.New(),
		stateRepo:    newFakeActivityStateRepo(),
		rollupRepo:   newFakeRollupRepo(),
		registry:     NewProviderRegistry(),
	}
	f.enrollmentRepo = &fakeEnrollmentRepo{rows: map[uuid.UUID]*types.Enrollment{
		f.enrollmentID: {ID: f.enrollmentID, UserID: f.userID, TrackID: uuid.New(), PathwayID: &f.pathwayID},
	}}
	f.activityRepo = &fakeActivityRepo{byPathway: make(map[uuid.UUID][]*types.Activity)}
	f.svc = NewRollupService(
		nil,
		testLogger(t),
		f.enrollmentRepo,
		f.activityRepo,
		f.stateRepo,
		f.rollupRepo,
		f.registry,
		time.Second,
	)
	return f
}

func activity(pathwayID uuid.UUID, weight float64) *types.Activity {
	return &types.Activity{
		ID:           uuid.New(),
		PathwayID:    pathwayID,
		Name:         "activity",
		ActivityType: types.ActivityTypeSelfAssessment,
		Weight:       weight,
		Status:       types.ActivityStatusActive,
	}
}

func TestComputeRollup_WeightedAverage(t *testing.T) {
	pathwayID := uuid.New()
	a := activity(pathwayID, 1)
	b := activity(pathwayID, 3)
	f := newRollupFixture(t)
	f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {a, b}}
	f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID

	done := time.Now().UTC()
	f.stateRepo.set(&types.ActivityState{EnrollmentID: f.enrollmentID, ActivityID: a.ID, CompletionPercent: 50, CompletionStatus: types.CompletionStatusInProgress})
	f.stateRepo.set(completeState(f.enrollmentID, b.ID, 80, done))

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	// (1*50 + 3*80) / 4
	if got.PathwayCompletionPercent != 72.50 {
		t.Fatalf("PathwayCompletionPercent = %v, want 72.50", got.PathwayCompletionPercent)
	}
	if got.TrackCompletionPercent != 72.50 {
		t.Fatalf("TrackCompletionPercent = %v, want 72.50", got.TrackCompletionPercent)
	}
}

func TestComputeRollup_ZeroWeightCountsAsOne(t *testing.T) {
	pathwayID := uuid.New()
	a := activity(pathwayID, 0)
	b := activity(pathwayID, -2)
	f := newRollupFixture(t)
	f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {a, b}}
	f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID

	f.stateRepo.set(completeState(f.enrollmentID, a.ID, 100, time.Now().UTC()))
	f.stateRepo.set(progressState(f.enrollmentID, b.ID, 0))

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	if got.PathwayCompletionPercent != 50.00 {
		t.Fatalf("PathwayCompletionPercent = %v, want 50.00", got.PathwayCompletionPercent)
	}
}

func TestComputeRollup_RepeatedFractions(t *testing.T) {
	// weight 2 at 100 plus weight 1 at 0 is 200/3
	pathwayID := uuid.New()
	a := activity(pathwayID, 2)
	b := activity(pathwayID, 1)
	f := newRollupFixture(t)
	f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {a, b}}
	f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID

	f.stateRepo.set(completeState(f.enrollmentID, a.ID, 100, time.Now().UTC()))
	f.stateRepo.set(progressState(f.enrollmentID, b.ID, 0))

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	if got.PathwayCompletionPercent != 66.67 {
		t.Fatalf("PathwayCompletionPercent = %v, want 66.67", got.PathwayCompletionPercent)
	}

	// recomputing with unchanged inputs persists the same value
	again, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("second ComputeRollup: %v", err)
	}
	if again.PathwayCompletionPercent != got.PathwayCompletionPercent {
		t.Fatalf("recompute changed the percent: %v then %v", got.PathwayCompletionPercent, again.PathwayCompletionPercent)
	}
	if len(f.rollupRepo.rows) != 1 {
		t.Fatalf("expected a single cached row per enrollment, got %d", len(f.rollupRepo.rows))
	}
	if f.rollupRepo.upserts != 2 {
		t.Fatalf("upserts = %d, want 2", f.rollupRepo.upserts)
	}
}

func TestComputeRollup_NoPathwayYieldsZero(t *testing.T) {
	f := newRollupFixture(t)
	f.enrollmentRepo.rows[f.enrollmentID].PathwayID = nil

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	if got.PathwayCompletionPercent != 0 || got.TrackCompletionPercent != 0 {
		t.Fatalf("got %v/%v, want 0.00/0.00", got.PathwayCompletionPercent, got.TrackCompletionPercent)
	}
	if f.rollupRepo.upserts != 1 {
		t.Fatalf("zero rollup must still be persisted")
	}
}

func TestComputeRollup_EmptyPathwayYieldsZero(t *testing.T) {
	f := newRollupFixture(t)

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	if got.PathwayCompletionPercent != 0 {
		t.Fatalf("PathwayCompletionPercent = %v, want 0", got.PathwayCompletionPercent)
	}
}

func TestComputeRollup_RemovedActivitiesExcluded(t *testing.T) {
	pathwayID := uuid.New()
	a := activity(pathwayID, 1)
	removed := activity(pathwayID, 5)
	removed.Status = types.ActivityStatusRemoved
	f := newRollupFixture(t)
	f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {a, removed}}
	f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID

	f.stateRepo.set(completeState(f.enrollmentID, a.ID, 100, time.Now().UTC()))
	f.stateRepo.set(progressState(f.enrollmentID, removed.ID, 0))

	got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
	if err != nil {
		t.Fatalf("ComputeRollup: %v", err)
	}
	if got.PathwayCompletionPercent != 100 {
		t.Fatalf("PathwayCompletionPercent = %v, want 100 with the removed activity excluded", got.PathwayCompletionPercent)
	}
}

func TestComputeRollup_UnknownEnrollment(t *testing.T) {
	f := newRollupFixture(t)
	_, err := f.svc.ComputeRollup(context.Background(), uuid.New())
	if !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("err = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestComputeRollup_LiveProviderFallback(t *testing.T) {
	pathwayID := uuid.New()
	external := activity(pathwayID, 1)
	external.ActivityType = types.ActivityTypeExternalCourse
	external.ExternalRef = "course-17"

	t.Run("provider percent is used when no state row exists", func(t *testing.T) {
		f := newRollupFixture(t)
		f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {external}}
		f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID
		provider := &fakeProvider{percent: 40}
		f.registry.Register(types.ActivityTypeExternalCourse, provider)

		got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("ComputeRollup: %v", err)
		}
		if got.PathwayCompletionPercent != 40 {
			t.Fatalf("PathwayCompletionPercent = %v, want 40", got.PathwayCompletionPercent)
		}
		if provider.calls != 1 {
			t.Fatalf("provider calls = %d, want 1", provider.calls)
		}
	})

	t.Run("a state row suppresses the provider", func(t *testing.T) {
		f := newRollupFixture(t)
		f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {external}}
		f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID
		provider := &fakeProvider{percent: 40}
		f.registry.Register(types.ActivityTypeExternalCourse, provider)
		f.stateRepo.set(progressState(f.enrollmentID, external.ID, 75))

		got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("ComputeRollup: %v", err)
		}
		if got.PathwayCompletionPercent != 75 {
			t.Fatalf("PathwayCompletionPercent = %v, want 75", got.PathwayCompletionPercent)
		}
		if provider.calls != 0 {
			t.Fatalf("provider must not be consulted when a state row exists")
		}
	})

	t.Run("provider failure counts as zero", func(t *testing.T) {
		f := newRollupFixture(t)
		f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {external}}
		f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID
		f.registry.Register(types.ActivityTypeExternalCourse, &fakeProvider{err: errFakeDown})

		got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("ComputeRollup: %v", err)
		}
		if got.PathwayCompletionPercent != 0 {
			t.Fatalf("PathwayCompletionPercent = %v, want 0 on provider failure", got.PathwayCompletionPercent)
		}
	})

	t.Run("unregistered type counts as zero", func(t *testing.T) {
		f := newRollupFixture(t)
		f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {external}}
		f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID

		got, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("ComputeRollup: %v", err)
		}
		if got.PathwayCompletionPercent != 0 {
			t.Fatalf("PathwayCompletionPercent = %v, want 0 without a provider", got.PathwayCompletionPercent)
		}
	})
}

func TestComputeRollup_PersistFailure(t *testing.T) {
	f := newRollupFixture(t)
	f.rollupRepo.upsertErr = errFakeDown
	if _, err := f.svc.ComputeRollup(context.Background(), f.enrollmentID); err == nil {
		t.Fatalf("expected persistence error")
	}
}

func TestGetRollup(t *testing.T) {
	t.Run("returns the cached row without recomputing", func(t *testing.T) {
		f := newRollupFixture(t)
		cached := &types.CompletionRollup{
			EnrollmentID:             f.enrollmentID,
			PathwayCompletionPercent: 33.33,
			TrackCompletionPercent:   33.33,
			LastComputedAt:           time.Now().UTC().Add(-time.Hour),
		}
		f.rollupRepo.rows[f.enrollmentID] = cached

		got, err := f.svc.GetRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("GetRollup: %v", err)
		}
		if got != cached {
			t.Fatalf("expected the cached row back unchanged")
		}
		if f.rollupRepo.upserts != 0 {
			t.Fatalf("read path must not recompute")
		}
	})

	t.Run("computes once when no row exists yet", func(t *testing.T) {
		f := newRollupFixture(t)
		got, err := f.svc.GetRollup(context.Background(), f.enrollmentID)
		if err != nil {
			t.Fatalf("GetRollup: %v", err)
		}
		if got == nil || f.rollupRepo.upserts != 1 {
			t.Fatalf("expected an initial compute to be persisted")
		}
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		f := newRollupFixture(t)
		if _, err := f.svc.GetRollup(context.Background(), uuid.New()); !errors.Is(err, ErrEnrollmentNotFound) {
			t.Fatalf("want ErrEnrollmentNotFound")
		}
	})
}

func TestOnRecomputeRequested(t *testing.T) {
	t.Run("recomputes and persists", func(t *testing.T) {
		pathwayID := uuid.New()
		a := activity(pathwayID, 2)
		b := activity(pathwayID, 1)
		f := newRollupFixture(t)
		f.activityRepo.byPathway = map[uuid.UUID][]*types.Activity{pathwayID: {a, b}}
		f.enrollmentRepo.rows[f.enrollmentID].PathwayID = &pathwayID
		f.stateRepo.set(completeState(f.enrollmentID, a.ID, 100, time.Now().UTC()))

		if err := f.svc.OnRecomputeRequested(context.Background(), signal.Event{EnrollmentID: f.enrollmentID}); err != nil {
			t.Fatalf("OnRecomputeRequested: %v", err)
		}
		row := f.rollupRepo.rows[f.enrollmentID]
		if row == nil || row.PathwayCompletionPercent != 66.67 {
			t.Fatalf("rollup row = %+v, want 66.67", row)
		}
	})

	t.Run("unknown enrollment is swallowed", func(t *testing.T) {
		f := newRollupFixture(t)
		if err := f.svc.OnRecomputeRequested(context.Background(), signal.Event{EnrollmentID: uuid.New()}); err != nil {
			t.Fatalf("a vanished enrollment must not fail the consumer: %v", err)
		}
	})

	t.Run("persistence failure propagates", func(t *testing.T) {
		f := newRollupFixture(t)
		f.rollupRepo.upsertErr = errFakeDown
		if err := f.svc.OnRecomputeRequested(context.Background(), signal.Event{EnrollmentID: f.enrollmentID}); err == nil {
			t.Fatalf("expected persistence error to propagate")
		}
	})
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{200.0 / 3.0, 66.67},
		{72.5, 72.5},
		{99.994, 99.99},
		{99.996, 100},
	}
	for _, tc := range tests {
		if got := roundPercent(tc.in); got != tc.want {
			t.Fatalf("roundPercent(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
