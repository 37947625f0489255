package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func pairKey(enrollmentID, activityID uuid.UUID) string {
	return enrollmentID.String() + "/" + activityID.String()
}

type fakeEnrollmentRepo struct {
	rows map[uuid.UUID]*types.Enrollment
}

func (f *fakeEnrollmentRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Enrollment, error) {
	return f.rows[id], nil
}

type fakeActivityRepo struct {
	byPathway map[uuid.UUID][]*types.Activity
}

func (f *fakeActivityRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Activity, error) {
	var out []*types.Activity
	for _, list := range f.byPathway {
		for _, a := range list {
			for _, id := range ids {
				if a.ID == id {
					out = append(out, a)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) ListActiveByPathwayID(_ context.Context, _ *gorm.DB, pathwayID uuid.UUID) ([]*types.Activity, error) {
	var out []*types.Activity
	for _, a := range f.byPathway[pathwayID] {
		if a.Status == types.ActivityStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeActivityStateRepo struct {
	rows      map[string]*types.ActivityState
	upserts   int
	upsertErr error
}

func newFakeActivityStateRepo() *fakeActivityStateRepo {
	return &fakeActivityStateRepo{rows: make(map[string]*types.ActivityState)}
}

func (f *fakeActivityStateRepo) set(row *types.ActivityState) {
	f.rows[pairKey(row.EnrollmentID, row.ActivityID)] = row
}

func (f *fakeActivityStateRepo) GetByEnrollmentAndActivityID(_ context.Context, _ *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.ActivityState, error) {
	return f.rows[pairKey(enrollmentID, activityID)], nil
}

func (f *fakeActivityStateRepo) GetByEnrollmentAndActivityIDs(_ context.Context, _ *gorm.DB, enrollmentID uuid.UUID, activityIDs []uuid.UUID) ([]*types.ActivityState, error) {
	var out []*types.ActivityState
	for _, id := range activityIDs {
		if row, ok := f.rows[pairKey(enrollmentID, id)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeActivityStateRepo) GetByEnrollmentID(_ context.Context, _ *gorm.DB, enrollmentID uuid.UUID) ([]*types.ActivityState, error) {
	var out []*types.ActivityState
	for _, row := range f.rows {
		if row.EnrollmentID == enrollmentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeActivityStateRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.ActivityState) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.set(row)
	return nil
}

type fakeOverrideRepo struct {
	rows map[string][]*types.Override
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{rows: make(map[string][]*types.Override)}
}

func (f *fakeOverrideRepo) Create(_ context.Context, _ *gorm.DB, row *types.Override) (*types.Override, error) {
	key := pairKey(row.EnrollmentID, row.ActivityID)
	f.rows[key] = append([]*types.Override{row}, f.rows[key]...)
	return row, nil
}

func (f *fakeOverrideRepo) LatestByEnrollmentAndActivityID(_ context.Context, _ *gorm.DB, enrollmentID, activityID uuid.UUID) (*types.Override, error) {
	list := f.rows[pairKey(enrollmentID, activityID)]
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (f *fakeOverrideRepo) ListByEnrollmentAndActivityID(_ context.Context, _ *gorm.DB, enrollmentID, activityID uuid.UUID) ([]*types.Override, error) {
	return f.rows[pairKey(enrollmentID, activityID)], nil
}

type fakePrerequisiteRepo struct {
	groups map[uuid.UUID][]*types.PrerequisiteGroup
}

func (f *fakePrerequisiteRepo) GetGroupsByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) ([]*types.PrerequisiteGroup, error) {
	return f.groups[activityID], nil
}

type fakeDripRuleRepo struct {
	rules map[uuid.UUID][]*types.DripRule
}

func (f *fakeDripRuleRepo) GetByActivityID(_ context.Context, _ *gorm.DB, activityID uuid.UUID) ([]*types.DripRule, error) {
	return f.rules[activityID], nil
}

type fakeRollupRepo struct {
	rows      map[uuid.UUID]*types.CompletionRollup
	upserts   int
	upsertErr error
}

func newFakeRollupRepo() *fakeRollupRepo {
	return &fakeRollupRepo{rows: make(map[uuid.UUID]*types.CompletionRollup)}
}

func (f *fakeRollupRepo) GetByEnrollmentID(_ context.Context, _ *gorm.DB, enrollmentID uuid.UUID) (*types.CompletionRollup, error) {
	return f.rows[enrollmentID], nil
}

func (f *fakeRollupRepo) Upsert(_ context.Context, _ *gorm.DB, row *types.CompletionRollup) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.rows[row.EnrollmentID] = row
	return nil
}

type fakeProvider struct {
	percent int
	err     error
	calls   int
}

func (f *fakeProvider) ProgressPercent(_ context.Context, _ uuid.UUID, _ string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.percent, nil
}

func completeState(enrollmentID, activityID uuid.UUID, percent int, completedAt time.Time) *types.ActivityState {
	return &types.ActivityState{
		EnrollmentID:      enrollmentID,
		ActivityID:        activityID,
		CompletionPercent: percent,
		CompletionStatus:  types.CompletionStatusComplete,
		CompletedAt:       &completedAt,
		LastComputedAt:    completedAt,
	}
}

func progressState(enrollmentID, activityID uuid.UUID, percent int) *types.ActivityState {
	return &types.ActivityState{
		EnrollmentID:      enrollmentID,
		ActivityID:        activityID,
		CompletionPercent: percent,
		CompletionStatus:  types.CompletionStatusInProgress,
		LastComputedAt:    time.Now().UTC(),
	}
}

var errFakeDown = fmt.Errorf("backend unavailable")
