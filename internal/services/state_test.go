package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

type fakeBus struct {
	events     []signal.Event
	publishErr error
}

func (b *fakeBus) Publish(_ context.Context, ev signal.Event) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *fakeBus) StartForwarder(_ context.Context, _ signal.Handler) error { return nil }
func (b *fakeBus) Close() error                                             { return nil }

func TestRecordState(t *testing.T) {
	enrollmentID := uuid.New()
	activityID := uuid.New()

	t.Run("upserts and publishes a recompute event", func(t *testing.T) {
		stateRepo := newFakeActivityStateRepo()
		bus := &fakeBus{}
		svc := NewActivityStateService(nil, testLogger(t), stateRepo, bus)

		row, err := svc.RecordState(context.Background(), enrollmentID, activityID, 40, types.CompletionStatusInProgress, nil)
		if err != nil {
			t.Fatalf("RecordState: %v", err)
		}
		if row.CompletionPercent != 40 || row.CompletionStatus != types.CompletionStatusInProgress {
			t.Fatalf("row = %+v", row)
		}
		if stateRepo.upserts != 1 {
			t.Fatalf("upserts = %d, want 1", stateRepo.upserts)
		}
		if len(bus.events) != 1 || bus.events[0].EnrollmentID != enrollmentID {
			t.Fatalf("events = %v, want one for the enrollment", bus.events)
		}
	})

	t.Run("completion without a timestamp defaults to now", func(t *testing.T) {
		stateRepo := newFakeActivityStateRepo()
		svc := NewActivityStateService(nil, testLogger(t), stateRepo, &fakeBus{})

		before := time.Now().UTC()
		row, err := svc.RecordState(context.Background(), enrollmentID, activityID, 100, types.CompletionStatusComplete, nil)
		if err != nil {
			t.Fatalf("RecordState: %v", err)
		}
		if row.CompletedAt == nil || row.CompletedAt.Before(before) {
			t.Fatalf("CompletedAt = %v, want a fresh timestamp", row.CompletedAt)
		}
	})

	t.Run("completion keeps a supplied timestamp", func(t *testing.T) {
		stateRepo := newFakeActivityStateRepo()
		svc := NewActivityStateService(nil, testLogger(t), stateRepo, &fakeBus{})

		at := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)
		row, err := svc.RecordState(context.Background(), enrollmentID, activityID, 100, types.CompletionStatusComplete, &at)
		if err != nil {
			t.Fatalf("RecordState: %v", err)
		}
		if row.CompletedAt == nil || !row.CompletedAt.Equal(at) {
			t.Fatalf("CompletedAt = %v, want %v", row.CompletedAt, at)
		}
	})

	t.Run("non-complete status clears completed_at", func(t *testing.T) {
		stateRepo := newFakeActivityStateRepo()
		svc := NewActivityStateService(nil, testLogger(t), stateRepo, &fakeBus{})

		at := time.Now().UTC()
		row, err := svc.RecordState(context.Background(), enrollmentID, activityID, 80, types.CompletionStatusInProgress, &at)
		if err != nil {
			t.Fatalf("RecordState: %v", err)
		}
		if row.CompletedAt != nil {
			t.Fatalf("CompletedAt = %v, want nil for in_progress", row.CompletedAt)
		}
	})

	t.Run("publish failure still leaves the state written", func(t *testing.T) {
		stateRepo := newFakeActivityStateRepo()
		bus := &fakeBus{publishErr: errFakeDown}
		svc := NewActivityStateService(nil, testLogger(t), stateRepo, bus)

		row, err := svc.RecordState(context.Background(), enrollmentID, activityID, 100, types.CompletionStatusComplete, nil)
		if err == nil {
			t.Fatalf("expected publish error")
		}
		if row == nil {
			t.Fatalf("expected the written row back alongside the error")
		}
		if stateRepo.upserts != 1 {
			t.Fatalf("upserts = %d, want 1", stateRepo.upserts)
		}
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewActivityStateService(nil, testLogger(t), newFakeActivityStateRepo(), &fakeBus{})
		cases := []struct {
			name         string
			enrollmentID uuid.UUID
			activityID   uuid.UUID
			percent      int
			status       string
		}{
			{"nil enrollment", uuid.Nil, activityID, 50, types.CompletionStatusInProgress},
			{"nil activity", enrollmentID, uuid.Nil, 50, types.CompletionStatusInProgress},
			{"negative percent", enrollmentID, activityID, -1, types.CompletionStatusInProgress},
			{"percent above 100", enrollmentID, activityID, 101, types.CompletionStatusInProgress},
			{"unknown status", enrollmentID, activityID, 50, "done"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := svc.RecordState(context.Background(), tc.enrollmentID, tc.activityID, tc.percent, tc.status, nil); err == nil {
					t.Fatalf("expected validation error")
				}
			})
		}
	})
}

func TestRecordState_SynchronousDelivery(t *testing.T) {
	// with the in-process bus, the rollup consumer runs before RecordState
	// returns
	enrollmentID := uuid.New()
	pathwayID := uuid.New()
	act := activity(pathwayID, 1)

	stateRepo := newFakeActivityStateRepo()
	rollupRepo := newFakeRollupRepo()
	enrollmentRepo := &fakeEnrollmentRepo{rows: map[uuid.UUID]*types.Enrollment{
		enrollmentID: {ID: enrollmentID, UserID: uuid.New(), TrackID: uuid.New(), PathwayID: &pathwayID},
	}}
	activityRepo := &fakeActivityRepo{byPathway: map[uuid.UUID][]*types.Activity{pathwayID: {act}}}

	log := testLogger(t)
	rollup := NewRollupService(nil, log, enrollmentRepo, activityRepo, stateRepo, rollupRepo, NewProviderRegistry(), time.Second)

	bus := signal.NewInProcessBus(log)
	if err := bus.StartForwarder(context.Background(), rollup.OnRecomputeRequested); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	svc := NewActivityStateService(nil, log, stateRepo, bus)
	if _, err := svc.RecordState(context.Background(), enrollmentID, act.ID, 100, types.CompletionStatusComplete, nil); err != nil {
		t.Fatalf("RecordState: %v", err)
	}

	row := rollupRepo.rows[enrollmentID]
	if row == nil || row.PathwayCompletionPercent != 100 {
		t.Fatalf("rollup row = %+v, want 100 immediately after the write", row)
	}
}

func TestGetState(t *testing.T) {
	enrollmentID := uuid.New()
	activityID := uuid.New()
	stateRepo := newFakeActivityStateRepo()
	svc := NewActivityStateService(nil, testLogger(t), stateRepo, &fakeBus{})

	got, err := svc.GetState(context.Background(), enrollmentID, activityID)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for an unrecorded pair", got)
	}

	stateRepo.set(progressState(enrollmentID, activityID, 30))
	got, err = svc.GetState(context.Background(), enrollmentID, activityID)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got == nil || got.CompletionPercent != 30 {
		t.Fatalf("got %+v, want the recorded row", got)
	}
}
