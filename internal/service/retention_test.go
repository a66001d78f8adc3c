package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"purpleair_display/internal/models"
)

func TestRetentionService_Prune(t *testing.T) {
	t.Parallel()

	readings := &readingRepoStub{deleted: 12}
	events := &fakeEventRepo{deleted: 3}
	svc := NewRetentionService(readings, events, 48*time.Hour, "@daily", nil)

	now := time.Date(2025, 7, 10, 3, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	res, err := svc.Prune(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCutoff := time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC)
	if !res.Cutoff.Equal(wantCutoff) {
		t.Fatalf("cutoff: got %v; want %v", res.Cutoff, wantCutoff)
	}
	if !readings.cutoff.Equal(wantCutoff) || !events.cutoff.Equal(wantCutoff) {
		t.Fatalf("repos got cutoffs %v / %v", readings.cutoff, events.cutoff)
	}
	if res.Readings != 12 || res.Events != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := events.types(); len(got) != 1 || got[0] != models.EventPrune {
		t.Fatalf("events: got %v", got)
	}
}

func TestRetentionService_Prune_Errors(t *testing.T) {
	t.Parallel()

	t.Run("readings", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventRepo{}
		svc := NewRetentionService(&readingRepoStub{deleteErr: errors.New("locked")}, events, time.Hour, "@daily", nil)
		if _, err := svc.Prune(context.Background(), time.Now()); err == nil {
			t.Fatalf("expected error")
		}
		if len(events.appended) != 0 {
			t.Fatalf("no prune event expected on failure")
		}
	})

	t.Run("events", func(t *testing.T) {
		t.Parallel()
		svc := NewRetentionService(&readingRepoStub{}, &fakeEventRepo{deleteErr: errors.New("locked")}, time.Hour, "@daily", nil)
		if _, err := svc.Prune(context.Background(), time.Now()); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestRetentionService_StartStop(t *testing.T) {
	t.Parallel()

	svc := NewRetentionService(&readingRepoStub{}, &fakeEventRepo{}, time.Hour, "@hourly", nil)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("second Start must be a no-op: %v", err)
	}
	svc.Stop()
	svc.Stop()

	bad := NewRetentionService(&readingRepoStub{}, &fakeEventRepo{}, time.Hour, "every tuesday", nil)
	if err := bad.Start(); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
}
