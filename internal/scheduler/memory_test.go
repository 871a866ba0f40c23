package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

func TestEnqueueReplacesByKey(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(fixedClock(now)), WithIDGenerator(sequentialIDs()))

	first, err := s.Enqueue(context.Background(), interfaces.JobSpec{
		Key:     "item:42:frontend",
		Type:    JobTypeFrontendDispatch,
		RunAt:   now.Add(time.Minute),
		Payload: ItemPayload(42),
	})
	if err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	second, err := s.Enqueue(context.Background(), interfaces.JobSpec{
		Key:     "item:42:frontend",
		Type:    JobTypeFrontendDispatch,
		RunAt:   now.Add(2 * time.Minute),
		Payload: ItemPayload(42),
	})
	if err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	if _, err := s.Get(context.Background(), first.ID); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected replaced job gone, got %v", err)
	}
	stored, err := s.GetByKey(context.Background(), "item:42:frontend")
	if err != nil {
		t.Fatalf("expected job by key, got %v", err)
	}
	if stored.ID != second.ID {
		t.Fatalf("expected key to resolve to %s, got %s", second.ID, stored.ID)
	}
}

func TestEnqueueRequiresRunAt(t *testing.T) {
	s := NewInMemory()
	if _, err := s.Enqueue(context.Background(), interfaces.JobSpec{Type: JobTypeCloudflarePurge}); err == nil {
		t.Fatal("expected error for zero run_at")
	}
}

func TestListDueOrdersAndLimits(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(fixedClock(now)), WithIDGenerator(sequentialIDs()))

	for i, offset := range []time.Duration{3 * time.Minute, time.Minute, 2 * time.Minute} {
		if _, err := s.Enqueue(context.Background(), interfaces.JobSpec{
			Key:   fmt.Sprintf("item:%d:frontend", i),
			Type:  JobTypeFrontendDispatch,
			RunAt: now.Add(offset),
		}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	due, err := s.ListDue(context.Background(), now.Add(2*time.Minute), 0)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due jobs, got %d", len(due))
	}
	if !due[0].RunAt.Before(due[1].RunAt) {
		t.Fatalf("expected due jobs ordered by run_at, got %v then %v", due[0].RunAt, due[1].RunAt)
	}

	limited, err := s.ListDue(context.Background(), now.Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit respected, got %d", len(limited))
	}
}

func TestMarkFailedRetriesUntilLimit(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(fixedClock(now)), WithDefaultMaxAttempts(2))

	job, err := s.Enqueue(context.Background(), interfaces.JobSpec{
		Type:  JobTypeCloudflarePurge,
		RunAt: now,
	})
	if err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	if err := s.MarkFailed(context.Background(), job.ID, errors.New("boom")); err != nil {
		t.Fatalf("expected mark failed to succeed, got %v", err)
	}
	stored, _ := s.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusPending || stored.Attempt != 1 {
		t.Fatalf("expected pending retry, got %+v", stored)
	}
	if stored.LastError != "boom" {
		t.Fatalf("expected last error recorded, got %q", stored.LastError)
	}

	if err := s.MarkFailed(context.Background(), job.ID, errors.New("boom again")); err != nil {
		t.Fatalf("expected mark failed to succeed, got %v", err)
	}
	stored, _ = s.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected failed after max attempts, got %s", stored.Status)
	}
}

func TestMarkDoneReleasesKey(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(fixedClock(now)))

	job, err := s.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   "item:7:cloudflare",
		Type:  JobTypeCloudflarePurge,
		RunAt: now,
	})
	if err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if err := s.MarkDone(context.Background(), job.ID); err != nil {
		t.Fatalf("expected mark done to succeed, got %v", err)
	}
	if _, err := s.GetByKey(context.Background(), "item:7:cloudflare"); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected key released, got %v", err)
	}
}

func TestItemPayloadRoundTrip(t *testing.T) {
	id, err := ItemIDFromPayload(ItemPayload(42))
	if err != nil {
		t.Fatalf("expected payload round trip, got %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestItemIDFromPayloadJSONNumbers(t *testing.T) {
	id, err := ItemIDFromPayload(map[string]any{"item_id": float64(42)})
	if err != nil {
		t.Fatalf("expected float payload accepted, got %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}

	if _, err := ItemIDFromPayload(map[string]any{}); err == nil {
		t.Fatal("expected error for missing item id")
	}
	if _, err := ItemIDFromPayload(map[string]any{"item_id": true}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
