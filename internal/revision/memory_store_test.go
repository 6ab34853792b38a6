package revision

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreStageGetDiscard(t *testing.T) {
	ms := NewMemoryStore(time.Hour)
	ctx := context.Background()

	pending := samplePending()
	if err := ms.Stage(ctx, pending); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := ms.Get(ctx, "user-1", 42, "rev-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != pending.ID || got.Schema.Name != pending.Schema.Name {
		t.Errorf("unexpected pending: %+v", got)
	}

	if _, err := ms.Get(ctx, "other-user", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other owner, got %v", err)
	}

	if err := ms.Discard(ctx, "user-1", 42, "rev-1"); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := ms.Get(ctx, "user-1", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after discard, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ms := NewMemoryStore(time.Minute)
	current := time.Now()
	ms.now = func() time.Time { return current }

	ctx := context.Background()
	if err := ms.Stage(ctx, samplePending()); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	current = current.Add(30 * time.Second)
	if _, err := ms.Get(ctx, "user-1", 42, "rev-1"); err != nil {
		t.Fatalf("expected revision still staged, got %v", err)
	}

	current = current.Add(time.Minute)
	if _, err := ms.Get(ctx, "user-1", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}
