package revision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"liftlog/api/internal/store"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rs, err := NewRedisStore("redis://"+s.Addr(), ttl)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs, s
}

func samplePending() Pending {
	return Pending{
		ID:        "rev-1",
		OwnerID:   "user-1",
		WorkoutID: 42,
		Model:     "gpt-4o-mini",
		Schema: store.WorkoutSchema{
			Name: "Revised Day",
			Blocks: []store.BlockSchema{
				{Name: "Main", Exercises: []store.ExerciseSchema{
					{Name: "Squat", Sets: []store.SetSchema{{Weight: 100.0, Reps: 5}}},
				}},
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestStageAndGet(t *testing.T) {
	rs, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	pending := samplePending()
	if err := rs.Stage(ctx, pending); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := rs.Get(ctx, "user-1", 42, "rev-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != pending.ID || got.Model != pending.Model {
		t.Errorf("unexpected pending: %+v", got)
	}
	if got.Schema.Name != "Revised Day" || len(got.Schema.Blocks) != 1 {
		t.Errorf("schema did not round-trip: %+v", got.Schema)
	}
}

func TestGetScopedToOwnerAndWorkout(t *testing.T) {
	rs, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	if err := rs.Stage(ctx, samplePending()); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if _, err := rs.Get(ctx, "other-user", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other owner, got %v", err)
	}
	if _, err := rs.Get(ctx, "user-1", 43, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other workout, got %v", err)
	}
}

func TestExpiredRevisionIsGone(t *testing.T) {
	rs, s := setupTestRedis(t, time.Second)
	ctx := context.Background()

	if err := rs.Stage(ctx, samplePending()); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	s.FastForward(2 * time.Second)

	if _, err := rs.Get(ctx, "user-1", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestDiscard(t *testing.T) {
	rs, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	if err := rs.Stage(ctx, samplePending()); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := rs.Discard(ctx, "user-1", 42, "rev-1"); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := rs.Get(ctx, "user-1", 42, "rev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after discard, got %v", err)
	}
}
