// Package revision stages AI-generated workout revisions until the owner
// accepts or discards them. A staged revision is ephemeral: it lives outside
// the workout tree and expires on its own if never acted on.
package revision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"liftlog/api/internal/store"
)

// ErrNotFound means the revision was never staged, already consumed, or
// expired.
var ErrNotFound = errors.New("revision not found or expired")

// Pending is one staged revision awaiting a decision.
type Pending struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"owner_id"`
	WorkoutID int64               `json:"workout_id"`
	Model     string              `json:"model"`
	Schema    store.WorkoutSchema `json:"schema"`
	CreatedAt time.Time           `json:"created_at"`
}

// RedisStore keeps pending revisions in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: "revision:", ttl: ttl}
}

func (s *RedisStore) key(ownerID string, workoutID int64, revisionID string) string {
	return fmt.Sprintf("%s%s:%d:%s", s.prefix, ownerID, workoutID, revisionID)
}

func (s *RedisStore) Stage(ctx context.Context, pending Pending) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	key := s.key(pending.OwnerID, pending.WorkoutID, pending.ID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("stage revision: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, ownerID string, workoutID int64, revisionID string) (Pending, error) {
	data, err := s.client.Get(ctx, s.key(ownerID, workoutID, revisionID)).Result()
	if errors.Is(err, redis.Nil) {
		return Pending{}, ErrNotFound
	}
	if err != nil {
		return Pending{}, fmt.Errorf("get revision: %w", err)
	}

	var pending Pending
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return Pending{}, fmt.Errorf("unmarshal revision: %w", err)
	}
	return pending, nil
}

func (s *RedisStore) Discard(ctx context.Context, ownerID string, workoutID int64, revisionID string) error {
	if err := s.client.Del(ctx, s.key(ownerID, workoutID, revisionID)).Err(); err != nil {
		return fmt.Errorf("discard revision: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
