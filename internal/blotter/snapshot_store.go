package blotter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore persists registry snapshots in Redis so a session survives
// client reloads and short server restarts. It is continuity storage, not the
// durable record: the per-user Postgres document remains the cross-device
// source of truth.
type SnapshotStore struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSnapshotStore creates a snapshot store with the given retention.
func NewSnapshotStore(redisClient *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "blotter:session:",
	}
}

// Save writes the user's registry snapshot.
func (s *SnapshotStore) Save(ctx context.Context, userID string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize registry snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, s.prefix+userID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store registry snapshot: %w", err)
	}
	return nil
}

// Load fetches the user's registry snapshot. The second return is false when
// no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, userID string) (State, bool, error) {
	data, err := s.redis.Get(ctx, s.prefix+userID).Result()
	if err == redis.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("failed to read registry snapshot: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return State{}, false, fmt.Errorf("failed to decode registry snapshot: %w", err)
	}
	return state, true, nil
}

// Delete removes the user's snapshot. Called on sign-out so nothing of the
// previous user's session stays reachable.
func (s *SnapshotStore) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.prefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete registry snapshot: %w", err)
	}
	return nil
}
