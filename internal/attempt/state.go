package attempt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillgauge/assessment-engine/internal/engine"
)

const defaultSessionTTL = 2 * time.Hour

// StateStore parks in-flight session snapshots in Redis between HTTP
// requests and provides a per-attempt lock so concurrent requests for
// the same attempt serialize their read-modify-write cycles.
type StateStore struct {
	redis  *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewStateStore creates a Redis-backed session store.
func NewStateStore(client *redis.Client, logger zerolog.Logger, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &StateStore{redis: client, logger: logger, ttl: ttl}
}

func sessionKey(attemptID uuid.UUID) string {
	return fmt.Sprintf("attempt:session:%s", attemptID.String())
}

// Lock acquires a short-lived lock for an attempt. Returns the unlock
// function. The lock expires after 10s as a crash guard.
func (s *StateStore) Lock(ctx context.Context, attemptID uuid.UUID) (func() error, error) {
	key := fmt.Sprintf("attempt:lock:%s", attemptID.String())
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, 10*time.Second).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("attempt busy")
	}

	unlock := func() error {
		// Lua script ensures we only delete our own lock
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.redis.Eval(ctx, script, []string{key}, lockValue).Err()
	}

	return unlock, nil
}

// SaveSession stores a session snapshot with the configured TTL.
func (s *StateStore) SaveSession(ctx context.Context, attemptID uuid.UUID, snap engine.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, sessionKey(attemptID), data, s.ttl).Err()
}

// GetSession retrieves a session snapshot, or nil when the attempt is
// unknown or expired.
func (s *StateStore) GetSession(ctx context.Context, attemptID uuid.UUID) (*engine.SessionSnapshot, error) {
	data, err := s.redis.Get(ctx, sessionKey(attemptID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var snap engine.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &snap, nil
}

// DeleteSession discards a parked session.
func (s *StateStore) DeleteSession(ctx context.Context, attemptID uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(attemptID)).Err()
}
