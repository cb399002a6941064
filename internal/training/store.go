package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionBusy is returned by Lock while another request holds the user's
// session.
var ErrSessionBusy = errors.New("training session is busy")

// SessionStore keeps one State per user. Load returns nil, nil when the user
// has no session. Lock serializes transitions for one user; the returned
// func releases it.
type SessionStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*State, error)
	Save(ctx context.Context, userID uuid.UUID, state *State) error
	Delete(ctx context.Context, userID uuid.UUID) error
	Lock(ctx context.Context, userID uuid.UUID) (func(), error)
}

// sessionLockTTL bounds how long a crashed request can block its user.
const sessionLockTTL = 15 * time.Second

// unlockScript deletes the lock only if it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisSessionStore stores states as JSON with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("training:session:%s", userID.String())
}

func sessionLockKey(userID uuid.UUID) string {
	return fmt.Sprintf("training_lock:%s", userID.String())
}

func (s *RedisSessionStore) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := sessionLockKey(userID)
	token := uuid.NewString()
	locked, err := s.client.SetNX(ctx, key, token, sessionLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to lock training session: %w", err)
	}
	if !locked {
		return nil, ErrSessionBusy
	}
	return func() {
		unlockScript.Run(context.WithoutCancel(ctx), s.client, []string{key}, token)
	}, nil
}

func (s *RedisSessionStore) Load(ctx context.Context, userID uuid.UUID) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load training session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode training session: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, userID uuid.UUID, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode training session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save training session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete training session: %w", err)
	}
	return nil
}
