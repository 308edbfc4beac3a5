package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JanConnect/JanConnect-sub001/internal/cache"
)

// RedisKeyPrefix namespaces interaction blobs in Redis
const RedisKeyPrefix = "civicfeed:interactions:"

// RedisStore keeps each user's state as a JSON string under one key
type RedisStore struct {
	client *cache.RedisClient
}

// NewRedisStore creates a store backed by client
func NewRedisStore(client *cache.RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Pinger = (*RedisStore)(nil)
)

func redisKey(userID string) string {
	return RedisKeyPrefix + userID
}

func (r *RedisStore) Load(ctx context.Context, userID string) (*State, error) {
	defer observe("redis", "load", time.Now())

	raw, err := r.client.Get(ctx, redisKey(userID))
	if errors.Is(err, cache.ErrNil) {
		countOp("redis", "load", nil)
		return NewState(), nil
	}
	if err != nil {
		countOp("redis", "load", err)
		return nil, fmt.Errorf("failed to load interaction state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		countOp("redis", "load", err)
		return nil, fmt.Errorf("failed to decode interaction state: %w", err)
	}
	countOp("redis", "load", nil)
	return state.normalize(), nil
}

func (r *RedisStore) Save(ctx context.Context, userID string, state *State) error {
	defer observe("redis", "save", time.Now())

	data, err := json.Marshal(state)
	if err != nil {
		countOp("redis", "save", err)
		return fmt.Errorf("failed to encode interaction state: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(userID), data); err != nil {
		countOp("redis", "save", err)
		return fmt.Errorf("failed to save interaction state: %w", err)
	}
	countOp("redis", "save", nil)
	return nil
}

func (r *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, redisKey(userID)); err != nil {
		countOp("redis", "reset", err)
		return fmt.Errorf("failed to reset interaction state: %w", err)
	}
	countOp("redis", "reset", nil)
	return nil
}

// Ping checks the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
