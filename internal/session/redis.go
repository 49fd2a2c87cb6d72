package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore persists session state as JSON values with no TTL. Records are
// overwritten in place; a disconnect keeps the record around so the
// explicit-disconnect flag survives.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (State, error) {
	raw, err := s.client.Get(ctx, keyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", deviceID, err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", deviceID, err)
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, deviceID string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+deviceID, raw, 0).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", deviceID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, keyPrefix+deviceID).Err()
}
