package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bitable-intake/internal/common/database"
)

// RedisTokenStore shares the tenant token between service instances.
// The key expires together with the token.
type RedisTokenStore struct {
	client *database.RedisClient
	key    string
	clock  Clock
}

func NewRedisTokenStore(client *database.RedisClient, key string, clock Clock) *RedisTokenStore {
	if clock == nil {
		clock = time.Now
	}
	return &RedisTokenStore{client: client, key: key, clock: clock}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*Token, error) {
	raw, err := s.client.Get(ctx, s.key)
	if database.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token from redis: %w", err)
	}

	var tok Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &tok, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token Token) error {
	ttl := token.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, s.key, string(data), ttl); err != nil {
		return fmt.Errorf("failed to write token to redis: %w", err)
	}
	return nil
}
