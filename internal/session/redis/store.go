package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/session"
)

const keyPrefix = "agame:session:"

// Store keeps session records as JSON strings with a Redis TTL
type Store struct {
	client *redis.Client
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

// New creates a session store on an existing client
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func sessionKey(key string) string {
	return keyPrefix + key
}

func (s *Store) Load(ctx context.Context, key string) (*session.Data, error) {
	raw, err := s.client.Get(ctx, sessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var data session.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

func (s *Store) Save(ctx context.Context, key string, data *session.Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
