package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/agame/internal/dependencies/clock"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/storage"
)

// addPointsScript increments the counter only when both hashes exist, so an
// increment can never resurrect a deleted user. Returns nil when missing and
// overflowReply when the total would leave int64 range. Lua numbers are
// doubles, so totals within rounding distance of the limit are refused too.
var addPointsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('EXISTS', KEYS[2]) == 0 then
	return false
end
local current = tonumber(redis.call('HGET', KEYS[2], 'points') or '0')
if current + tonumber(ARGV[1]) >= 9223372036854775807 then
	return -1
end
local total = redis.call('HINCRBY', KEYS[2], 'points', ARGV[1])
redis.call('HSET', KEYS[2], 'updated_at', ARGV[2])
return total
`)

// overflowReply is the script's answer for an increment that would overflow
const overflowReply = -1

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	clock  clock.Clock
}

// New creates a new Redis storage instance
func New(cfg Config, clk clock.Clock) (*Storage, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, clk), nil
}

// NewWithClient creates a Redis storage with an existing client
func NewWithClient(client *redis.Client, clk clock.Clock) *Storage {
	return &Storage{
		client: client,
		clock:  clk,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	now := s.clock.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	userFields := map[string]any{
		fieldCreatedAt: user.CreatedAt.Format(time.RFC3339Nano),
	}
	if user.Name != nil {
		userFields[fieldName] = *user.Name
	}

	// MULTI/EXEC so both hashes become visible together
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, userKey(user.ID), userFields)
		pipe.HSet(ctx, accountKey(user.ID), map[string]any{
			fieldPoints:    0,
			fieldUpdatedAt: now.Format(time.RFC3339Nano),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	pipe := s.client.Pipeline()
	userCmd := pipe.HGetAll(ctx, userKey(id))
	accountCmd := pipe.HGetAll(ctx, accountKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	userFields := userCmd.Val()
	accountFields := accountCmd.Val()
	if len(userFields) == 0 || len(accountFields) == 0 {
		return nil, model.ErrUserNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, userFields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", id, err)
	}
	points, err := strconv.ParseInt(accountFields[fieldPoints], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse points for %s: %w", id, err)
	}

	profile := &model.Profile{
		UserID:    id,
		Points:    points,
		CreatedAt: createdAt,
	}
	if name, ok := userFields[fieldName]; ok {
		profile.Name = &name
	}
	return profile, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	return s.client.Del(ctx, accountKey(id), userKey(id)).Err()
}

// Points operations

func (s *Storage) AddPoints(ctx context.Context, id model.UserID, amount int64) (int64, error) {
	keys := []string{userKey(id), accountKey(id)}
	total, err := addPointsScript.Run(ctx, s.client, keys, amount, s.clock.Now().Format(time.RFC3339Nano)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrUserNotFound
		}
		if strings.Contains(err.Error(), "would overflow") {
			return 0, model.ErrPointsOverflow
		}
		return 0, fmt.Errorf("add points: %w", err)
	}
	if total == overflowReply {
		return 0, model.ErrPointsOverflow
	}
	return total, nil
}
