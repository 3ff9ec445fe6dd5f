package repositories

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UnreadCounterStore tracks per-user unread notification counts in Redis.
// Increment and reset are single atomic commands so that concurrent feed
// fetches and deliveries for the same user never race.
type UnreadCounterStore interface {
	Increment(ctx context.Context, userID uint) error
	Reset(ctx context.Context, userID uint) error
	Get(ctx context.Context, userID uint) (int64, error)
}

// RedisUnreadCounterStore implements UnreadCounterStore on Redis
type RedisUnreadCounterStore struct {
	client *redis.Client
}

// NewRedisUnreadCounterStore creates a new RedisUnreadCounterStore
func NewRedisUnreadCounterStore(client *redis.Client) *RedisUnreadCounterStore {
	return &RedisUnreadCounterStore{client: client}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// Increment bumps the user's unread counter by one
func (s *RedisUnreadCounterStore) Increment(ctx context.Context, userID uint) error {
	return s.client.Incr(ctx, unreadKey(userID)).Err()
}

// Reset sets the user's unread counter back to zero. A missing key reads as
// zero, so deleting it is the atomic set-to-zero.
func (s *RedisUnreadCounterStore) Reset(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, unreadKey(userID)).Err()
}

// Get reads the user's unread counter
func (s *RedisUnreadCounterStore) Get(ctx context.Context, userID uint) (int64, error) {
	val, err := s.client.Get(ctx, unreadKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}
