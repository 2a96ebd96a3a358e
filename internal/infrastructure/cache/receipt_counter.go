package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tutorcenter/backend/internal/domain/finance"
)

const defaultReceiptKeyPrefix = "receipt:"

// RedisReceiptCounter implements finance.ReceiptCounter with INCR, which is
// atomic across every process sharing the Redis instance
type RedisReceiptCounter struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisReceiptCounter creates a counter on an existing client
func NewRedisReceiptCounter(client redis.Cmdable, keyPrefix string) *RedisReceiptCounter {
	if keyPrefix == "" {
		keyPrefix = defaultReceiptKeyPrefix
	}
	return &RedisReceiptCounter{client: client, keyPrefix: keyPrefix}
}

// Next increments and returns the counter of one scope, starting at 1
func (c *RedisReceiptCounter) Next(ctx context.Context, scope finance.ReceiptScope) (int64, error) {
	key := c.keyPrefix + scope.Key()
	value, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment receipt counter %s: %w", key, err)
	}
	return value, nil
}

var _ finance.ReceiptCounter = (*RedisReceiptCounter)(nil)
