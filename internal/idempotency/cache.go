package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ledger:operation"

// OperationCache remembers operation ids whose payments are committed so that
// repeated bank deliveries can be answered without a database round trip.
// It is only ever consulted as a hint: a miss falls through to Postgres and
// a Redis outage degrades to misses.
type OperationCache struct {
	redis redis.Cmdable
	ttl   time.Duration
}

// NewOperationCache returns a cache backed by rdb. A nil rdb yields a cache
// that never hits.
func NewOperationCache(rdb redis.Cmdable, ttl time.Duration) *OperationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &OperationCache{redis: rdb, ttl: ttl}
}

// Seen reports whether operationID was recorded by Remember.
func (c *OperationCache) Seen(ctx context.Context, operationID uuid.UUID) bool {
	if c == nil || c.redis == nil {
		return false
	}
	n, err := c.redis.Exists(ctx, redisKey(operationID)).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			zap.L().Warn("redis operation lookup failed", zap.Error(err))
		}
		observability.IncrementProcessedCache("error")
		return false
	}
	if n == 0 {
		observability.IncrementProcessedCache("miss")
		return false
	}
	observability.IncrementProcessedCache("hit")
	return true
}

// Remember marks operationID as committed. Call it only after the payment
// transaction has committed.
func (c *OperationCache) Remember(ctx context.Context, operationID uuid.UUID) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, redisKey(operationID), 1, c.ttl).Err(); err != nil {
		zap.L().Warn("redis operation cache set failed", zap.Error(err), zap.String("operation_id", operationID.String()))
	}
}

func redisKey(operationID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, operationID)
}
