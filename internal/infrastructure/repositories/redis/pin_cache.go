package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

const pinKeyPrefix = "airlink:pin:"

// PINCache maps active session PINs to session IDs. Entries carry the session
// deadline as TTL so stale PINs age out on their own; the session repository
// remains the source of truth on a miss.
type PINCache struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewPINCache(client *redis.Client, logger *zap.SugaredLogger) ports.PINCache {
	return &PINCache{client: client, logger: logger}
}

func (c *PINCache) Get(ctx context.Context, pin string) (domain.SessionID, bool) {
	val, err := c.client.Get(ctx, pinKeyPrefix+pin).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnw("pin cache get failed", "error", err)
		}
		return "", false
	}
	return domain.SessionID(val), true
}

func (c *PINCache) Set(ctx context.Context, pin string, id domain.SessionID, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, pinKeyPrefix+pin, string(id), ttl).Err(); err != nil {
		c.logger.Warnw("pin cache set failed", "error", err)
	}
}

func (c *PINCache) Delete(ctx context.Context, pin string) {
	if err := c.client.Del(ctx, pinKeyPrefix+pin).Err(); err != nil {
		c.logger.Warnw("pin cache delete failed", "error", err)
	}
}
