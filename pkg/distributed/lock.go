package distributed

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"airlink/pkg/utils"
)

// Lock is a best-effort distributed lock on Redis. The session sweeper takes
// it so only one replica closes expired sessions per tick.
type Lock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// NewLock creates a lock handle. Each handle carries a unique holder token so
// Release cannot drop a lock acquired by another process.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{
		client: client,
		key:    key,
		value:  utils.GenerateLockValue(),
		ttl:    ttl,
	}
}

// TryAcquire attempts to take the lock without blocking.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release frees the lock if this handle still holds it.
func (l *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Err()
}
