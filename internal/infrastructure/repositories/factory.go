package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"airlink/internal/core/ports"
	"airlink/internal/infrastructure/repositories/memory"
	"airlink/internal/infrastructure/repositories/postgres"
	redisrepo "airlink/internal/infrastructure/repositories/redis"
	"airlink/pkg/config"
)

// RepositoryFactory wires the storage backends: Postgres when a database URL
// is configured, in-memory otherwise (dev and tests). Redis is optional and
// only accelerates PIN lookups and scheduler locking.
type RepositoryFactory struct {
	pool        *pgxpool.Pool
	redisClient *goredis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{logger: logger}

	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			ApplicationName: cfg.App.Name,
		})
		if err != nil {
			return nil, err
		}
		factory.pool = pool
		logger.Info("using postgres repositories")
	} else {
		logger.Info("no database configured, using memory repositories")
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, continuing without PIN cache",
				"error", err,
			)
		} else {
			factory.redisClient = client
		}
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateLicenseRepository() ports.LicenseRepository {
	if f.pool != nil {
		return postgres.NewLicenseRepository(f.pool)
	}
	return memory.NewMemoryLicenseRepository()
}

func (f *RepositoryFactory) CreateSessionRepository() ports.SessionRepository {
	if f.pool != nil {
		return postgres.NewSessionRepository(f.pool)
	}
	return memory.NewMemorySessionRepository()
}

func (f *RepositoryFactory) CreateListenerRepository() ports.ListenerRepository {
	if f.pool != nil {
		return postgres.NewListenerRepository(f.pool)
	}
	return memory.NewMemoryListenerRepository()
}

func (f *RepositoryFactory) CreateEventRepository() ports.EventRepository {
	if f.pool != nil {
		return postgres.NewEventRepository(f.pool)
	}
	return memory.NewMemoryEventRepository()
}

func (f *RepositoryFactory) CreateOutboxRepository() ports.OutboxRepository {
	if f.pool != nil {
		return postgres.NewOutboxRepository(f.pool)
	}
	return memory.NewMemoryOutboxRepository()
}

// CreatePINCache returns the Redis PIN cache, or nil when Redis is not
// available. The session service treats a nil cache as a pass-through.
func (f *RepositoryFactory) CreatePINCache() ports.PINCache {
	if f.redisClient != nil {
		return redisrepo.NewPINCache(f.redisClient, f.logger)
	}
	return nil
}

// RedisClient exposes the shared client for the scheduler's distributed lock.
func (f *RepositoryFactory) RedisClient() *goredis.Client {
	return f.redisClient
}

// Pool exposes the pgx pool for health checks. Nil in memory mode.
func (f *RepositoryFactory) Pool() *pgxpool.Pool {
	return f.pool
}

// Ping verifies the primary store. Memory mode always reports healthy.
func (f *RepositoryFactory) Ping(ctx context.Context) error {
	if f.pool != nil {
		return postgres.Ping(ctx, f.pool)
	}
	return nil
}

func (f *RepositoryFactory) Close() error {
	if f.pool != nil {
		f.pool.Close()
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks the optional Redis connection.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
