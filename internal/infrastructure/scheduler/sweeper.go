package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"airlink/internal/core/ports"
	"airlink/pkg/distributed"
	"airlink/pkg/utils"
)

const sweepLockKey = "airlink:lock:session-sweep"

// Sweeper periodically closes sessions that ran past their deadline. With
// Redis available it takes a distributed lock first so only one instance
// sweeps in a multi-replica deployment.
type Sweeper struct {
	sessionService ports.SessionService
	redisClient    *redis.Client
	interval       time.Duration
	logger         *zap.SugaredLogger
	stopChan       chan struct{}
}

func NewSweeper(
	sessionService ports.SessionService,
	redisClient *redis.Client,
	interval time.Duration,
	logger *zap.SugaredLogger,
) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		sessionService: sessionService,
		redisClient:    redisClient,
		interval:       interval,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.redisClient != nil {
		lock := distributed.NewLock(s.redisClient, sweepLockKey, s.interval)
		acquired, err := lock.TryAcquire(ctx)
		if err != nil {
			s.logger.Warnw("sweep lock acquisition failed", "error", err)
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				s.logger.Warnw("sweep lock release failed", "error", err)
			}
		}()
	}

	closed, err := s.sessionService.CloseExpired(ctx, utils.UTCNow())
	if err != nil {
		s.logger.Errorw("session sweep failed", "error", err)
		return
	}
	if closed > 0 {
		s.logger.Infow("closed expired sessions", "count", closed)
	}
}
