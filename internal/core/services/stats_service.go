package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/cache"
	"airlink/pkg/utils"
)

// StatsOverview is the public usage snapshot.
type StatsOverview struct {
	SessionsLast24h   int64   `json:"sessions_last_24h"`
	AvgSessionMinutes float64 `json:"avg_session_minutes"`
	ActiveNow         int64   `json:"active_now"`
}

// QuickStats backs the admin dashboard header.
type QuickStats struct {
	DBOK             bool              `json:"db_ok"`
	Version          string            `json:"version"`
	SessionsLast24h  int64             `json:"sessions_last_24h"`
	ListenersLast24h int64             `json:"listeners_last_24h"`
	ActiveSessions   int64             `json:"active_sessions"`
	RecentSessions   []*domain.Session `json:"recent_sessions"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// LiveKPI is a windowed view over the event log.
type LiveKPI struct {
	Bucket          string     `json:"bucket"`
	WindowStart     time.Time  `json:"window_start"`
	SessionsStarted int64      `json:"sessions_started"`
	SessionsEnded   int64      `json:"sessions_ended"`
	ListenersJoined int64      `json:"listeners_joined"`
	EventsTotal     int64      `json:"events_total"`
	ActiveSessions  int64      `json:"active_sessions"`
	LastEventAt     *time.Time `json:"last_event_at,omitempty"`
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatsService interface {
	Overview(ctx context.Context) (*StatsOverview, error)
	QuickStats(ctx context.Context) (*QuickStats, error)
	LiveKPI(ctx context.Context, bucket string) (*LiveKPI, error)
}

var liveBuckets = map[string]time.Duration{
	"5m":  5 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

type statsService struct {
	sessionRepo  ports.SessionRepository
	listenerRepo ports.ListenerRepository
	eventRepo    ports.EventRepository
	pinger       Pinger
	version      string
	snapshots    *cache.Cache
	logger       *zap.SugaredLogger
}

func NewStatsService(
	sessionRepo ports.SessionRepository,
	listenerRepo ports.ListenerRepository,
	eventRepo ports.EventRepository,
	pinger Pinger,
	version string,
	snapshotTTL time.Duration,
	logger *zap.SugaredLogger,
) StatsService {
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Second
	}
	return &statsService{
		sessionRepo:  sessionRepo,
		listenerRepo: listenerRepo,
		eventRepo:    eventRepo,
		pinger:       pinger,
		version:      version,
		snapshots:    cache.New(snapshotTTL),
		logger:       logger,
	}
}

func (s *statsService) Overview(ctx context.Context) (*StatsOverview, error) {
	if v, ok := s.snapshots.Get("stats:overview"); ok {
		return v.(*StatsOverview), nil
	}

	now := utils.UTCNow()
	since := now.Add(-24 * time.Hour)

	started, err := s.sessionRepo.CountStartedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	avg, err := s.sessionRepo.AvgDurationMinutes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("avg session duration: %w", err)
	}
	active, err := s.sessionRepo.CountActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}

	overview := &StatsOverview{
		SessionsLast24h:   started,
		AvgSessionMinutes: avg,
		ActiveNow:         active,
	}
	s.snapshots.Set("stats:overview", overview)
	return overview, nil
}

func (s *statsService) QuickStats(ctx context.Context) (*QuickStats, error) {
	if v, ok := s.snapshots.Get("stats:quick"); ok {
		return v.(*QuickStats), nil
	}

	now := utils.UTCNow()
	since := now.Add(-24 * time.Hour)

	dbOK := true
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warnw("database ping failed", "error", err)
			dbOK = false
		}
	}

	started, err := s.sessionRepo.CountStartedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	joined, err := s.listenerRepo.CountJoinedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count listeners: %w", err)
	}
	active, err := s.sessionRepo.CountActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	recent, err := s.sessionRepo.ListRecent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}

	stats := &QuickStats{
		DBOK:             dbOK,
		Version:          s.version,
		SessionsLast24h:  started,
		ListenersLast24h: joined,
		ActiveSessions:   active,
		RecentSessions:   recent,
		GeneratedAt:      now,
	}
	s.snapshots.Set("stats:quick", stats)
	return stats, nil
}

func (s *statsService) LiveKPI(ctx context.Context, bucket string) (*LiveKPI, error) {
	window, ok := liveBuckets[bucket]
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}

	cacheKey := "stats:live:" + bucket
	if v, ok := s.snapshots.Get(cacheKey); ok {
		return v.(*LiveKPI), nil
	}

	now := utils.UTCNow()
	since := now.Add(-window)

	startedCount, err := s.eventRepo.CountTypeSince(ctx, domain.EventSessionStarted, since)
	if err != nil {
		return nil, fmt.Errorf("count started events: %w", err)
	}
	endedCount, err := s.eventRepo.CountTypeSince(ctx, domain.EventSessionEnded, since)
	if err != nil {
		return nil, fmt.Errorf("count ended events: %w", err)
	}
	joinedCount, err := s.eventRepo.CountTypeSince(ctx, domain.EventListenerJoined, since)
	if err != nil {
		return nil, fmt.Errorf("count joined events: %w", err)
	}
	total, err := s.eventRepo.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	active, err := s.sessionRepo.CountActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	_, lastEventAt, err := s.eventRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("event totals: %w", err)
	}

	kpi := &LiveKPI{
		Bucket:          bucket,
		WindowStart:     since,
		SessionsStarted: startedCount,
		SessionsEnded:   endedCount,
		ListenersJoined: joinedCount,
		EventsTotal:     total,
		ActiveSessions:  active,
		LastEventAt:     lastEventAt,
	}
	s.snapshots.SetWithTTL(cacheKey, kpi, 2*time.Second)
	return kpi, nil
}
