package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/infrastructure/repositories/memory"
)

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

type statsFixture struct {
	service      StatsService
	sessionRepo  ports.SessionRepository
	listenerRepo ports.ListenerRepository
	eventRepo    ports.EventRepository
	pinger       *fakePinger
}

func newStatsFixture(t *testing.T, snapshotTTL time.Duration) *statsFixture {
	t.Helper()
	f := &statsFixture{
		sessionRepo:  memory.NewMemorySessionRepository(),
		listenerRepo: memory.NewMemoryListenerRepository(),
		eventRepo:    memory.NewMemoryEventRepository(),
		pinger:       &fakePinger{},
	}
	f.service = NewStatsService(
		f.sessionRepo, f.listenerRepo, f.eventRepo,
		f.pinger, "test", snapshotTTL,
		zaptest.NewLogger(t).Sugar(),
	)
	return f
}

func (f *statsFixture) seedSession(t *testing.T, id string, startedAt time.Time, ended *time.Time, active bool) {
	t.Helper()
	sess := &domain.Session{
		ID:           domain.SessionID(id),
		LicenseID:    "lic-1",
		PIN:          "PIN" + id,
		StartedAt:    startedAt,
		EndedAt:      ended,
		ExpiresAt:    startedAt.Add(4 * time.Hour),
		MaxListeners: 10,
		Active:       active,
	}
	require.NoError(t, f.sessionRepo.Create(context.Background(), sess))
}

func TestStatsService_Overview(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	f := newStatsFixture(t, time.Minute)
	ended := now.Add(-time.Hour)
	f.seedSession(t, "old", now.Add(-48*time.Hour), nil, false)
	f.seedSession(t, "closed", now.Add(-2*time.Hour), &ended, false)
	f.seedSession(t, "live", now.Add(-time.Hour), nil, true)

	overview, err := f.service.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.SessionsLast24h)
	assert.Equal(t, int64(1), overview.ActiveNow)
	assert.InDelta(t, 60.0, overview.AvgSessionMinutes, 0.1)
}

func TestStatsService_Overview_SnapshotReuse(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	f := newStatsFixture(t, time.Minute)
	f.seedSession(t, "a", now.Add(-time.Hour), nil, true)

	first, err := f.service.Overview(ctx)
	require.NoError(t, err)

	// New data within the snapshot window is not visible yet.
	f.seedSession(t, "b", now, nil, true)
	second, err := f.service.Overview(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStatsService_QuickStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	f := newStatsFixture(t, time.Minute)
	f.seedSession(t, "live", now.Add(-time.Hour), nil, true)
	require.NoError(t, f.listenerRepo.Add(ctx, &domain.Listener{
		ID:        "l-1",
		SessionID: "live",
		JoinedAt:  now.Add(-30 * time.Minute),
		Connected: true,
	}))

	stats, err := f.service.QuickStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.DBOK)
	assert.Equal(t, "test", stats.Version)
	assert.Equal(t, int64(1), stats.SessionsLast24h)
	assert.Equal(t, int64(1), stats.ListenersLast24h)
	assert.Equal(t, int64(1), stats.ActiveSessions)
	require.Len(t, stats.RecentSessions, 1)
}

func TestStatsService_QuickStats_DBDown(t *testing.T) {
	ctx := context.Background()

	f := newStatsFixture(t, time.Minute)
	f.pinger.err = errors.New("connection refused")

	stats, err := f.service.QuickStats(ctx)
	require.NoError(t, err, "an unreachable database degrades, not fails")
	assert.False(t, stats.DBOK)
}

func TestStatsService_LiveKPI(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	f := newStatsFixture(t, time.Minute)
	f.seedSession(t, "live", now.Add(-time.Minute), nil, true)

	seedEvent := func(id, eventType string, at time.Time) {
		require.NoError(t, f.eventRepo.Append(ctx, &domain.Event{
			ID:        domain.EventID(id),
			Type:      eventType,
			CreatedAt: at,
		}))
	}
	seedEvent("e1", domain.EventSessionStarted, now.Add(-time.Minute))
	seedEvent("e2", domain.EventListenerJoined, now.Add(-30*time.Second))
	seedEvent("e3", domain.EventSessionStarted, now.Add(-2*time.Hour))
	seedEvent("e4", domain.EventSessionEnded, now.Add(-90*time.Minute))

	t.Run("5m window", func(t *testing.T) {
		kpi, err := f.service.LiveKPI(ctx, "5m")
		require.NoError(t, err)
		assert.Equal(t, int64(1), kpi.SessionsStarted)
		assert.Equal(t, int64(0), kpi.SessionsEnded)
		assert.Equal(t, int64(1), kpi.ListenersJoined)
		assert.Equal(t, int64(2), kpi.EventsTotal)
		assert.Equal(t, int64(1), kpi.ActiveSessions)
		require.NotNil(t, kpi.LastEventAt)
	})

	t.Run("24h window", func(t *testing.T) {
		kpi, err := f.service.LiveKPI(ctx, "24h")
		require.NoError(t, err)
		assert.Equal(t, int64(2), kpi.SessionsStarted)
		assert.Equal(t, int64(1), kpi.SessionsEnded)
		assert.Equal(t, int64(4), kpi.EventsTotal)
	})

	t.Run("unknown bucket", func(t *testing.T) {
		_, err := f.service.LiveKPI(ctx, "7d")
		assert.Error(t, err)
	})
}
