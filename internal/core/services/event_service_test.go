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
	"airlink/internal/infrastructure/repositories/memory"
)

type captureDispatcher struct {
	enqueued []string
	retried  int
	failErr  error
}

func (d *captureDispatcher) Enqueue(_ context.Context, eventType string, _ map[string]interface{}) (*domain.OutboxEvent, error) {
	if d.failErr != nil {
		return nil, d.failErr
	}
	d.enqueued = append(d.enqueued, eventType)
	return &domain.OutboxEvent{ID: "out-1", EventType: eventType}, nil
}

func (d *captureDispatcher) RetryFailed(_ context.Context, limit int) ([]domain.OutboxID, error) {
	d.retried = limit
	return []domain.OutboxID{"out-1"}, nil
}

type captureStream struct {
	published []*domain.Event
}

func (s *captureStream) Publish(ev *domain.Event) { s.published = append(s.published, ev) }

func TestEventService_Record(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t).Sugar()

	t.Run("persists, enqueues and publishes", func(t *testing.T) {
		repo := memory.NewMemoryEventRepository()
		dispatcher := &captureDispatcher{}
		stream := &captureStream{}
		svc := NewEventService(repo, dispatcher, stream, logger)

		svc.Record(ctx, &domain.Event{
			Type:    domain.EventSessionStarted,
			Payload: map[string]interface{}{"pin": "ABC123"},
		})

		stored, err := repo.List(ctx, domain.EventFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.NotEmpty(t, stored[0].ID)
		assert.False(t, stored[0].CreatedAt.IsZero())

		assert.Equal(t, []string{domain.EventSessionStarted}, dispatcher.enqueued)
		require.Len(t, stream.published, 1)
	})

	t.Run("payload-less events skip the outbox", func(t *testing.T) {
		repo := memory.NewMemoryEventRepository()
		dispatcher := &captureDispatcher{}
		svc := NewEventService(repo, dispatcher, nil, logger)

		svc.Record(ctx, &domain.Event{Type: domain.EventListenerLeft})
		assert.Empty(t, dispatcher.enqueued)
	})

	t.Run("dispatcher failure does not surface", func(t *testing.T) {
		repo := memory.NewMemoryEventRepository()
		dispatcher := &captureDispatcher{failErr: errors.New("outbox down")}
		svc := NewEventService(repo, dispatcher, nil, logger)

		svc.Record(ctx, &domain.Event{
			Type:    domain.EventSessionEnded,
			Payload: map[string]interface{}{"reason": "manual"},
		})

		stored, err := repo.List(ctx, domain.EventFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, stored, 1, "the log entry survives an outbox failure")
	})
}

func TestEventService_List(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t).Sugar()
	repo := memory.NewMemoryEventRepository()
	svc := NewEventService(repo, nil, nil, logger)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	sessionID := domain.SessionID("sess-1")
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &domain.Event{
			ID:        domain.EventID(string(rune('a' + i))),
			Type:      domain.EventListenerJoined,
			SessionID: &sessionID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	newest, err := svc.List(ctx, domain.EventFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.True(t, newest[0].CreatedAt.After(newest[1].CreatedAt), "newest first")

	since := base.Add(3 * time.Minute)
	recent, err := svc.List(ctx, domain.EventFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	bySession, err := svc.List(ctx, domain.EventFilter{SessionID: sessionID})
	require.NoError(t, err)
	assert.Len(t, bySession, 5)
}

func TestEventService_StoreReceived(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t).Sugar()
	repo := memory.NewMemoryEventRepository()
	svc := NewEventService(repo, nil, nil, logger)

	err := svc.StoreReceived(ctx, "partner_ping", map[string]interface{}{"source": "partner"})
	require.NoError(t, err)

	stored, err := repo.List(ctx, domain.EventFilter{Type: "partner_ping", Limit: 10})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "received via webhook", stored[0].Description)
}

func TestEventService_RetryFailed(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t).Sugar()
	repo := memory.NewMemoryEventRepository()

	t.Run("delegates to the dispatcher", func(t *testing.T) {
		dispatcher := &captureDispatcher{}
		svc := NewEventService(repo, dispatcher, nil, logger)

		ids, err := svc.RetryFailed(ctx, 25)
		require.NoError(t, err)
		assert.Equal(t, []domain.OutboxID{"out-1"}, ids)
		assert.Equal(t, 25, dispatcher.retried)
	})

	t.Run("no dispatcher configured", func(t *testing.T) {
		svc := NewEventService(repo, nil, nil, logger)
		ids, err := svc.RetryFailed(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, ids)
	})
}
