package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/utils"
)

// eventService fans operational events out to the event log, the webhook
// outbox and the live feed. Recording is best-effort: a broken event pipeline
// must never fail a license activation or a session join.
type eventService struct {
	eventRepo  ports.EventRepository
	dispatcher ports.EventDispatcher
	stream     ports.EventStream
	logger     *zap.SugaredLogger
}

func NewEventService(
	eventRepo ports.EventRepository,
	dispatcher ports.EventDispatcher,
	stream ports.EventStream,
	logger *zap.SugaredLogger,
) ports.EventService {
	return &eventService{
		eventRepo:  eventRepo,
		dispatcher: dispatcher,
		stream:     stream,
		logger:     logger,
	}
}

func (s *eventService) Record(ctx context.Context, ev *domain.Event) {
	if ev.ID == "" {
		ev.ID = domain.EventID(uuid.New().String())
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = utils.UTCNow()
	}

	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.logger.Warnw("failed to append event", "type", ev.Type, "error", err)
	}

	if s.dispatcher != nil && ev.Payload != nil {
		if _, err := s.dispatcher.Enqueue(ctx, ev.Type, ev.Payload); err != nil {
			s.logger.Warnw("failed to enqueue webhook event", "type", ev.Type, "error", err)
		}
	}

	if s.stream != nil {
		s.stream.Publish(ev)
	}
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.eventRepo.List(ctx, filter)
}

func (s *eventService) StoreReceived(ctx context.Context, eventType string, payload map[string]interface{}) error {
	ev := &domain.Event{
		ID:          domain.EventID(uuid.New().String()),
		Type:        eventType,
		Description: "received via webhook",
		Payload:     payload,
		CreatedAt:   utils.UTCNow(),
	}
	return s.eventRepo.Append(ctx, ev)
}

func (s *eventService) RetryFailed(ctx context.Context, limit int) ([]domain.OutboxID, error) {
	if s.dispatcher == nil {
		return nil, nil
	}
	return s.dispatcher.RetryFailed(ctx, limit)
}
