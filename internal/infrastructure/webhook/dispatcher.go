package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/utils"
)

// MetricsRecorder is the delivery-side metrics hook.
type MetricsRecorder interface {
	RecordWebhookDelivery(status string, duration time.Duration)
}

// Dispatcher implements the webhook outbox. Every event is persisted first,
// then delivered asynchronously so request handling never waits on a remote
// endpoint. Without a configured URL deliveries are marked sent immediately.
type Dispatcher struct {
	outbox  ports.OutboxRepository
	sender  *Sender
	enabled bool
	metrics MetricsRecorder
	logger  *zap.SugaredLogger
}

func NewDispatcher(
	outbox ports.OutboxRepository,
	sender *Sender,
	enabled bool,
	metrics MetricsRecorder,
	logger *zap.SugaredLogger,
) *Dispatcher {
	return &Dispatcher{
		outbox:  outbox,
		sender:  sender,
		enabled: enabled,
		metrics: metrics,
		logger:  logger,
	}
}

func (d *Dispatcher) Enqueue(ctx context.Context, eventType string, payload map[string]interface{}) (*domain.OutboxEvent, error) {
	ev := &domain.OutboxEvent{
		ID:        domain.OutboxID(uuid.New().String()),
		EventType: eventType,
		Payload:   payload,
		Status:    domain.DeliveryQueued,
		CreatedAt: utils.UTCNow(),
	}

	if !d.enabled {
		now := utils.UTCNow()
		ev.Status = domain.DeliverySent
		ev.DeliveredAt = &now
	}

	if err := d.outbox.Enqueue(ctx, ev); err != nil {
		return nil, err
	}

	if d.enabled {
		go d.deliver(ev.ID)
	}
	return ev, nil
}

func (d *Dispatcher) RetryFailed(ctx context.Context, limit int) ([]domain.OutboxID, error) {
	if limit <= 0 {
		limit = 50
	}
	ids, err := d.outbox.ListFailed(ctx, limit)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		ev, err := d.outbox.GetByID(ctx, id)
		if err != nil {
			d.logger.Warnw("failed to load outbox event for retry", "id", id, "error", err)
			continue
		}
		ev.Status = domain.DeliveryQueued
		if err := d.outbox.Update(ctx, ev); err != nil {
			d.logger.Warnw("failed to requeue outbox event", "id", id, "error", err)
			continue
		}
		go d.deliver(id)
	}
	return ids, nil
}

// Run periodically requeues failed deliveries until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration, batchLimit int) {
	if !d.enabled {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids, err := d.RetryFailed(ctx, batchLimit); err != nil {
				d.logger.Warnw("webhook retry sweep failed", "error", err)
			} else if len(ids) > 0 {
				d.logger.Infow("requeued failed webhook deliveries", "count", len(ids))
			}
		}
	}
}

func (d *Dispatcher) deliver(id domain.OutboxID) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ev, err := d.outbox.GetByID(ctx, id)
	if err != nil {
		d.logger.Warnw("failed to load outbox event", "id", id, "error", err)
		return
	}
	if ev.Status == domain.DeliverySent {
		return
	}

	start := time.Now()
	sendErr := d.sender.Send(ctx, ev.EventType, ev.Payload)
	elapsed := time.Since(start)

	if sendErr != nil {
		ev.Status = domain.DeliveryFailed
		ev.Retries++
		ev.LastError = sendErr.Error()
		if d.metrics != nil {
			d.metrics.RecordWebhookDelivery("failed", elapsed)
		}
		d.logger.Warnw("webhook delivery failed",
			"id", ev.ID,
			"event_type", ev.EventType,
			"retries", ev.Retries,
			"error", sendErr,
		)
	} else {
		now := utils.UTCNow()
		ev.Status = domain.DeliverySent
		ev.LastError = ""
		ev.DeliveredAt = &now
		if d.metrics != nil {
			d.metrics.RecordWebhookDelivery("sent", elapsed)
		}
	}

	if err := d.outbox.Update(ctx, ev); err != nil {
		d.logger.Warnw("failed to update outbox event", "id", ev.ID, "error", err)
	}
}
