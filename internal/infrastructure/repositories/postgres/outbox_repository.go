package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) ports.OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, ev *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retries, last_error, delivered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		ev.ID, ev.EventType, ev.Payload, ev.Status, ev.Retries, ev.LastError, ev.DeliveredAt, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *OutboxRepository) GetByID(ctx context.Context, id domain.OutboxID) (*domain.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, retries, last_error, delivered_at, created_at
		FROM outbox_events WHERE id = $1`
	var ev domain.OutboxEvent
	err := r.db.QueryRow(ctx, query, id).Scan(&ev.ID, &ev.EventType, &ev.Payload,
		&ev.Status, &ev.Retries, &ev.LastError, &ev.DeliveredAt, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan outbox event: %w", err)
	}
	return &ev, nil
}

func (r *OutboxRepository) Update(ctx context.Context, ev *domain.OutboxEvent) error {
	query := `
		UPDATE outbox_events
		SET status = $2, retries = $3, last_error = $4, delivered_at = $5
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, ev.ID, ev.Status, ev.Retries, ev.LastError, ev.DeliveredAt)
	if err != nil {
		return fmt.Errorf("update outbox event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *OutboxRepository) ListFailed(ctx context.Context, limit int) ([]domain.OutboxID, error) {
	query := `
		SELECT id FROM outbox_events
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, domain.DeliveryFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed outbox events: %w", err)
	}
	defer rows.Close()

	var ids []domain.OutboxID
	for rows.Next() {
		var id domain.OutboxID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan outbox id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
