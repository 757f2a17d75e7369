package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) ports.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, ev *domain.Event) error {
	query := `
		INSERT INTO events (id, type, description, session_id, license_code, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		ev.ID, ev.Type, ev.Description, ev.SessionID, ev.LicenseCode, ev.Payload, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	query := `
		SELECT id, type, description, session_id, license_code, payload, created_at
		FROM events
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR session_id = $2::uuid)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		ORDER BY created_at DESC
		LIMIT $4`
	rows, err := r.db.Query(ctx, query, filter.Type, string(filter.SessionID), filter.Since, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Description, &ev.SessionID,
			&ev.LicenseCode, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (r *EventRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM events WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) CountTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM events WHERE type = $1 AND created_at >= $2`,
		eventType, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) Totals(ctx context.Context) (int64, *time.Time, error) {
	var n int64
	var last *time.Time
	err := r.db.QueryRow(ctx, `SELECT count(*), max(created_at) FROM events`).Scan(&n, &last)
	if err != nil {
		return 0, nil, fmt.Errorf("event totals: %w", err)
	}
	return n, last, nil
}
