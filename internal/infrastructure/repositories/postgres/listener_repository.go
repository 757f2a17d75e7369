package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type ListenerRepository struct {
	db *pgxpool.Pool
}

func NewListenerRepository(db *pgxpool.Pool) ports.ListenerRepository {
	return &ListenerRepository{db: db}
}

func (r *ListenerRepository) Add(ctx context.Context, l *domain.Listener) error {
	query := `
		INSERT INTO listeners (id, session_id, display_name, joined_at, left_at, is_connected)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.SessionID, l.DisplayName, l.JoinedAt, l.LeftAt, l.Connected)
	if err != nil {
		return fmt.Errorf("insert listener: %w", err)
	}
	return nil
}

func (r *ListenerRepository) Update(ctx context.Context, l *domain.Listener) error {
	query := `
		UPDATE listeners
		SET display_name = $2, left_at = $3, is_connected = $4
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, l.ID, l.DisplayName, l.LeftAt, l.Connected)
	if err != nil {
		return fmt.Errorf("update listener: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListenerNotFound
	}
	return nil
}

func (r *ListenerRepository) ListBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.Listener, error) {
	query := `
		SELECT id, session_id, display_name, joined_at, left_at, is_connected
		FROM listeners
		WHERE session_id = $1
		ORDER BY joined_at`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list listeners: %w", err)
	}
	defer rows.Close()

	var listeners []*domain.Listener
	for rows.Next() {
		var l domain.Listener
		if err := rows.Scan(&l.ID, &l.SessionID, &l.DisplayName, &l.JoinedAt, &l.LeftAt, &l.Connected); err != nil {
			return nil, fmt.Errorf("scan listener: %w", err)
		}
		listeners = append(listeners, &l)
	}
	return listeners, rows.Err()
}

func (r *ListenerRepository) CountBySession(ctx context.Context, sessionID domain.SessionID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM listeners WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count listeners: %w", err)
	}
	return n, nil
}

func (r *ListenerRepository) CountJoinedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM listeners WHERE joined_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count listeners: %w", err)
	}
	return n, nil
}
