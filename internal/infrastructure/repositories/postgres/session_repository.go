package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

const sessionColumns = `id, license_id, pin, started_at, ended_at, expires_at, max_listeners, is_active`

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) ports.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, sess *domain.Session) error {
	query := `
		INSERT INTO sessions (id, license_id, pin, started_at, ended_at, expires_at, max_listeners, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		sess.ID, sess.LicenseID, sess.PIN, sess.StartedAt,
		sess.EndedAt, sess.ExpiresAt, sess.MaxListeners, sess.Active)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *SessionRepository) GetActiveByPIN(ctx context.Context, pin string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE pin = $1 AND is_active`
	return r.scanOne(r.db.QueryRow(ctx, query, pin))
}

func (r *SessionRepository) Update(ctx context.Context, sess *domain.Session) error {
	query := `
		UPDATE sessions
		SET ended_at = $2, expires_at = $3, max_listeners = $4, is_active = $5
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		sess.ID, sess.EndedAt, sess.ExpiresAt, sess.MaxListeners, sess.Active)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE is_active AND expires_at <= $1`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *SessionRepository) CountStartedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM sessions WHERE started_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM sessions WHERE is_active AND expires_at > $1`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) AvgDurationMinutes(ctx context.Context, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(avg(EXTRACT(EPOCH FROM (ended_at - started_at)) / 60), 0)
		FROM sessions
		WHERE ended_at IS NOT NULL AND started_at >= $1`
	var avg float64
	if err := r.db.QueryRow(ctx, query, since).Scan(&avg); err != nil {
		return 0, fmt.Errorf("avg session duration: %w", err)
	}
	return avg, nil
}

func (r *SessionRepository) Totals(ctx context.Context) (domain.SessionTotals, error) {
	query := `SELECT count(*), max(started_at), max(ended_at) FROM sessions`
	var totals domain.SessionTotals
	if err := r.db.QueryRow(ctx, query).Scan(&totals.Total, &totals.LastStartedAt, &totals.LastEndedAt); err != nil {
		return domain.SessionTotals{}, fmt.Errorf("session totals: %w", err)
	}
	return totals, nil
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.Session, error) {
	var sess domain.Session
	err := row.Scan(&sess.ID, &sess.LicenseID, &sess.PIN, &sess.StartedAt,
		&sess.EndedAt, &sess.ExpiresAt, &sess.MaxListeners, &sess.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

func (r *SessionRepository) scanMany(rows pgx.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.LicenseID, &sess.PIN, &sess.StartedAt,
			&sess.EndedAt, &sess.ExpiresAt, &sess.MaxListeners, &sess.Active); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}
