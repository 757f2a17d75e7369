package ports

import (
	"context"
	"time"

	"airlink/internal/core/domain"
)

type LicenseRepository interface {
	Create(ctx context.Context, lic *domain.License) error
	GetByID(ctx context.Context, id domain.LicenseID) (*domain.License, error)
	GetByCode(ctx context.Context, code string) (*domain.License, error)
	Update(ctx context.Context, lic *domain.License) error
	List(ctx context.Context, filter domain.LicenseFilter) ([]*domain.License, int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error)
	// GetActiveByPIN resolves a PIN to its live session; ended and expired
	// sessions do not hold their PIN.
	GetActiveByPIN(ctx context.Context, pin string) (*domain.Session, error)
	Update(ctx context.Context, sess *domain.Session) error
	ListExpired(ctx context.Context, now time.Time) ([]*domain.Session, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Session, error)
	CountStartedSince(ctx context.Context, since time.Time) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
	// AvgDurationMinutes averages closed sessions started since the given time.
	AvgDurationMinutes(ctx context.Context, since time.Time) (float64, error)
	Totals(ctx context.Context) (domain.SessionTotals, error)
}

type ListenerRepository interface {
	Add(ctx context.Context, l *domain.Listener) error
	Update(ctx context.Context, l *domain.Listener) error
	ListBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.Listener, error)
	CountBySession(ctx context.Context, sessionID domain.SessionID) (int, error)
	CountJoinedSince(ctx context.Context, since time.Time) (int64, error)
}

type EventRepository interface {
	Append(ctx context.Context, ev *domain.Event) error
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error)
	Totals(ctx context.Context) (int64, *time.Time, error)
}

// PINCache is an optional fast path for PIN lookups. Misses fall through to
// the session repository; entries expire with the session deadline.
type PINCache interface {
	Get(ctx context.Context, pin string) (domain.SessionID, bool)
	Set(ctx context.Context, pin string, id domain.SessionID, ttl time.Duration)
	Delete(ctx context.Context, pin string)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, ev *domain.OutboxEvent) error
	GetByID(ctx context.Context, id domain.OutboxID) (*domain.OutboxEvent, error)
	Update(ctx context.Context, ev *domain.OutboxEvent) error
	ListFailed(ctx context.Context, limit int) ([]domain.OutboxID, error)
}
