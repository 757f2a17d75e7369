package ports

import (
	"context"
	"time"

	"airlink/internal/core/domain"
)

type CreateLicenseParams struct {
	Code            string
	DurationMinutes int
	MaxListeners    int
	Active          bool
}

type LicenseService interface {
	// Activate flips an inactive license on (idempotent for already-active
	// licenses) and returns it with the remaining usable minutes.
	Activate(ctx context.Context, code string) (*domain.License, int, error)
	Create(ctx context.Context, params CreateLicenseParams) (*domain.License, error)
	GetByCode(ctx context.Context, code string) (*domain.License, error)
	List(ctx context.Context, filter domain.LicenseFilter) ([]*domain.License, int, error)
	Revoke(ctx context.Context, id domain.LicenseID) (*domain.License, error)
	Reactivate(ctx context.Context, id domain.LicenseID) (*domain.License, error)
}

type SessionService interface {
	// Start opens a broadcast session for the license. maxListeners == 0
	// falls back to the license tier.
	Start(ctx context.Context, licenseCode string, maxListeners int) (*domain.Session, error)
	// Join admits a listener through a session PIN.
	Join(ctx context.Context, pin, displayName string) (*domain.Listener, error)
	// End closes a session and disconnects its listeners. Idempotent.
	End(ctx context.Context, id domain.SessionID, reason string) (*domain.Session, error)
	// CloseExpired ends every active session past its deadline.
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

type EventService interface {
	// Record writes an operational event and fans it out (webhook outbox,
	// live feed). Best-effort: it never fails the caller.
	Record(ctx context.Context, ev *domain.Event)
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)
	// StoreReceived persists an inbound signed-webhook event.
	StoreReceived(ctx context.Context, eventType string, payload map[string]interface{}) error
	RetryFailed(ctx context.Context, limit int) ([]domain.OutboxID, error)
}

// EventDispatcher queues outbound webhook deliveries.
type EventDispatcher interface {
	Enqueue(ctx context.Context, eventType string, payload map[string]interface{}) (*domain.OutboxEvent, error)
	RetryFailed(ctx context.Context, limit int) ([]domain.OutboxID, error)
}

// EventStream receives events for live subscribers (admin dashboard feed).
type EventStream interface {
	Publish(ev *domain.Event)
}

// Notifier fans a human-readable notification out to the configured admin
// channels. Implementations must be best-effort and non-blocking.
type Notifier interface {
	Notify(title string, payload map[string]interface{})
}

// MetricsRecorder is the slice of the Prometheus collector the core services
// touch. Kept narrow so tests can fake it.
type MetricsRecorder interface {
	RecordLicenseActivated()
	RecordSessionStarted()
	RecordSessionEnded(duration time.Duration)
	RecordListenerJoined()
	SetActiveSessions(n float64)
}
