package domain

import (
	"time"
)

type EventID string

// Operational event types written to the event log.
const (
	EventLicenseActivated = "license_activated"
	EventSessionStarted   = "session_started"
	EventListenerJoined   = "listener_joined"
	EventListenerLeft     = "listener_left"
	EventSessionEnded     = "session_ended"
)

type Event struct {
	ID          EventID                `json:"id"`
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	SessionID   *SessionID             `json:"session_id,omitempty"`
	LicenseCode string                 `json:"license_code,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type EventFilter struct {
	Type      string
	SessionID SessionID
	Since     *time.Time
	Limit     int
}

// Outbox delivery states for admin webhook events.
type DeliveryStatus string

const (
	DeliveryQueued DeliveryStatus = "queued"
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

type OutboxID string

// OutboxEvent is a webhook delivery record. Rows stay around after delivery so
// the admin panel can audit what was sent and when.
type OutboxEvent struct {
	ID          OutboxID               `json:"id"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
	Status      DeliveryStatus         `json:"status"`
	Retries     int                    `json:"retries"`
	LastError   string                 `json:"last_error,omitempty"`
	DeliveredAt *time.Time             `json:"delivered_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
