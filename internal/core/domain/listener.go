package domain

import (
	"time"
)

type ListenerID string

type Listener struct {
	ID          ListenerID `json:"id"`
	SessionID   SessionID  `json:"session_id"`
	DisplayName string     `json:"display_name,omitempty"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
	Connected   bool       `json:"is_connected"`
}

// Disconnect stamps the departure time. Returns false if already disconnected.
func (l *Listener) Disconnect(now time.Time) bool {
	if !l.Connected {
		return false
	}
	l.Connected = false
	l.LeftAt = &now
	return true
}
