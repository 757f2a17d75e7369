package domain

import (
	"time"
)

type SessionID string

const PINLength = 6

type Session struct {
	ID           SessionID  `json:"id"`
	LicenseID    LicenseID  `json:"license_id"`
	PIN          string     `json:"pin"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	MaxListeners int        `json:"max_listeners"`
	Active       bool       `json:"is_active"`
}

// Expired reports whether the session's hard deadline has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// DurationSeconds returns the closed session's length, or 0 while it is open.
func (s *Session) DurationSeconds() int64 {
	if s.EndedAt == nil {
		return 0
	}
	return int64(s.EndedAt.Sub(s.StartedAt).Seconds())
}

// SessionTotals feeds the health endpoint's quick metrics block.
type SessionTotals struct {
	Total         int64
	LastStartedAt *time.Time
	LastEndedAt   *time.Time
}
