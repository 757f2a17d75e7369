package domain

import (
	"time"
)

type LicenseID string

// AllowedMaxListeners are the listener tiers a license or session may carry.
var AllowedMaxListeners = map[int]bool{
	10:  true,
	25:  true,
	35:  true,
	100: true,
}

const DefaultDurationMinutes = 240

type License struct {
	ID              LicenseID  `json:"id"`
	Code            string     `json:"code"`
	DurationMinutes int        `json:"duration_minutes"`
	MaxListeners    int        `json:"max_listeners"`
	Active          bool       `json:"is_active"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RemainingMinutes returns how many usable minutes the license still has at now.
// A license that was never activated has its full duration remaining.
func (l *License) RemainingMinutes(now time.Time) int {
	if l.ActivatedAt == nil {
		return l.DurationMinutes
	}
	elapsed := int(now.Sub(*l.ActivatedAt).Minutes())
	if elapsed >= l.DurationMinutes {
		return 0
	}
	return l.DurationMinutes - elapsed
}

// Expired reports whether the activation window has fully elapsed.
func (l *License) Expired(now time.Time) bool {
	return l.ActivatedAt != nil && l.RemainingMinutes(now) == 0
}

// LicenseFilter narrows admin license listings.
type LicenseFilter struct {
	Query   string
	Active  *bool
	Revoked *bool
	Limit   int
	Offset  int
}
