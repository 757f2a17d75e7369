package domain

import "errors"

var (
	ErrLicenseNotFound     = errors.New("license not found")
	ErrLicenseNotActive    = errors.New("license not active")
	ErrLicenseExpired      = errors.New("license expired")
	ErrDuplicateLicense    = errors.New("license code already exists")
	ErrInvalidMaxListeners = errors.New("invalid max_listeners")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrSessionFull         = errors.New("session full")
	ErrPINGeneration       = errors.New("pin generation failed")
	ErrListenerNotFound    = errors.New("listener not found")
	ErrEventNotFound       = errors.New("event not found")
)
