package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// LicenseCodeRegex validates license code format
	LicenseCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// PINRegex validates join PIN format
	PINRegex = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

// ValidateLicenseCode validates a license code
func ValidateLicenseCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("license_code is required")
	}
	if len(code) > 64 {
		return fmt.Errorf("license_code is too long (max 64 characters)")
	}
	if !LicenseCodeRegex.MatchString(code) {
		return fmt.Errorf("license_code contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePIN validates a session join PIN
func ValidatePIN(pin string) error {
	if pin == "" {
		return fmt.Errorf("pin is required")
	}
	if !PINRegex.MatchString(pin) {
		return fmt.Errorf("pin must be 6 uppercase letters or digits")
	}
	return nil
}

// ValidateDisplayName validates an optional listener display name
func ValidateDisplayName(name string) error {
	if name == "" {
		return nil
	}
	if utf8.RuneCountInString(name) > 128 {
		return fmt.Errorf("display_name is too long (max 128 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("display_name must be valid UTF-8")
	}
	return nil
}

// ValidateMaxListeners checks the listener tier against the allowed set.
func ValidateMaxListeners(n int, allowed map[int]bool) error {
	if !allowed[n] {
		return fmt.Errorf("max_listeners must be one of 10, 25, 35, 100")
	}
	return nil
}

// ValidateDurationMinutes checks a license duration is positive and sane.
func ValidateDurationMinutes(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("duration_minutes must be > 0")
	}
	if minutes > 7*24*60 {
		return fmt.Errorf("duration_minutes is too large (max one week)")
	}
	return nil
}
