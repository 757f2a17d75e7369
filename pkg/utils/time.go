package utils

import (
	"time"
)

// Now returns current time (useful for mocking in tests)
var Now = time.Now

// UTCNow returns the current time in UTC. All persisted timestamps are UTC.
func UTCNow() time.Time {
	return Now().UTC()
}

// ComputeExpiry returns the hard deadline for a window of whole minutes.
func ComputeExpiry(start time.Time, minutes int) time.Time {
	return start.Add(time.Duration(minutes) * time.Minute)
}

// FormatTimestamp formats timestamp in ISO 8601 format
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTimestamp parses ISO 8601 timestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
