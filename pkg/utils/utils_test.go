package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGeneratePIN(t *testing.T) {
	pin := GeneratePIN(6)
	if len(pin) != 6 {
		t.Errorf("expected 6 characters, got %d", len(pin))
	}
	for _, c := range pin {
		if !strings.ContainsRune(PINAlphabet, c) {
			t.Errorf("character %q outside the PIN alphabet", c)
		}
	}

	// Collisions across a handful of draws would point at a broken source.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GeneratePIN(6)] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected mostly unique PINs, got %d unique of 50", len(seen))
	}
}

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == id2 {
		t.Error("expected different request IDs")
	}
	if !strings.HasPrefix(id1, "req_") {
		t.Errorf("expected prefix 'req_', got %s", id1)
	}
}

func TestGenerateLockValue(t *testing.T) {
	v1 := GenerateLockValue()
	v2 := GenerateLockValue()

	if v1 == v2 {
		t.Error("expected different lock values")
	}
	if len(v1) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(v1))
	}
}

func TestUTCNow(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	prev := Now
	Now = func() time.Time { return fixed }
	defer func() { Now = prev }()

	got := UTCNow()
	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
	if !got.Equal(fixed) {
		t.Errorf("UTCNow() = %v, want %v", got, fixed)
	}
}

func TestComputeExpiry(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		minutes int
		want    time.Time
	}{
		{"default window", 240, start.Add(4 * time.Hour)},
		{"one minute", 1, start.Add(time.Minute)},
		{"zero minutes", 0, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExpiry(start, tt.minutes)
			if !got.Equal(tt.want) {
				t.Errorf("ComputeExpiry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	formatted := FormatTimestamp(original)
	if formatted != "2026-03-14T10:30:00Z" {
		t.Errorf("FormatTimestamp() = %q", formatted)
	}

	parsed, err := ParseTimestamp(formatted)
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if !parsed.Equal(original) {
		t.Errorf("round trip changed the timestamp: %v != %v", parsed, original)
	}

	if _, err := ParseTimestamp("not-a-timestamp"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}
