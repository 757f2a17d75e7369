package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/infrastructure/repositories/memory"
)

type licenseFixture struct {
	service   ports.LicenseService
	repo      ports.LicenseRepository
	eventRepo ports.EventRepository
	metrics   *fakeMetrics
}

func newLicenseFixture(t *testing.T) *licenseFixture {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()

	f := &licenseFixture{
		repo:      memory.NewMemoryLicenseRepository(),
		eventRepo: memory.NewMemoryEventRepository(),
		metrics:   &fakeMetrics{},
	}
	events := NewEventService(f.eventRepo, nil, nil, logger)
	f.service = NewLicenseService(f.repo, events, f.metrics, logger)
	return f
}

func TestLicenseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults", func(t *testing.T) {
		f := newLicenseFixture(t)

		lic, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "TOUR-001"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDurationMinutes, lic.DurationMinutes)
		assert.Equal(t, 10, lic.MaxListeners)
		assert.False(t, lic.Active)
		assert.NotEmpty(t, lic.ID)
	})

	t.Run("rejects an off-tier max_listeners", func(t *testing.T) {
		f := newLicenseFixture(t)

		_, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "TOUR-002", MaxListeners: 50})
		assert.ErrorIs(t, err, domain.ErrInvalidMaxListeners)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		f := newLicenseFixture(t)

		_, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "TOUR-003"})
		require.NoError(t, err)
		_, err = f.service.Create(ctx, ports.CreateLicenseParams{Code: "TOUR-003"})
		assert.ErrorIs(t, err, domain.ErrDuplicateLicense)
	})
}

func TestLicenseService_Activate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("stamps the activation time", func(t *testing.T) {
		f := newLicenseFixture(t)
		freezeClock(t, now)
		_, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "ACT-001", MaxListeners: 25})
		require.NoError(t, err)

		lic, remaining, err := f.service.Activate(ctx, "ACT-001")
		require.NoError(t, err)
		assert.True(t, lic.Active)
		require.NotNil(t, lic.ActivatedAt)
		assert.Equal(t, now, *lic.ActivatedAt)
		assert.Equal(t, domain.DefaultDurationMinutes, remaining)
		assert.Equal(t, 1, f.metrics.activations)

		events, err := f.eventRepo.List(ctx, domain.EventFilter{Type: domain.EventLicenseActivated, Limit: 10})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ACT-001", events[0].LicenseCode)
	})

	t.Run("re-activation keeps the original clock running", func(t *testing.T) {
		f := newLicenseFixture(t)
		freezeClock(t, now)
		_, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "ACT-002"})
		require.NoError(t, err)
		_, _, err = f.service.Activate(ctx, "ACT-002")
		require.NoError(t, err)

		freezeClock(t, now.Add(90*time.Minute))
		lic, remaining, err := f.service.Activate(ctx, "ACT-002")
		require.NoError(t, err)
		assert.Equal(t, now, *lic.ActivatedAt, "activation time does not move")
		assert.Equal(t, domain.DefaultDurationMinutes-90, remaining)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newLicenseFixture(t)
		_, _, err := f.service.Activate(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrLicenseNotFound)
	})
}

func TestLicenseService_RevokeReactivate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	f := newLicenseFixture(t)
	freezeClock(t, now)
	lic, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: "REV-001", Active: true})
	require.NoError(t, err)

	revoked, err := f.service.Revoke(ctx, lic.ID)
	require.NoError(t, err)
	assert.False(t, revoked.Active)
	require.NotNil(t, revoked.RevokedAt)
	assert.Equal(t, now, *revoked.RevokedAt)

	restored, err := f.service.Reactivate(ctx, lic.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
	assert.Nil(t, restored.RevokedAt)

	_, err = f.service.Revoke(ctx, domain.LicenseID("missing"))
	assert.ErrorIs(t, err, domain.ErrLicenseNotFound)
}

func TestLicenseService_List(t *testing.T) {
	ctx := context.Background()
	f := newLicenseFixture(t)

	codes := []string{"CITY-A", "CITY-B", "MUSEUM-A"}
	for _, code := range codes {
		_, err := f.service.Create(ctx, ports.CreateLicenseParams{Code: code, Active: true})
		require.NoError(t, err)
	}

	all, total, err := f.service.List(ctx, domain.LicenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	city, total, err := f.service.List(ctx, domain.LicenseFilter{Query: "city"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, city, 2)

	paged, total, err := f.service.List(ctx, domain.LicenseFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)
}
