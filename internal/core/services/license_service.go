package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/utils"
)

type licenseService struct {
	licenseRepo ports.LicenseRepository
	events      ports.EventService
	metrics     ports.MetricsRecorder
	logger      *zap.SugaredLogger
}

func NewLicenseService(
	licenseRepo ports.LicenseRepository,
	events ports.EventService,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.LicenseService {
	return &licenseService{
		licenseRepo: licenseRepo,
		events:      events,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *licenseService) Activate(ctx context.Context, code string) (*domain.License, int, error) {
	lic, err := s.licenseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	now := utils.UTCNow()
	if !lic.Active || lic.ActivatedAt == nil {
		lic.Active = true
		lic.ActivatedAt = &now
		if err := s.licenseRepo.Update(ctx, lic); err != nil {
			return nil, 0, fmt.Errorf("failed to activate license: %w", err)
		}
	}

	remaining := lic.RemainingMinutes(now)

	if s.metrics != nil {
		s.metrics.RecordLicenseActivated()
	}

	s.events.Record(ctx, &domain.Event{
		Type:        domain.EventLicenseActivated,
		Description: fmt.Sprintf("code=%s", lic.Code),
		LicenseCode: lic.Code,
		Payload: map[string]interface{}{
			"license_id":        string(lic.ID),
			"license_code":      lic.Code,
			"remaining_minutes": remaining,
			"activated_at":      utils.FormatTimestamp(*lic.ActivatedAt),
		},
	})

	return lic, remaining, nil
}

func (s *licenseService) Create(ctx context.Context, params ports.CreateLicenseParams) (*domain.License, error) {
	if params.DurationMinutes == 0 {
		params.DurationMinutes = domain.DefaultDurationMinutes
	}
	if params.MaxListeners == 0 {
		params.MaxListeners = 10
	}
	if !domain.AllowedMaxListeners[params.MaxListeners] {
		return nil, domain.ErrInvalidMaxListeners
	}

	if _, err := s.licenseRepo.GetByCode(ctx, params.Code); err == nil {
		return nil, domain.ErrDuplicateLicense
	} else if err != domain.ErrLicenseNotFound {
		return nil, err
	}

	lic := &domain.License{
		ID:              domain.LicenseID(uuid.New().String()),
		Code:            params.Code,
		DurationMinutes: params.DurationMinutes,
		MaxListeners:    params.MaxListeners,
		Active:          params.Active,
		CreatedAt:       utils.UTCNow(),
	}

	if err := s.licenseRepo.Create(ctx, lic); err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	s.logger.Infow("license created", "code", lic.Code, "max_listeners", lic.MaxListeners)
	return lic, nil
}

func (s *licenseService) GetByCode(ctx context.Context, code string) (*domain.License, error) {
	return s.licenseRepo.GetByCode(ctx, code)
}

func (s *licenseService) List(ctx context.Context, filter domain.LicenseFilter) ([]*domain.License, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.licenseRepo.List(ctx, filter)
}

func (s *licenseService) Revoke(ctx context.Context, id domain.LicenseID) (*domain.License, error) {
	lic, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	lic.Active = false
	lic.RevokedAt = &now
	if err := s.licenseRepo.Update(ctx, lic); err != nil {
		return nil, fmt.Errorf("failed to revoke license: %w", err)
	}

	s.logger.Infow("license revoked", "code", lic.Code)
	return lic, nil
}

func (s *licenseService) Reactivate(ctx context.Context, id domain.LicenseID) (*domain.License, error) {
	lic, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lic.Active = true
	lic.RevokedAt = nil
	if err := s.licenseRepo.Update(ctx, lic); err != nil {
		return nil, fmt.Errorf("failed to reactivate license: %w", err)
	}

	s.logger.Infow("license reactivated", "code", lic.Code)
	return lic, nil
}
