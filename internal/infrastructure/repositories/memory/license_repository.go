package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type MemoryLicenseRepository struct {
	licenses map[domain.LicenseID]*domain.License
	byCode   map[string]domain.LicenseID
	mu       sync.RWMutex
}

func NewMemoryLicenseRepository() ports.LicenseRepository {
	return &MemoryLicenseRepository{
		licenses: make(map[domain.LicenseID]*domain.License),
		byCode:   make(map[string]domain.LicenseID),
	}
}

func (r *MemoryLicenseRepository) Create(ctx context.Context, lic *domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[lic.Code]; exists {
		return domain.ErrDuplicateLicense
	}

	cp := *lic
	r.licenses[lic.ID] = &cp
	r.byCode[lic.Code] = lic.ID
	return nil
}

func (r *MemoryLicenseRepository) GetByID(ctx context.Context, id domain.LicenseID) (*domain.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lic, exists := r.licenses[id]
	if !exists {
		return nil, domain.ErrLicenseNotFound
	}

	cp := *lic
	return &cp, nil
}

func (r *MemoryLicenseRepository) GetByCode(ctx context.Context, code string) (*domain.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byCode[code]
	if !exists {
		return nil, domain.ErrLicenseNotFound
	}

	cp := *r.licenses[id]
	return &cp, nil
}

func (r *MemoryLicenseRepository) Update(ctx context.Context, lic *domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.licenses[lic.ID]; !exists {
		return domain.ErrLicenseNotFound
	}

	cp := *lic
	r.licenses[lic.ID] = &cp
	return nil
}

func (r *MemoryLicenseRepository) List(ctx context.Context, filter domain.LicenseFilter) ([]*domain.License, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.License
	for _, lic := range r.licenses {
		if !matches(lic, filter) {
			continue
		}
		cp := *lic
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func matches(lic *domain.License, filter domain.LicenseFilter) bool {
	if filter.Query != "" && !strings.Contains(strings.ToLower(lic.Code), strings.ToLower(filter.Query)) {
		return false
	}
	if filter.Active != nil && lic.Active != *filter.Active {
		return false
	}
	if filter.Revoked != nil && (lic.RevokedAt != nil) != *filter.Revoked {
		return false
	}
	return true
}
