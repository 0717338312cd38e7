package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type LicenseKeyRepo struct {
	s *Store
}

func (r *LicenseKeyRepo) CreateWithLicenses(_ context.Context, k *domain.LicenseKey, licenses []*domain.License) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.keyByString[k.Key]; ok {
		return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: key exists: %w", domain.ErrConflict)
	}
	if _, ok := r.s.keys[k.ID]; ok {
		return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: %w", domain.ErrConflict)
	}
	for _, lic := range licenses {
		if _, ok := r.s.licenses[lic.ID]; ok {
			return fmt.Errorf("licenseKeyRepo.CreateWithLicenses: %w", domain.ErrConflict)
		}
	}

	cp := *k
	r.s.keys[k.ID] = &cp
	r.s.keyByString[k.Key] = k.ID
	for _, lic := range licenses {
		lcp := *lic
		r.s.licenses[lic.ID] = &lcp
	}
	return nil
}

func (r *LicenseKeyRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.LicenseKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.keys[id]
	if !ok {
		return nil, fmt.Errorf("licenseKeyRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *k
	return &cp, nil
}

func (r *LicenseKeyRepo) GetByKey(_ context.Context, key string) (*domain.LicenseKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.keyByString[key]
	if !ok {
		return nil, fmt.Errorf("licenseKeyRepo.GetByKey: %w", domain.ErrNotFound)
	}
	cp := *r.s.keys[id]
	return &cp, nil
}

func (r *LicenseKeyRepo) GetByBrandAndKey(_ context.Context, brandID uuid.UUID, key string) (*domain.LicenseKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.keyByString[key]
	if !ok {
		return nil, fmt.Errorf("licenseKeyRepo.GetByBrandAndKey: %w", domain.ErrNotFound)
	}
	k := r.s.keys[id]
	if k.BrandID != brandID {
		return nil, fmt.Errorf("licenseKeyRepo.GetByBrandAndKey: %w", domain.ErrNotFound)
	}
	cp := *k
	return &cp, nil
}

func (r *LicenseKeyRepo) ListByEmail(_ context.Context, brandID uuid.UUID, email string) ([]*domain.LicenseKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.LicenseKey, 0)
	for _, k := range r.s.keys {
		if k.BrandID == brandID && strings.EqualFold(k.CustomerEmail, email) {
			cp := *k
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
