package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type LicenseRepo struct {
	s *Store
}

func (r *LicenseRepo) Create(_ context.Context, l *domain.License) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.licenses[l.ID]; ok {
		return fmt.Errorf("licenseRepo.Create: %w", domain.ErrConflict)
	}
	for _, other := range r.s.licenses {
		if other.LicenseKeyID == l.LicenseKeyID && other.ProductID == l.ProductID {
			return fmt.Errorf("licenseRepo.Create: %w", domain.ErrDuplicateLicense)
		}
	}

	cp := *l
	r.s.licenses[l.ID] = &cp
	return nil
}

func (r *LicenseRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.License, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.licenses[id]
	if !ok {
		return nil, fmt.Errorf("licenseRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *LicenseRepo) GetByKeyAndProduct(_ context.Context, licenseKeyID, productID uuid.UUID) (*domain.License, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.licenses {
		if l.LicenseKeyID == licenseKeyID && l.ProductID == productID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("licenseRepo.GetByKeyAndProduct: %w", domain.ErrNotFound)
}

func (r *LicenseRepo) ListByLicenseKey(_ context.Context, licenseKeyID uuid.UUID) ([]*domain.License, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.License, 0)
	for _, l := range r.s.licenses {
		if l.LicenseKeyID == licenseKeyID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *LicenseRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.LicenseStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.licenses[id]
	if !ok {
		return fmt.Errorf("licenseRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}
