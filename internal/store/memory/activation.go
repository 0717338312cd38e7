package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type ActivationRepo struct {
	s *Store
}

// ClaimSeat counts, checks the cap, and inserts under one write lock, so
// two concurrent claims for the last seat cannot both win.
func (r *ActivationRepo) ClaimSeat(_ context.Context, licenseID uuid.UUID, instanceID, instanceName string, meta domain.ActivationMeta) (*domain.Activation, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lic, ok := r.s.licenses[licenseID]
	if !ok {
		return nil, 0, fmt.Errorf("activationRepo.ClaimSeat: %w", domain.ErrNotFound)
	}

	count := 0
	var existing, reusable *domain.Activation
	for _, a := range r.s.activations {
		if a.LicenseID != licenseID {
			continue
		}
		if a.Active {
			count++
			if a.InstanceID == instanceID {
				existing = a
			}
		} else if a.InstanceID == instanceID {
			reusable = a
		}
	}

	if existing != nil {
		cp := *existing
		return &cp, count, nil
	}

	if lic.MaxSeats != nil && count >= *lic.MaxSeats {
		return nil, count, fmt.Errorf("activationRepo.ClaimSeat: %w", domain.ErrSeatLimit)
	}

	now := time.Now().UTC()
	if reusable != nil {
		reusable.Active = true
		reusable.InstanceName = instanceName
		reusable.ActivatedAt = now
		reusable.DeactivatedAt = nil
		reusable.IPAddress = meta.IPAddress
		reusable.UserAgent = meta.UserAgent
		cp := *reusable
		return &cp, count + 1, nil
	}

	a := &domain.Activation{
		ID:           uuid.New(),
		LicenseID:    licenseID,
		InstanceID:   instanceID,
		InstanceName: instanceName,
		Active:       true,
		ActivatedAt:  now,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	r.s.activations[a.ID] = a
	cp := *a
	return &cp, count + 1, nil
}

func (r *ActivationRepo) ReleaseSeat(_ context.Context, licenseID uuid.UUID, instanceID string) (*domain.Activation, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	var target *domain.Activation
	for _, a := range r.s.activations {
		if a.LicenseID != licenseID || !a.Active {
			continue
		}
		count++
		if a.InstanceID == instanceID {
			target = a
		}
	}
	if target == nil {
		return nil, count, fmt.Errorf("activationRepo.ReleaseSeat: %w", domain.ErrActivationNotFound)
	}

	now := time.Now().UTC()
	target.Active = false
	target.DeactivatedAt = &now
	cp := *target
	return &cp, count - 1, nil
}

func (r *ActivationRepo) GetActive(_ context.Context, licenseID uuid.UUID, instanceID string) (*domain.Activation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.activations {
		if a.LicenseID == licenseID && a.InstanceID == instanceID && a.Active {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("activationRepo.GetActive: %w", domain.ErrActivationNotFound)
}

func (r *ActivationRepo) CountActive(_ context.Context, licenseID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, a := range r.s.activations {
		if a.LicenseID == licenseID && a.Active {
			count++
		}
	}
	return count, nil
}

func (r *ActivationRepo) ListByLicense(_ context.Context, licenseID uuid.UUID) ([]*domain.Activation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Activation, 0)
	for _, a := range r.s.activations {
		if a.LicenseID == licenseID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivatedAt.Before(out[j].ActivatedAt) })
	return out, nil
}
