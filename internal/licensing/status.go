package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/keyline/keyline/internal/domain"
)

// StatusResult is the read-only health report for one license.
type StatusResult struct {
	Valid          bool
	Status         domain.LicenseStatus
	Reason         domain.InvalidReason // empty when valid
	ExpiresAt      *time.Time
	MaxSeats       *int // nil = unlimited
	ActiveSeats    int
	RemainingSeats *int // nil = unlimited
	InstanceActive *bool // set only when an instance id was supplied
}

// StatusService answers "is this license usable right now" without
// mutating anything. Evaluation is computed per call; nothing about
// validity or seat usage is cached.
type StatusService struct {
	keys        domain.LicenseKeyRepository
	products    domain.ProductRepository
	licenses    domain.LicenseRepository
	activations domain.ActivationRepository
}

// NewStatusService constructs a StatusService.
func NewStatusService(
	keys domain.LicenseKeyRepository,
	products domain.ProductRepository,
	licenses domain.LicenseRepository,
	activations domain.ActivationRepository,
) *StatusService {
	return &StatusService{
		keys:        keys,
		products:    products,
		licenses:    licenses,
		activations: activations,
	}
}

// Check evaluates the license for (keyStr, productSlug) at the current
// instant. An invalid license is a successful check with Valid=false, not
// an error. instanceID is optional; when set, the result reports whether
// that instance currently holds a seat so installations can recover state
// after reinstalls.
func (s *StatusService) Check(ctx context.Context, keyStr, productSlug, instanceID string) (*StatusResult, error) {
	key, err := s.keys.GetByKey(ctx, keyStr)
	if err != nil {
		return nil, fmt.Errorf("licensing.Check: license key: %w", domain.ErrNotFound)
	}

	product, err := s.products.GetByBrandAndSlug(ctx, key.BrandID, productSlug)
	if err != nil {
		return nil, fmt.Errorf("licensing.Check: product %s: %w", productSlug, domain.ErrNotFound)
	}

	lic, err := s.licenses.GetByKeyAndProduct(ctx, key.ID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.Check: license for %s: %w", productSlug, domain.ErrNotFound)
	}

	count, err := s.activations.CountActive(ctx, lic.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.Check: %w", err)
	}

	now := time.Now().UTC()
	result := &StatusResult{
		Valid:       lic.IsValid(now),
		Status:      lic.Status,
		ExpiresAt:   lic.ExpiresAt,
		MaxSeats:    lic.MaxSeats,
		ActiveSeats: count,
	}
	if !result.Valid {
		result.Reason = lic.InvalidReason(now)
	}
	if lic.MaxSeats != nil {
		r := *lic.MaxSeats - count
		if r < 0 {
			r = 0
		}
		result.RemainingSeats = &r
	}

	if instanceID != "" {
		active := false
		if _, err := s.activations.GetActive(ctx, lic.ID, instanceID); err == nil {
			active = true
		}
		result.InstanceActive = &active
	}

	return result, nil
}
