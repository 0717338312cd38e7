package licensing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

// QueryService serves brand-scoped lookups over issued keys.
type QueryService struct {
	products    domain.ProductRepository
	keys        domain.LicenseKeyRepository
	licenses    domain.LicenseRepository
	activations domain.ActivationRepository
	audit       domain.AuditRepository
}

// NewQueryService constructs a QueryService.
func NewQueryService(
	products domain.ProductRepository,
	keys domain.LicenseKeyRepository,
	licenses domain.LicenseRepository,
	activations domain.ActivationRepository,
	audit domain.AuditRepository,
) *QueryService {
	return &QueryService{
		products:    products,
		keys:        keys,
		licenses:    licenses,
		activations: activations,
		audit:       audit,
	}
}

// FindByEmail returns every key the brand issued to a customer email.
// Matching is case-insensitive and exact; the brand filter lives inside
// the repository query so no other tenant's rows are ever materialized.
func (s *QueryService) FindByEmail(ctx context.Context, brandID uuid.UUID, email string) ([]*ProvisionResult, error) {
	if !domain.ValidEmail(email) {
		return nil, fmt.Errorf("licensing.FindByEmail: invalid email: %w", domain.ErrValidation)
	}

	keys, err := s.keys.ListByEmail(ctx, brandID, email)
	if err != nil {
		return nil, fmt.Errorf("licensing.FindByEmail: %w", err)
	}

	results := make([]*ProvisionResult, 0, len(keys))
	for _, key := range keys {
		infos, err := licenseInfos(ctx, s.licenses, s.products, s.activations, key.ID)
		if err != nil {
			return nil, fmt.Errorf("licensing.FindByEmail: %w", err)
		}
		results = append(results, &ProvisionResult{Key: key, Licenses: infos})
	}
	return results, nil
}

// ListActivations returns all activation rows (active and released) for a
// brand's license.
func (s *QueryService) ListActivations(ctx context.Context, brandID uuid.UUID, keyStr, productSlug string) ([]*domain.Activation, error) {
	key, err := s.keys.GetByBrandAndKey(ctx, brandID, keyStr)
	if err != nil {
		return nil, fmt.Errorf("licensing.ListActivations: %w", err)
	}

	product, err := s.products.GetByBrandAndSlug(ctx, brandID, productSlug)
	if err != nil {
		return nil, fmt.Errorf("licensing.ListActivations: product %s: %w", productSlug, domain.ErrNotFound)
	}

	lic, err := s.licenses.GetByKeyAndProduct(ctx, key.ID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.ListActivations: %w", err)
	}

	acts, err := s.activations.ListByLicense(ctx, lic.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.ListActivations: %w", err)
	}
	return acts, nil
}

// AuditTrail returns the recorded history for a brand's license key,
// newest first.
func (s *QueryService) AuditTrail(ctx context.Context, brandID uuid.UUID, keyStr string) ([]*domain.AuditEvent, error) {
	key, err := s.keys.GetByBrandAndKey(ctx, brandID, keyStr)
	if err != nil {
		return nil, fmt.Errorf("licensing.AuditTrail: %w", err)
	}

	events, err := s.audit.ListByLicenseKey(ctx, key.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.AuditTrail: %w", err)
	}
	return events, nil
}
