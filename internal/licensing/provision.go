package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keyline/keyline/internal/domain"
)

// ProductGrant is one product entitlement requested for a license key.
type ProductGrant struct {
	ProductID uuid.UUID
	ExpiresAt *time.Time
	MaxSeats  *int // overrides the product's default seat cap
}

// ProvisionInput is the request to issue a new license key.
type ProvisionInput struct {
	CustomerEmail     string
	ExternalReference *string
	Key               string // optional; generated when empty
	Products          []ProductGrant
}

// LicenseInfo pairs a license with the product context read paths need.
type LicenseInfo struct {
	License     *domain.License
	ProductSlug string
	ActiveSeats int
}

// ProvisionResult is a license key together with all its licenses.
type ProvisionResult struct {
	Key      *domain.LicenseKey
	Licenses []LicenseInfo
}

// ProvisioningService creates license keys and attaches licenses to
// products for a brand.
type ProvisioningService struct {
	brands      domain.BrandRepository
	products    domain.ProductRepository
	keys        domain.LicenseKeyRepository
	licenses    domain.LicenseRepository
	activations domain.ActivationRepository
	audit       domain.AuditRepository
}

// NewProvisioningService constructs a ProvisioningService.
func NewProvisioningService(
	brands domain.BrandRepository,
	products domain.ProductRepository,
	keys domain.LicenseKeyRepository,
	licenses domain.LicenseRepository,
	activations domain.ActivationRepository,
	audit domain.AuditRepository,
) *ProvisioningService {
	return &ProvisioningService{
		brands:      brands,
		products:    products,
		keys:        keys,
		licenses:    licenses,
		activations: activations,
		audit:       audit,
	}
}

// ProvisionKey issues a new license key for the brand with one license per
// requested product. The key and all licenses are created as a single
// atomic unit: either everything attaches or nothing does.
func (s *ProvisioningService) ProvisionKey(ctx context.Context, brandID uuid.UUID, input ProvisionInput) (*ProvisionResult, error) {
	brand, err := s.brands.GetByID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("licensing.ProvisionKey: %w", err)
	}
	if !brand.Active {
		return nil, fmt.Errorf("licensing.ProvisionKey: brand %s is inactive: %w", brand.Slug, domain.ErrValidation)
	}

	if !domain.ValidEmail(input.CustomerEmail) {
		return nil, fmt.Errorf("licensing.ProvisionKey: invalid customer email: %w", domain.ErrValidation)
	}
	if len(input.Products) == 0 {
		return nil, fmt.Errorf("licensing.ProvisionKey: at least one product is required: %w", domain.ErrValidation)
	}

	products, err := s.resolveGrantProducts(ctx, brandID, input.Products)
	if err != nil {
		return nil, fmt.Errorf("licensing.ProvisionKey: %w", err)
	}

	keyStr := input.Key
	if keyStr == "" {
		keyStr, err = GenerateKey(brand.Slug)
		if err != nil {
			return nil, err
		}
	}

	// Fast-fail convenience only; the unique constraint on the key column
	// is the authority and CreateWithLicenses surfaces the race loser.
	if _, err := s.keys.GetByKey(ctx, keyStr); err == nil {
		return nil, fmt.Errorf("licensing.ProvisionKey: key already exists: %w", domain.ErrConflict)
	}

	now := time.Now().UTC()
	key := &domain.LicenseKey{
		ID:                uuid.New(),
		Key:               keyStr,
		BrandID:           brandID,
		CustomerEmail:     input.CustomerEmail,
		ExternalReference: input.ExternalReference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("licensing.ProvisionKey: %w", err)
	}

	licenses := make([]*domain.License, 0, len(input.Products))
	infos := make([]LicenseInfo, 0, len(input.Products))
	for i, grant := range input.Products {
		product := products[i]

		maxSeats := grant.MaxSeats
		if maxSeats == nil {
			maxSeats = product.DefaultMaxSeats
		}

		lic := &domain.License{
			ID:           uuid.New(),
			LicenseKeyID: key.ID,
			ProductID:    product.ID,
			Status:       domain.LicenseStatusValid,
			ExpiresAt:    grant.ExpiresAt,
			MaxSeats:     maxSeats,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := lic.Validate(); err != nil {
			return nil, fmt.Errorf("licensing.ProvisionKey: %w", err)
		}

		licenses = append(licenses, lic)
		infos = append(infos, LicenseInfo{License: lic, ProductSlug: product.Slug})
	}

	if err := s.keys.CreateWithLicenses(ctx, key, licenses); err != nil {
		return nil, fmt.Errorf("licensing.ProvisionKey: %w", err)
	}

	s.record(ctx, &domain.AuditEvent{
		BrandID:      brandID,
		LicenseKeyID: key.ID,
		Action:       domain.AuditKeyCreated,
		ActorType:    domain.ActorBrand,
		ActorID:      brandID.String(),
		Details:      map[string]any{"customer_email": key.CustomerEmail, "licenses": len(licenses)},
	})

	return &ProvisionResult{Key: key, Licenses: infos}, nil
}

// AddLicense attaches an additional product entitlement to an existing key.
func (s *ProvisioningService) AddLicense(ctx context.Context, brandID uuid.UUID, keyStr string, grant ProductGrant) (*LicenseInfo, error) {
	key, err := s.keys.GetByBrandAndKey(ctx, brandID, keyStr)
	if err != nil {
		return nil, fmt.Errorf("licensing.AddLicense: %w", err)
	}

	product, err := s.resolveBrandProduct(ctx, brandID, grant.ProductID)
	if err != nil {
		return nil, fmt.Errorf("licensing.AddLicense: %w", err)
	}

	if _, err := s.licenses.GetByKeyAndProduct(ctx, key.ID, product.ID); err == nil {
		return nil, fmt.Errorf("licensing.AddLicense: product %s: %w", product.Slug, domain.ErrDuplicateLicense)
	}

	maxSeats := grant.MaxSeats
	if maxSeats == nil {
		maxSeats = product.DefaultMaxSeats
	}

	now := time.Now().UTC()
	lic := &domain.License{
		ID:           uuid.New(),
		LicenseKeyID: key.ID,
		ProductID:    product.ID,
		Status:       domain.LicenseStatusValid,
		ExpiresAt:    grant.ExpiresAt,
		MaxSeats:     maxSeats,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := lic.Validate(); err != nil {
		return nil, fmt.Errorf("licensing.AddLicense: %w", err)
	}

	if err := s.licenses.Create(ctx, lic); err != nil {
		return nil, fmt.Errorf("licensing.AddLicense: %w", err)
	}

	s.record(ctx, &domain.AuditEvent{
		BrandID:      brandID,
		LicenseKeyID: key.ID,
		LicenseID:    &lic.ID,
		Action:       domain.AuditLicenseCreated,
		ActorType:    domain.ActorBrand,
		ActorID:      brandID.String(),
		Details:      map[string]any{"product_slug": product.Slug},
	})

	return &LicenseInfo{License: lic, ProductSlug: product.Slug}, nil
}

// GetKeyDetails returns a brand's license key with all licenses and their
// current seat usage.
func (s *ProvisioningService) GetKeyDetails(ctx context.Context, brandID uuid.UUID, keyStr string) (*ProvisionResult, error) {
	key, err := s.keys.GetByBrandAndKey(ctx, brandID, keyStr)
	if err != nil {
		return nil, fmt.Errorf("licensing.GetKeyDetails: %w", err)
	}

	infos, err := licenseInfos(ctx, s.licenses, s.products, s.activations, key.ID)
	if err != nil {
		return nil, fmt.Errorf("licensing.GetKeyDetails: %w", err)
	}

	return &ProvisionResult{Key: key, Licenses: infos}, nil
}

// UpdateLicenseStatus drives the suspend/resume/cancel lifecycle for a
// brand's license, enforcing the transition table.
func (s *ProvisioningService) UpdateLicenseStatus(ctx context.Context, brandID uuid.UUID, licenseID uuid.UUID, next domain.LicenseStatus) (*domain.License, error) {
	lic, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("licensing.UpdateLicenseStatus: %w", err)
	}

	// Ownership check through the key; a foreign license is reported as
	// not found, never as forbidden.
	key, err := s.keys.GetByID(ctx, lic.LicenseKeyID)
	if err != nil {
		return nil, fmt.Errorf("licensing.UpdateLicenseStatus: %w", err)
	}
	if key.BrandID != brandID {
		return nil, fmt.Errorf("licensing.UpdateLicenseStatus: %w", domain.ErrNotFound)
	}

	if !lic.Status.ValidTransition(next) {
		return nil, fmt.Errorf("licensing.UpdateLicenseStatus: %s -> %s: %w", lic.Status, next, domain.ErrInvalidTransition)
	}

	if err := s.licenses.UpdateStatus(ctx, lic.ID, next); err != nil {
		return nil, fmt.Errorf("licensing.UpdateLicenseStatus: %w", err)
	}

	s.record(ctx, &domain.AuditEvent{
		BrandID:      brandID,
		LicenseKeyID: key.ID,
		LicenseID:    &lic.ID,
		Action:       domain.AuditLicenseStatusChanged,
		ActorType:    domain.ActorBrand,
		ActorID:      brandID.String(),
		Details:      map[string]any{"from": string(lic.Status), "to": string(next)},
	})

	lic.Status = next
	return lic, nil
}

func (s *ProvisioningService) resolveGrantProducts(ctx context.Context, brandID uuid.UUID, grants []ProductGrant) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(grants))
	for _, grant := range grants {
		product, err := s.resolveBrandProduct(ctx, brandID, grant.ProductID)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// resolveBrandProduct checks the product exists, belongs to the brand,
// and is active. A foreign product is indistinguishable from a missing one.
func (s *ProvisioningService) resolveBrandProduct(ctx context.Context, brandID, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrInvalidProduct)
	}
	if product.BrandID != brandID {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrInvalidProduct)
	}
	if !product.Active {
		return nil, fmt.Errorf("product %s is inactive: %w", product.Slug, domain.ErrInvalidProduct)
	}
	return product, nil
}

// licenseInfos loads every license under a key together with its product
// slug and live seat count. Seat counts are always computed on read; the
// engine never caches them.
func licenseInfos(
	ctx context.Context,
	licenses domain.LicenseRepository,
	products domain.ProductRepository,
	activations domain.ActivationRepository,
	keyID uuid.UUID,
) ([]LicenseInfo, error) {
	list, err := licenses.ListByLicenseKey(ctx, keyID)
	if err != nil {
		return nil, err
	}

	infos := make([]LicenseInfo, 0, len(list))
	for _, lic := range list {
		product, err := products.GetByID(ctx, lic.ProductID)
		if err != nil {
			return nil, err
		}
		count, err := activations.CountActive(ctx, lic.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, LicenseInfo{License: lic, ProductSlug: product.Slug, ActiveSeats: count})
	}
	return infos, nil
}

// record writes an audit event best-effort: audit is history, not a
// precondition, so a failed write never rolls back the operation.
func (s *ProvisioningService) record(ctx context.Context, e *domain.AuditEvent) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	if err := s.audit.Record(ctx, e); err != nil {
		log.Warn().Err(err).Str("action", string(e.Action)).Msg("licensing: record audit event")
	}
}
