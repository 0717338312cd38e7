package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/licensing"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store and *memory.Store both satisfy this interface.
type DataStore interface {
	Brands() domain.BrandRepository
	Products() domain.ProductRepository
}

// Provisioner abstracts license key issuance for handler testing.
// *licensing.ProvisioningService satisfies this interface.
type Provisioner interface {
	ProvisionKey(ctx context.Context, brandID uuid.UUID, input licensing.ProvisionInput) (*licensing.ProvisionResult, error)
	AddLicense(ctx context.Context, brandID uuid.UUID, key string, grant licensing.ProductGrant) (*licensing.LicenseInfo, error)
	GetKeyDetails(ctx context.Context, brandID uuid.UUID, key string) (*licensing.ProvisionResult, error)
	UpdateLicenseStatus(ctx context.Context, brandID, licenseID uuid.UUID, next domain.LicenseStatus) (*domain.License, error)
}

// Activator abstracts seat activation for handler testing.
// *licensing.ActivationService satisfies this interface.
type Activator interface {
	Activate(ctx context.Context, key, productSlug, instanceID, instanceName string, meta domain.ActivationMeta) (*licensing.ActivateResult, error)
	Deactivate(ctx context.Context, key, productSlug, instanceID string) (*licensing.ActivateResult, error)
}

// StatusChecker abstracts license status evaluation for handler testing.
// *licensing.StatusService satisfies this interface.
type StatusChecker interface {
	Check(ctx context.Context, key, productSlug, instanceID string) (*licensing.StatusResult, error)
}

// Querier abstracts brand-scoped lookups for handler testing.
// *licensing.QueryService satisfies this interface.
type Querier interface {
	FindByEmail(ctx context.Context, brandID uuid.UUID, email string) ([]*licensing.ProvisionResult, error)
	ListActivations(ctx context.Context, brandID uuid.UUID, key, productSlug string) ([]*domain.Activation, error)
	AuditTrail(ctx context.Context, brandID uuid.UUID, key string) ([]*domain.AuditEvent, error)
}

// Pinger reports storage health for the readiness probe.
// *postgres.Store satisfies this interface.
type Pinger interface {
	Ping(ctx context.Context) error
}
