package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LicenseKey is the customer-facing secret token grouping one or more
// product entitlements. The key string is globally unique, high entropy,
// and immutable once issued.
type LicenseKey struct {
	ID                uuid.UUID
	Key               string
	BrandID           uuid.UUID
	CustomerEmail     string
	ExternalReference *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (k *LicenseKey) Validate() error {
	if k.Key == "" {
		return fmt.Errorf("%w: license key string is required", ErrValidation)
	}
	if k.BrandID == uuid.Nil {
		return fmt.Errorf("%w: license key brand is required", ErrValidation)
	}
	if !ValidEmail(k.CustomerEmail) {
		return fmt.Errorf("%w: invalid customer email %q", ErrValidation, k.CustomerEmail)
	}
	return nil
}

type LicenseKeyRepository interface {
	// CreateWithLicenses persists the key and all its initial licenses as
	// one atomic unit: either everything is created or nothing is.
	CreateWithLicenses(ctx context.Context, k *LicenseKey, licenses []*License) error
	GetByID(ctx context.Context, id uuid.UUID) (*LicenseKey, error)
	GetByKey(ctx context.Context, key string) (*LicenseKey, error)
	GetByBrandAndKey(ctx context.Context, brandID uuid.UUID, key string) (*LicenseKey, error)
	// ListByEmail matches the customer email case-insensitively. The brand
	// filter is applied inside the query itself so cross-tenant rows can
	// never reach the caller.
	ListByEmail(ctx context.Context, brandID uuid.UUID, email string) ([]*LicenseKey, error)
}
