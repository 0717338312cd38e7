package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	LicenseStatusValid     LicenseStatus = "valid"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusCancelled LicenseStatus = "cancelled"
)

// ValidTransition checks if a license lifecycle transition is allowed.
// Allowed: valid->suspended, valid->cancelled, suspended->valid (resume),
// suspended->cancelled. Cancelled is terminal.
func (s LicenseStatus) ValidTransition(to LicenseStatus) bool {
	switch s {
	case LicenseStatusValid:
		return to == LicenseStatusSuspended || to == LicenseStatusCancelled
	case LicenseStatusSuspended:
		return to == LicenseStatusValid || to == LicenseStatusCancelled
	default:
		return false
	}
}

var ErrInvalidTransition = fmt.Errorf("%w: invalid license status transition", ErrValidation)

// License is one product's entitlement terms under a license key. A key
// holds at most one license per product.
type License struct {
	ID           uuid.UUID
	LicenseKeyID uuid.UUID
	ProductID    uuid.UUID
	Status       LicenseStatus
	ExpiresAt    *time.Time // nil = never expires
	MaxSeats     *int       // nil = unlimited
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l *License) Validate() error {
	if l.LicenseKeyID == uuid.Nil {
		return fmt.Errorf("%w: license key reference is required", ErrValidation)
	}
	if l.ProductID == uuid.Nil {
		return fmt.Errorf("%w: license product reference is required", ErrValidation)
	}
	if l.MaxSeats != nil && *l.MaxSeats < 0 {
		return fmt.Errorf("%w: max seats must be >= 0", ErrValidation)
	}
	switch l.Status {
	case LicenseStatusValid, LicenseStatusSuspended, LicenseStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown license status %q", ErrValidation, l.Status)
	}
	return nil
}

// IsExpired reports whether the license has expired at the given instant.
// The boundary is exclusive: now == ExpiresAt counts as expired.
func (l *License) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// IsValid reports whether the license can be used at the given instant.
func (l *License) IsValid(now time.Time) bool {
	return l.Status == LicenseStatusValid && !l.IsExpired(now)
}

// InvalidReason returns why the license is not usable. Lifecycle status
// wins over expiry: a suspended license that has also expired reports
// "suspended". Callers must check IsValid first.
func (l *License) InvalidReason(now time.Time) InvalidReason {
	switch {
	case l.Status == LicenseStatusSuspended:
		return ReasonSuspended
	case l.Status == LicenseStatusCancelled:
		return ReasonCancelled
	default:
		return ReasonExpired
	}
}

type LicenseRepository interface {
	Create(ctx context.Context, l *License) error
	GetByID(ctx context.Context, id uuid.UUID) (*License, error)
	GetByKeyAndProduct(ctx context.Context, licenseKeyID, productID uuid.UUID) (*License, error)
	ListByLicenseKey(ctx context.Context, licenseKeyID uuid.UUID) ([]*License, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status LicenseStatus) error
}
