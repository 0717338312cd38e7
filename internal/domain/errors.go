package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound           = errors.New("domain: not found")
	ErrConflict           = errors.New("domain: conflict")
	ErrValidation         = errors.New("domain: validation failed")
	ErrInvalidProduct     = errors.New("domain: invalid product")
	ErrDuplicateLicense   = errors.New("domain: license already exists for product")
	ErrSeatLimit          = errors.New("domain: no seats available")
	ErrActivationNotFound = errors.New("domain: no active activation")
	ErrTransient          = errors.New("domain: transient storage error")
)

// InvalidReason explains why a license failed the validity check.
type InvalidReason string

const (
	ReasonExpired   InvalidReason = "expired"
	ReasonSuspended InvalidReason = "suspended"
	ReasonCancelled InvalidReason = "cancelled"
)

// LicenseInvalidError is returned when a license exists but is not usable.
// The reason distinguishes expiry from lifecycle status.
type LicenseInvalidError struct {
	Reason InvalidReason
}

func (e *LicenseInvalidError) Error() string {
	return fmt.Sprintf("domain: license invalid (%s)", e.Reason)
}
