package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activation is one installation instance consuming a seat of a license.
// Deactivation flips Active to false but keeps the row for audit history;
// the same instance may cycle between active and inactive indefinitely.
type Activation struct {
	ID            uuid.UUID
	LicenseID     uuid.UUID
	InstanceID    string // caller-supplied identifier, e.g. a URL or UUID
	InstanceName  string
	Active        bool
	ActivatedAt   time.Time
	DeactivatedAt *time.Time
	IPAddress     string
	UserAgent     string
}

func (a *Activation) Validate() error {
	if a.LicenseID == uuid.Nil {
		return fmt.Errorf("%w: activation license reference is required", ErrValidation)
	}
	if a.InstanceID == "" {
		return fmt.Errorf("%w: instance id is required", ErrValidation)
	}
	return nil
}

// ActivationMeta carries request metadata recorded alongside an activation.
type ActivationMeta struct {
	IPAddress string
	UserAgent string
}

// ActivationRepository carries the load-bearing atomicity contract of the
// engine. ClaimSeat and ReleaseSeat must serialize against each other per
// license (row lock or equivalent) so that the active count observed by
// any claim is exact.
type ActivationRepository interface {
	// ClaimSeat atomically counts the active activations for the license
	// and, if a seat is free, creates (or reactivates) the activation for
	// instanceID. If the instance is already active the existing
	// activation is returned unchanged; re-activation never consumes a
	// second seat. Returns the activation and the resulting active count.
	//
	// Errors: ErrNotFound if the license does not exist, ErrSeatLimit if
	// every seat is taken.
	ClaimSeat(ctx context.Context, licenseID uuid.UUID, instanceID, instanceName string, meta ActivationMeta) (*Activation, int, error)

	// ReleaseSeat deactivates the active activation for instanceID,
	// recording the deactivation timestamp. It takes the same per-license
	// serialization path as ClaimSeat so concurrent claims observe a
	// consistent count. Returns the activation and the resulting active
	// count, or ErrActivationNotFound.
	ReleaseSeat(ctx context.Context, licenseID uuid.UUID, instanceID string) (*Activation, int, error)

	GetActive(ctx context.Context, licenseID uuid.UUID, instanceID string) (*Activation, error)
	CountActive(ctx context.Context, licenseID uuid.UUID) (int, error)
	ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*Activation, error)
}
