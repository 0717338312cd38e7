package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/keyline/keyline/internal/domain"
)

// mapDomainError translates domain errors into the public HTTP contract.
// The detail strings are stable machine-readable codes; clients branch on
// them, so changing one is a breaking change.
func mapDomainError(err error) error {
	var invalid *domain.LicenseInvalidError
	switch {
	case errors.As(err, &invalid):
		return huma.Error403Forbidden("license_" + string(invalid.Reason))
	case errors.Is(err, domain.ErrSeatLimit):
		return huma.Error409Conflict("no_seats_available")
	case errors.Is(err, domain.ErrActivationNotFound):
		return huma.Error404NotFound("activation_not_found")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("license_not_found")
	case errors.Is(err, domain.ErrDuplicateLicense):
		return huma.Error409Conflict("license_already_exists")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("conflict")
	case errors.Is(err, domain.ErrInvalidProduct):
		return huma.Error422UnprocessableEntity("invalid_product")
	case errors.Is(err, domain.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrTransient):
		return huma.Error503ServiceUnavailable("transient_error")
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
