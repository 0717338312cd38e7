package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keyline/keyline/internal/domain"
	redisstore "github.com/keyline/keyline/internal/store/redis"
)

// ActivateResult is returned by both Activate and Deactivate.
type ActivateResult struct {
	Activation     *domain.Activation
	RemainingSeats *int // nil = unlimited
	ExpiresAt      *time.Time
}

// ActivationService is the seat-management state machine: it binds and
// releases product installations against seat-limited licenses. It is the
// only component that mutates activations, and it funnels every mutation
// through the repository's per-license serialization.
type ActivationService struct {
	keys        domain.LicenseKeyRepository
	products    domain.ProductRepository
	licenses    domain.LicenseRepository
	activations domain.ActivationRepository
	audit       domain.AuditRepository
	events      Publisher // nil disables the event stream
}

// NewActivationService constructs an ActivationService.
func NewActivationService(
	keys domain.LicenseKeyRepository,
	products domain.ProductRepository,
	licenses domain.LicenseRepository,
	activations domain.ActivationRepository,
	audit domain.AuditRepository,
	events Publisher,
) *ActivationService {
	return &ActivationService{
		keys:        keys,
		products:    products,
		licenses:    licenses,
		activations: activations,
		audit:       audit,
		events:      events,
	}
}

// resolved is the ownership chain behind a (key, productSlug) pair.
type resolved struct {
	key     *domain.LicenseKey
	product *domain.Product
	license *domain.License
}

// resolve walks key string -> product slug -> license. Every miss maps to
// ErrNotFound so callers cannot probe which part of a guess was wrong.
func (s *ActivationService) resolve(ctx context.Context, keyStr, productSlug string) (resolved, error) {
	key, err := s.keys.GetByKey(ctx, keyStr)
	if err != nil {
		return resolved{}, fmt.Errorf("license key: %w", domain.ErrNotFound)
	}

	product, err := s.products.GetByBrandAndSlug(ctx, key.BrandID, productSlug)
	if err != nil {
		return resolved{}, fmt.Errorf("product %s: %w", productSlug, domain.ErrNotFound)
	}

	license, err := s.licenses.GetByKeyAndProduct(ctx, key.ID, product.ID)
	if err != nil {
		return resolved{}, fmt.Errorf("license for %s: %w", productSlug, domain.ErrNotFound)
	}

	return resolved{key: key, product: product, license: license}, nil
}

// Activate binds an installation instance to a seat of the license for
// (keyStr, productSlug). Re-activating an already-active instance is a
// no-op success and never consumes a second seat. The seat claim itself
// is atomic with respect to every other caller on the same license.
func (s *ActivationService) Activate(ctx context.Context, keyStr, productSlug, instanceID, instanceName string, meta domain.ActivationMeta) (*ActivateResult, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("licensing.Activate: instance id is required: %w", domain.ErrValidation)
	}

	res, err := s.resolve(ctx, keyStr, productSlug)
	if err != nil {
		return nil, fmt.Errorf("licensing.Activate: %w", err)
	}

	now := time.Now().UTC()
	if !res.license.IsValid(now) {
		return nil, fmt.Errorf("licensing.Activate: %w", &domain.LicenseInvalidError{Reason: res.license.InvalidReason(now)})
	}

	// Idempotence: an already-active instance short-circuits before the
	// seat claim. A concurrent duplicate that slips past this check is
	// deduplicated inside ClaimSeat.
	if existing, err := s.activations.GetActive(ctx, res.license.ID, instanceID); err == nil {
		count, err := s.activations.CountActive(ctx, res.license.ID)
		if err != nil {
			return nil, fmt.Errorf("licensing.Activate: %w", err)
		}
		return s.result(res.license, existing, count), nil
	}

	act, count, err := s.activations.ClaimSeat(ctx, res.license.ID, instanceID, instanceName, meta)
	if err != nil {
		return nil, fmt.Errorf("licensing.Activate: %w", err)
	}

	s.record(ctx, res, act, domain.AuditActivationCreated, meta)
	publishEvent(ctx, s.events, redisstore.ActivationChannel(res.key.BrandID), ActivationEvent{
		Type:         "activated",
		BrandID:      res.key.BrandID,
		LicenseID:    res.license.ID,
		ProductSlug:  res.product.Slug,
		InstanceID:   instanceID,
		InstanceName: instanceName,
		ActiveSeats:  count,
		Timestamp:    now,
	})

	return s.result(res.license, act, count), nil
}

// Deactivate releases the seat held by an instance. Validity is not
// required: freeing a seat on an expired or suspended license is always
// safe. It shares the seat claim's serialization path so concurrent
// activations observe a consistent count.
func (s *ActivationService) Deactivate(ctx context.Context, keyStr, productSlug, instanceID string) (*ActivateResult, error) {
	res, err := s.resolve(ctx, keyStr, productSlug)
	if err != nil {
		return nil, fmt.Errorf("licensing.Deactivate: %w", err)
	}

	act, count, err := s.activations.ReleaseSeat(ctx, res.license.ID, instanceID)
	if err != nil {
		return nil, fmt.Errorf("licensing.Deactivate: %w", err)
	}

	s.record(ctx, res, act, domain.AuditActivationDeactivated, domain.ActivationMeta{})
	publishEvent(ctx, s.events, redisstore.ActivationChannel(res.key.BrandID), ActivationEvent{
		Type:        "deactivated",
		BrandID:     res.key.BrandID,
		LicenseID:   res.license.ID,
		ProductSlug: res.product.Slug,
		InstanceID:  instanceID,
		ActiveSeats: count,
		Timestamp:   time.Now().UTC(),
	})

	return s.result(res.license, act, count), nil
}

func (s *ActivationService) result(lic *domain.License, act *domain.Activation, activeCount int) *ActivateResult {
	var remaining *int
	if lic.MaxSeats != nil {
		r := *lic.MaxSeats - activeCount
		if r < 0 {
			// Seat cap lowered below current usage; the overage persists
			// until seats are freed voluntarily.
			r = 0
		}
		remaining = &r
	}
	return &ActivateResult{Activation: act, RemainingSeats: remaining, ExpiresAt: lic.ExpiresAt}
}

func (s *ActivationService) record(ctx context.Context, res resolved, act *domain.Activation, action domain.AuditAction, meta domain.ActivationMeta) {
	e := &domain.AuditEvent{
		ID:           uuid.New(),
		BrandID:      res.key.BrandID,
		LicenseKeyID: res.key.ID,
		LicenseID:    &res.license.ID,
		Action:       action,
		ActorType:    domain.ActorProduct,
		ActorID:      act.InstanceID,
		Details:      map[string]any{"product_slug": res.product.Slug},
		IPAddress:    meta.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, e); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Msg("licensing: record audit event")
	}
}
