package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/licensing"
	"github.com/keyline/keyline/internal/server/middleware"
	"github.com/keyline/keyline/internal/store/memory"
)

func intPtr(v int) *int { return &v }

// ---------------------------------------------------------------------------
// Context helpers — inject brand identity into context for DoCtx
// ---------------------------------------------------------------------------

func brandCtx(brandID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyBrandID, brandID)
	return ctx
}

// ---------------------------------------------------------------------------
// Fixture — memory store with real services behind the handler interfaces
// ---------------------------------------------------------------------------

type fixture struct {
	store   *memory.Store
	brand   *domain.Brand
	product *domain.Product

	provisioner *licensing.ProvisioningService
	activator   *licensing.ActivationService
	checker     *licensing.StatusService
	querier     *licensing.QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	s := memory.New()
	brand := &domain.Brand{ID: uuid.New(), Name: "Acme", Slug: "acme", APIKeyHash: "x", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Brands().Create(ctx, brand))

	product := &domain.Product{ID: uuid.New(), BrandID: brand.ID, Name: "Widget Pro", Slug: "widget-pro", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Products().Create(ctx, product))

	return &fixture{
		store:   s,
		brand:   brand,
		product: product,
		provisioner: licensing.NewProvisioningService(
			s.Brands(), s.Products(), s.LicenseKeys(), s.Licenses(), s.Activations(), s.Audit(),
		),
		activator: licensing.NewActivationService(
			s.LicenseKeys(), s.Products(), s.Licenses(), s.Activations(), s.Audit(), nil,
		),
		checker: licensing.NewStatusService(
			s.LicenseKeys(), s.Products(), s.Licenses(), s.Activations(),
		),
		querier: licensing.NewQueryService(
			s.Products(), s.LicenseKeys(), s.Licenses(), s.Activations(), s.Audit(),
		),
	}
}

// provision issues a key with one license for the fixture's product.
func (f *fixture) provision(t *testing.T, maxSeats *int, expiresAt *time.Time) *licensing.ProvisionResult {
	t.Helper()

	res, err := f.provisioner.ProvisionKey(context.Background(), f.brand.ID, licensing.ProvisionInput{
		CustomerEmail: "buyer@example.com",
		Products: []licensing.ProductGrant{
			{ProductID: f.product.ID, MaxSeats: maxSeats, ExpiresAt: expiresAt},
		},
	})
	require.NoError(t, err)
	return res
}

// ---------------------------------------------------------------------------
// Error-injecting activator for failure paths the fixture cannot produce
// ---------------------------------------------------------------------------

type mockActivator struct {
	activateFunc   func(ctx context.Context, key, productSlug, instanceID, instanceName string, meta domain.ActivationMeta) (*licensing.ActivateResult, error)
	deactivateFunc func(ctx context.Context, key, productSlug, instanceID string) (*licensing.ActivateResult, error)
}

func (m *mockActivator) Activate(ctx context.Context, key, productSlug, instanceID, instanceName string, meta domain.ActivationMeta) (*licensing.ActivateResult, error) {
	return m.activateFunc(ctx, key, productSlug, instanceID, instanceName, meta)
}

func (m *mockActivator) Deactivate(ctx context.Context, key, productSlug, instanceID string) (*licensing.ActivateResult, error) {
	return m.deactivateFunc(ctx, key, productSlug, instanceID)
}

// ---------------------------------------------------------------------------
// Pinger stub for health probes
// ---------------------------------------------------------------------------

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }
