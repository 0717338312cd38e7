package licensing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/domain"
	"github.com/keyline/keyline/internal/licensing"
	"github.com/keyline/keyline/internal/store/memory"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// fixture is a memory store pre-seeded with one brand and one product,
// plus every service wired against it.
type fixture struct {
	store   *memory.Store
	brand   *domain.Brand
	product *domain.Product

	provisioning *licensing.ProvisioningService
	activation   *licensing.ActivationService
	status       *licensing.StatusService
	query        *licensing.QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	s := memory.New()
	brand := &domain.Brand{ID: uuid.New(), Name: "Acme", Slug: "acme", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Brands().Create(ctx, brand))

	product := &domain.Product{ID: uuid.New(), BrandID: brand.ID, Name: "Widget Pro", Slug: "widget-pro", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Products().Create(ctx, product))

	return &fixture{
		store:   s,
		brand:   brand,
		product: product,
		provisioning: licensing.NewProvisioningService(
			s.Brands(), s.Products(), s.LicenseKeys(), s.Licenses(), s.Activations(), s.Audit(),
		),
		activation: licensing.NewActivationService(
			s.LicenseKeys(), s.Products(), s.Licenses(), s.Activations(), s.Audit(), nil,
		),
		status: licensing.NewStatusService(
			s.LicenseKeys(), s.Products(), s.Licenses(), s.Activations(),
		),
		query: licensing.NewQueryService(
			s.Products(), s.LicenseKeys(), s.Licenses(), s.Activations(), s.Audit(),
		),
	}
}

// provision issues a key with one license for the fixture's product.
func (f *fixture) provision(t *testing.T, maxSeats *int, expiresAt *time.Time) *licensing.ProvisionResult {
	t.Helper()

	res, err := f.provisioning.ProvisionKey(context.Background(), f.brand.ID, licensing.ProvisionInput{
		CustomerEmail: "buyer@example.com",
		Products: []licensing.ProductGrant{
			{ProductID: f.product.ID, MaxSeats: maxSeats, ExpiresAt: expiresAt},
		},
	})
	require.NoError(t, err)
	return res
}

// addProduct registers another active product under the fixture brand.
func (f *fixture) addProduct(t *testing.T, slug string) *domain.Product {
	t.Helper()
	now := time.Now().UTC()

	p := &domain.Product{ID: uuid.New(), BrandID: f.brand.ID, Name: slug, Slug: slug, Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	channel string
	payload []byte
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{channel: channel, payload: payload})
	return nil
}

func (p *capturePublisher) all() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}
