// Package memory provides an in-process Store implementing every
// repository interface. It backs tests and single-node self-hosted
// deployments that run without Postgres; one store-wide mutex gives it
// the same seat-claim atomicity the SQL store gets from row locks.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/keyline/keyline/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	brands      map[uuid.UUID]*domain.Brand
	products    map[uuid.UUID]*domain.Product
	keys        map[uuid.UUID]*domain.LicenseKey
	keyByString map[string]uuid.UUID
	licenses    map[uuid.UUID]*domain.License
	activations map[uuid.UUID]*domain.Activation
	audit       []*domain.AuditEvent
}

func New() *Store {
	return &Store{
		brands:      make(map[uuid.UUID]*domain.Brand),
		products:    make(map[uuid.UUID]*domain.Product),
		keys:        make(map[uuid.UUID]*domain.LicenseKey),
		keyByString: make(map[string]uuid.UUID),
		licenses:    make(map[uuid.UUID]*domain.License),
		activations: make(map[uuid.UUID]*domain.Activation),
	}
}

func (s *Store) Brands() domain.BrandRepository             { return &BrandRepo{s: s} }
func (s *Store) Products() domain.ProductRepository         { return &ProductRepo{s: s} }
func (s *Store) LicenseKeys() domain.LicenseKeyRepository   { return &LicenseKeyRepo{s: s} }
func (s *Store) Licenses() domain.LicenseRepository         { return &LicenseRepo{s: s} }
func (s *Store) Activations() domain.ActivationRepository   { return &ActivationRepo{s: s} }
func (s *Store) Audit() domain.AuditRepository              { return &AuditRepo{s: s} }
