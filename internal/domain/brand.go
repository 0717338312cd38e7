package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Brand is a tenant organization issuing licenses under its own namespace.
// Every license key and product belongs to exactly one brand; an inactive
// brand rejects all operations.
type Brand struct {
	ID         uuid.UUID
	Name       string
	Slug       string
	APIKeyHash string // argon2id, never exposed
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate performs fast-fail construction checks. Uniqueness is owned
// by the persistence layer's constraints, not by this method.
func (b *Brand) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: brand name is required", ErrValidation)
	}
	if !ValidSlug(b.Slug) {
		return fmt.Errorf("%w: invalid brand slug %q", ErrValidation, b.Slug)
	}
	return nil
}

type BrandRepository interface {
	Create(ctx context.Context, b *Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	GetBySlug(ctx context.Context, slug string) (*Brand, error)
	Update(ctx context.Context, b *Brand) error
	List(ctx context.Context) ([]*Brand, error)
}
