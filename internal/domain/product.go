package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product is a licensable product owned by a brand. The slug is unique
// within the brand, not globally.
type Product struct {
	ID              uuid.UUID
	BrandID         uuid.UUID
	Name            string
	Slug            string
	Description     string
	DefaultMaxSeats *int // nil = unlimited
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Product) Validate() error {
	if p.BrandID == uuid.Nil {
		return fmt.Errorf("%w: product brand is required", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: invalid product slug %q", ErrValidation, p.Slug)
	}
	if p.DefaultMaxSeats != nil && *p.DefaultMaxSeats < 0 {
		return fmt.Errorf("%w: default max seats must be >= 0", ErrValidation)
	}
	return nil
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByBrandAndSlug(ctx context.Context, brandID uuid.UUID, slug string) (*Product, error)
	ListByBrand(ctx context.Context, brandID uuid.UUID) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
}
